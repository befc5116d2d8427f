package role

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/authz"
	"github.com/lazypos/admin-api/internal/transport"
)

type ServiceAPI interface {
	AllRoles(ctx context.Context, principal *internal.Principal, forUserID *int64) ([]RoleResponse, error)
	GetByID(ctx context.Context, id int64) (*RoleResponse, error)
	AddOrUpdate(ctx context.Context, principal *internal.Principal, dto RoleDTO) (*RoleResponse, error)
	Trash(ctx context.Context, id int64, deleted bool) error
	UpdateUsers(ctx context.Context, principal *internal.Principal, roleID int64, userIDs []int64) (bool, error)
	UpdatePermissions(ctx context.Context, roleID int64, grants []PermissionGrant) error
	Permissions(ctx context.Context, roleID int64) ([]authz.EffectivePermission, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*internal.Principal, bool) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return principal, true
}

func (h *Handler) roleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var forUserID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		forUserID = &id
	}

	roles, err := h.Service.AllRoles(r.Context(), principal, forUserID)
	if err != nil {
		h.Logger.Error("Items: failed to list roles", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})
}

func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	role, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto RoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.AddOrUpdate(r.Context(), principal, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) Trash(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	var dto TrashDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Trash(r.Context(), id, dto.Deleted); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	var dto UpdateUsersDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	changed, err := h.Service.UpdateUsers(r.Context(), principal, id, dto.UserIDs)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	var dto UpdatePermissionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, "data invalid")
		return
	}

	if err := h.Service.UpdatePermissions(r.Context(), id, dto.Grants); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	perms, err := h.Service.Permissions(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}
