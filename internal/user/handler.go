package user

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/transport"
)

type ServiceAPI interface {
	AllUsers(ctx context.Context, principal *internal.Principal) ([]UserResponse, error)
	GetByID(ctx context.Context, id int64) (*DetailResponse, error)
	AddOrUpdate(ctx context.Context, principal *internal.Principal, dto UserDTO) (*UserResponse, error)
	Trash(ctx context.Context, id int64, deleted bool) error
	Profile(ctx context.Context, principal *internal.Principal) (*ProfileResponse, error)
	Lookup(ctx context.Context, property, value, search string, page, pageSize int) ([]string, error)
	Exists(ctx context.Context, property, value string, excludeID int64) (bool, error)
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

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	users, err := h.Service.AllUsers(r.Context(), principal)
	if err != nil {
		h.Logger.Error("Items: failed to list users", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.AddOrUpdate(r.Context(), principal, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Trash(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
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

// Profile serves the authenticated account screen.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	profile, err := h.Service.Profile(r.Context(), principal)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	values, err := h.Service.Lookup(r.Context(), chi.URLParam(r, "property"), q.Get("value"), q.Get("search"), page, pageSize)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, values)
}

func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	excludeID, _ := strconv.ParseInt(q.Get("exclude_id"), 10, 64)

	found, err := h.Service.Exists(r.Context(), chi.URLParam(r, "property"), q.Get("value"), excludeID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"exists": found})
}
