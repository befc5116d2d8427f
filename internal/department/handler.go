package department

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
	AllDepartments(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id int64) (*DepartmentResponse, error)
	AddOrUpdate(ctx context.Context, principal *internal.Principal, dto DepartmentDTO) (*DepartmentResponse, error)
	Trash(ctx context.Context, id int64, deleted bool) error
	UpdateUsers(ctx context.Context, principal *internal.Principal, departmentID int64, userIDs []int64) (bool, error)
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

func (h *Handler) departmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid department id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.AllDepartments(r.Context())
	if err != nil {
		h.Logger.Error("Items: failed to list departments", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": departments})
}

func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	department, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, department)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto DepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	department, err := h.Service.AddOrUpdate(r.Context(), principal, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, department)
}

func (h *Handler) Trash(w http.ResponseWriter, r *http.Request) {
	id, ok := h.departmentID(w, r)
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
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := h.departmentID(w, r)
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
