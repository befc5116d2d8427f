package team

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
	AllTeams(ctx context.Context, forUserID *int64) ([]TeamResponse, error)
	GetByID(ctx context.Context, id int64) (*TeamResponse, error)
	AddOrUpdate(ctx context.Context, principal *internal.Principal, dto TeamDTO) (*TeamResponse, error)
	Trash(ctx context.Context, id int64, deleted bool) error
	UpdateUsers(ctx context.Context, principal *internal.Principal, teamID int64, userIDs []int64) (bool, error)
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

func (h *Handler) teamID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid team id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	var forUserID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		forUserID = &id
	}

	teams, err := h.Service.AllTeams(r.Context(), forUserID)
	if err != nil {
		h.Logger.Error("Items: failed to list teams", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list teams")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	team, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, team)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto TeamDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	team, err := h.Service.AddOrUpdate(r.Context(), principal, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, team)
}

func (h *Handler) Trash(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
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
	id, ok := h.teamID(w, r)
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
