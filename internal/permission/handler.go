package permission

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/authz"
	permissionDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
	"github.com/lazypos/admin-api/internal/transport"
)

type ServiceAPI interface {
	Catalog(ctx context.Context) ([]permissionDatamodel.Permission, error)
	AddOrUpdate(ctx context.Context, dto PermissionDTO) (*permissionDatamodel.Permission, error)
	Links(ctx context.Context) ([]permissionDatamodel.Link, error)
	SaveLink(ctx context.Context, dto LinkDTO) (*permissionDatamodel.Link, error)
	Lookup(ctx context.Context, property, value, search string, page, pageSize int) ([]string, error)
	Exists(ctx context.Context, property, value string, excludeID int64) (bool, error)
}

type NavigationResolver interface {
	ResolveLinks(ctx context.Context, principal *internal.Principal) ([]authz.LinkNode, error)
	ResolvePermissions(ctx context.Context, userID int64, roleIDs []int64) ([]authz.EffectivePermission, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Resolver NavigationResolver
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, resolver NavigationResolver) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Resolver:    resolver,
	}
}

func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.Catalog(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var dto PermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	row, err := h.Service.AddOrUpdate(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, row)
}

func (h *Handler) AllLinks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.Links(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) SaveLink(w http.ResponseWriter, r *http.Request) {
	var dto LinkDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	row, err := h.Service.SaveLink(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, row)
}

// Navigation returns the menu tree visible to the calling user.
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	nodes, err := h.Resolver.ResolveLinks(r.Context(), principal)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, nodes)
}

// Mine returns the calling user's effective permission rows.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	rows, err := h.Resolver.ResolvePermissions(r.Context(), principal.UserID, nil)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
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
