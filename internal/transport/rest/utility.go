package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lazypos/admin-api/internal/cache"
	"github.com/lazypos/admin-api/internal/core/events"
	"github.com/lazypos/admin-api/internal/transport"
)

type CacheResetter interface {
	Reset(ctx context.Context, types ...cache.EntityType) error
}

// UtilityHandler hosts maintenance endpoints. Cache resets are broadcast on
// the event bus so other interested handlers can react.
type UtilityHandler struct {
	*transport.BaseHandler
	Cache CacheResetter
	Bus   *events.EventBus
}

func NewUtilityHandler(baseHandler *transport.BaseHandler, cacheStore CacheResetter, bus *events.EventBus) *UtilityHandler {
	return &UtilityHandler{
		BaseHandler: baseHandler,
		Cache:       cacheStore,
		Bus:         bus,
	}
}

type cacheResetRequest struct {
	Types []string `json:"types"`
}

// ResetCache reloads the named snapshot types, or everything when the body
// names none.
func (h *UtilityHandler) ResetCache(w http.ResponseWriter, r *http.Request) {
	var req cacheResetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	types := make([]cache.EntityType, 0, len(req.Types))
	names := make([]string, 0, len(req.Types))
	for _, raw := range req.Types {
		t, err := cache.ParseEntityType(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		types = append(types, t)
		names = append(names, string(t))
	}

	if err := h.Cache.Reset(r.Context(), types...); err != nil {
		h.Logger.Error("cache reset failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "cache reset failed")
		return
	}

	if err := h.Bus.Publish(r.Context(), events.NewCacheRefreshEvent(names)); err != nil {
		h.Logger.Error("cache refresh broadcast failed", "error", err)
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reset": names,
	})
}
