package notification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/lazypos/admin-api/internal"
	notificationDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/notification"
	"github.com/lazypos/admin-api/internal/transport"
)

type ServiceAPI interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]notificationDatamodel.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.Service.ListForUser(r.Context(), principal.UserID, limit)
	if err != nil {
		h.Logger.Error("List: failed to get notifications", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get notifications")
		return
	}

	unread, err := h.Service.CountUnread(r.Context(), principal.UserID)
	if err != nil {
		h.Logger.Error("List: failed to count unread", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get notifications")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": rows,
		"unread":        unread,
	})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.Service.MarkRead(r.Context(), id, principal.UserID); err != nil {
		h.Logger.Error("MarkRead: failed", "error", err, "id", id)
		h.WriteError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
