package notification

import (
	"context"
	"fmt"
	"log/slog"

	notificationDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/notification"
	"github.com/lazypos/admin-api/internal/core/events"
)

const KindMembershipChanged = "membership_changed"

type RepositoryAPI interface {
	Create(ctx context.Context, row *notificationDatamodel.Notification) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]notificationDatamodel.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]notificationDatamodel.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListForUser(ctx, userID, limit)
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// HandleMembershipChanged persists one notification row per affected user.
// It runs as an event-bus handler; a failed insert is logged and skipped so
// one bad row never blocks the rest of the batch.
func (s *Service) HandleMembershipChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.MembershipChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	for _, userID := range changed.UserIDs {
		row := &notificationDatamodel.Notification{
			UserID: userID,
			Title:  fmt.Sprintf("%s membership updated", changed.GroupKind),
			Body:   fmt.Sprintf("your membership in %s %q changed", changed.GroupKind, changed.GroupName),
			Kind:   KindMembershipChanged,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			s.logger.Error("failed to store notification",
				"user_id", userID,
				"group_kind", changed.GroupKind,
				"group_id", changed.GroupID,
				"error", err)
		}
	}
	return nil
}

// RegisterHandlers subscribes the service to the events it persists.
func (s *Service) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeMembershipChanged, s.HandleMembershipChanged)
}
