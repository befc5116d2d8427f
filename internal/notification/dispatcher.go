package notification

import (
	"context"
	"log/slog"

	"github.com/lazypos/admin-api/internal/core/events"
	"github.com/lazypos/admin-api/internal/membership"
)

// Dispatcher bridges the membership manager onto the event bus. Delivery is
// best-effort: publish errors are logged and swallowed so a notification
// failure can never fail the mutation that triggered it.
type Dispatcher struct {
	bus    *events.EventBus
	logger *slog.Logger
}

func NewDispatcher(bus *events.EventBus, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{bus: bus, logger: logger}
}

func (d *Dispatcher) Notify(ctx context.Context, group membership.Group, userIDs []int64, actorID int64) {
	event := events.NewMembershipChangedEvent(group.Kind, group.ID, group.Name, userIDs, actorID)
	if err := d.bus.Publish(ctx, event); err != nil {
		d.logger.Error("failed to publish membership change",
			"group_kind", group.Kind,
			"group_id", group.ID,
			"error", err)
	}
}
