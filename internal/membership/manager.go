package membership

import (
	"context"
	"log/slog"
	"sync"
)

// Group identifies the collection whose member set is being replaced.
type Group struct {
	Kind string
	ID   int64
	Name string
}

// Repository persists one kind of membership rows. Apply must run the
// tombstone-all, reactivate, insert batch in a single transaction.
type Repository interface {
	Members(ctx context.Context, groupID int64) ([]Member, error)
	Apply(ctx context.Context, groupID int64, reactivate, insert []int64, actorID int64) error
	ActiveCount(ctx context.Context, groupID int64) (int64, error)
}

// Notifier delivers membership-change notices. Implementations are
// best-effort; the manager never fails a mutation over a notify error.
type Notifier interface {
	Notify(ctx context.Context, group Group, userIDs []int64, actorID int64)
}

// Manager replaces a group's member set with diff-based change detection.
// One manager serves one membership kind; edits to the same group are
// serialized with a per-group mutex so the tombstone and reactivate steps
// of concurrent calls cannot interleave.
type Manager struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewManager(repo Repository, notifier Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (m *Manager) groupLock(groupID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[groupID] = lock
	}
	return lock
}

// SetMembers replaces the group's member set and reports whether membership
// actually changed. When it did, users whose state flipped are notified;
// members present in both the old and new sets are left alone.
func (m *Manager) SetMembers(ctx context.Context, group Group, memberIDs []int64, actorID int64) (bool, error) {
	lock := m.groupLock(group.ID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := m.repo.Members(ctx, group.ID)
	if err != nil {
		return false, err
	}

	diff := Compute(existing, memberIDs)

	if err := m.repo.Apply(ctx, group.ID, diff.Reactivate, diff.Insert, actorID); err != nil {
		return false, err
	}

	if diff.Changed && len(diff.Notify) > 0 && m.notifier != nil {
		m.notifier.Notify(ctx, group, diff.Notify, actorID)
	}

	m.logger.Info("membership set",
		"group_kind", group.Kind,
		"group_id", group.ID,
		"changed", diff.Changed,
		"notified", len(diff.Notify))

	return diff.Changed, nil
}

// ActiveMemberCount is the guard input for soft deletes: trashing a group
// is refused while this is above zero.
func (m *Manager) ActiveMemberCount(ctx context.Context, groupID int64) (int64, error) {
	return m.repo.ActiveCount(ctx, groupID)
}
