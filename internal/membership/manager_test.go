package membership_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/lazypos/admin-api/internal/membership"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMembershipManager(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Membership Manager Suite")
}

// MockRepository implements membership.Repository over an in-memory row map
type MockRepository struct {
	rows       map[int64]map[int64]membership.Status
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{rows: make(map[int64]map[int64]membership.Status)}
}

func (m *MockRepository) group(groupID int64) map[int64]membership.Status {
	g, ok := m.rows[groupID]
	if !ok {
		g = make(map[int64]membership.Status)
		m.rows[groupID] = g
	}
	return g
}

func (m *MockRepository) Members(_ context.Context, groupID int64) ([]membership.Member, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []membership.Member
	for userID, status := range m.group(groupID) {
		out = append(out, membership.Member{UserID: userID, Status: status})
	}
	return out, nil
}

func (m *MockRepository) Apply(_ context.Context, groupID int64, reactivate, insert []int64, _ int64) error {
	if m.shouldFail {
		return m.failError
	}
	g := m.group(groupID)
	for userID, status := range g {
		if status == membership.StatusActive {
			g[userID] = membership.StatusInactive
		}
	}
	for _, userID := range reactivate {
		g[userID] = membership.StatusActive
	}
	for _, userID := range insert {
		g[userID] = membership.StatusActive
	}
	return nil
}

func (m *MockRepository) ActiveCount(_ context.Context, groupID int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	var count int64
	for _, status := range m.group(groupID) {
		if status == membership.StatusActive {
			count++
		}
	}
	return count, nil
}

// MockNotifier records every notify call
type MockNotifier struct {
	calls [][]int64
}

func (m *MockNotifier) Notify(_ context.Context, _ membership.Group, userIDs []int64, _ int64) {
	m.calls = append(m.calls, userIDs)
}

var _ = Describe("Membership Manager", func() {
	var (
		repo     *MockRepository
		notifier *MockNotifier
		manager  *membership.Manager
		ctx      context.Context
		group    membership.Group
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		notifier = &MockNotifier{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		manager = membership.NewManager(repo, notifier, logger)
		ctx = context.Background()
		group = membership.Group{Kind: "role", ID: 7, Name: "Editors"}
	})

	Describe("SetMembers", func() {
		It("should report changed and notify new members on first assignment", func() {
			changed, err := manager.SetMembers(ctx, group, []int64{1, 2}, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(notifier.calls).To(HaveLen(1))
			Expect(notifier.calls[0]).To(Equal([]int64{1, 2}))
		})

		It("should be idempotent for the same member set", func() {
			_, err := manager.SetMembers(ctx, group, []int64{1, 2}, 99)
			Expect(err).NotTo(HaveOccurred())

			changed, err := manager.SetMembers(ctx, group, []int64{1, 2}, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(notifier.calls).To(HaveLen(1))
		})

		It("should ignore ordering and duplicates in the desired set", func() {
			_, err := manager.SetMembers(ctx, group, []int64{1, 2}, 99)
			Expect(err).NotTo(HaveOccurred())

			changed, err := manager.SetMembers(ctx, group, []int64{2, 1, 2}, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
		})

		It("should notify only the symmetric difference", func() {
			_, err := manager.SetMembers(ctx, group, []int64{1, 2}, 99)
			Expect(err).NotTo(HaveOccurred())

			changed, err := manager.SetMembers(ctx, group, []int64{2, 3}, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(notifier.calls).To(HaveLen(2))
			Expect(notifier.calls[1]).To(Equal([]int64{1, 3}))
		})

		It("should reactivate tombstoned rows instead of inserting", func() {
			_, err := manager.SetMembers(ctx, group, []int64{1}, 99)
			Expect(err).NotTo(HaveOccurred())
			_, err = manager.SetMembers(ctx, group, []int64{2}, 99)
			Expect(err).NotTo(HaveOccurred())
			_, err = manager.SetMembers(ctx, group, []int64{1}, 99)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.rows[group.ID]).To(HaveLen(2))
			Expect(repo.rows[group.ID][1]).To(Equal(membership.StatusActive))
			Expect(repo.rows[group.ID][2]).To(Equal(membership.StatusInactive))
		})

		It("should clear membership for an empty set", func() {
			_, err := manager.SetMembers(ctx, group, []int64{1, 2}, 99)
			Expect(err).NotTo(HaveOccurred())

			changed, err := manager.SetMembers(ctx, group, nil, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			count, err := manager.ActiveMemberCount(ctx, group.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("should propagate repository failures without notifying", func() {
			repo.shouldFail = true
			repo.failError = errors.New("database error")

			_, err := manager.SetMembers(ctx, group, []int64{1}, 99)
			Expect(err).To(HaveOccurred())
			Expect(notifier.calls).To(BeEmpty())
		})
	})
})

var _ = Describe("Compute", func() {
	It("should insert when no rows exist", func() {
		d := membership.Compute(nil, []int64{3, 1})
		Expect(d.Changed).To(BeTrue())
		Expect(d.Insert).To(Equal([]int64{1, 3}))
		Expect(d.Reactivate).To(BeEmpty())
		Expect(d.Notify).To(Equal([]int64{1, 3}))
	})

	It("should report no change when active sets match", func() {
		existing := []membership.Member{
			{UserID: 1, Status: membership.StatusActive},
			{UserID: 2, Status: membership.StatusActive},
			{UserID: 3, Status: membership.StatusInactive},
		}
		d := membership.Compute(existing, []int64{2, 1})
		Expect(d.Changed).To(BeFalse())
		Expect(d.Notify).To(BeEmpty())
	})

	It("should split desired ids into reactivations and inserts", func() {
		existing := []membership.Member{
			{UserID: 1, Status: membership.StatusActive},
			{UserID: 2, Status: membership.StatusInactive},
		}
		d := membership.Compute(existing, []int64{2, 4})
		Expect(d.Changed).To(BeTrue())
		Expect(d.Reactivate).To(Equal([]int64{2}))
		Expect(d.Insert).To(Equal([]int64{4}))
		Expect(d.Notify).To(Equal([]int64{1, 2, 4}))
	})
})
