package team_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/cache"
	teamDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
	"github.com/lazypos/admin-api/internal/membership"
	"github.com/lazypos/admin-api/internal/team"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTeamService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Team Service Suite")
}

// MockRepository implements team.RepositoryAPI
type MockRepository struct {
	teams   map[int64]*teamDatamodel.Team
	members *MockMemberRepository
	nextID  int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{teams: make(map[int64]*teamDatamodel.Team), nextID: 1}
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*teamDatamodel.Team, error) {
	return m.teams[id], nil
}

func (m *MockRepository) ActiveTeamIDs(_ context.Context, userID int64) ([]int64, error) {
	var out []int64
	for teamID, userIDs := range m.members.active {
		for _, id := range userIDs {
			if id == userID {
				out = append(out, teamID)
				break
			}
		}
	}
	return out, nil
}

func (m *MockRepository) Create(_ context.Context, row *teamDatamodel.Team) error {
	row.ID = m.nextID
	m.nextID++
	m.teams[row.ID] = row
	return nil
}

func (m *MockRepository) Update(_ context.Context, row *teamDatamodel.Team) error {
	m.teams[row.ID] = row
	return nil
}

// MockMemberRepository implements membership.Repository
type MockMemberRepository struct {
	active map[int64][]int64
}

func (m *MockMemberRepository) Members(_ context.Context, groupID int64) ([]membership.Member, error) {
	var out []membership.Member
	for _, id := range m.active[groupID] {
		out = append(out, membership.Member{UserID: id, Status: membership.StatusActive})
	}
	return out, nil
}

func (m *MockMemberRepository) Apply(_ context.Context, groupID int64, reactivate, insert []int64, _ int64) error {
	m.active[groupID] = append(append([]int64{}, reactivate...), insert...)
	return nil
}

func (m *MockMemberRepository) ActiveCount(_ context.Context, groupID int64) (int64, error) {
	return int64(len(m.active[groupID])), nil
}

// MockCacheStore implements team.CacheStore over the repository
type MockCacheStore struct {
	repo   *MockRepository
	resets []cache.EntityType
}

func (m *MockCacheStore) Teams(_ context.Context) ([]teamDatamodel.Team, error) {
	var out []teamDatamodel.Team
	for _, t := range m.repo.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (m *MockCacheStore) Reset(_ context.Context, types ...cache.EntityType) error {
	m.resets = append(m.resets, types...)
	return nil
}

var _ = Describe("Team Service", func() {
	var (
		repo       *MockRepository
		memberRepo *MockMemberRepository
		cacheStore *MockCacheStore
		service    *team.Service
		admin      *internal.Principal
		ctx        context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		memberRepo = &MockMemberRepository{active: make(map[int64][]int64)}
		repo.members = memberRepo
		cacheStore = &MockCacheStore{repo: repo}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		members := membership.NewManager(memberRepo, nil, logger)
		service = team.NewService(repo, members, cacheStore, logger)
		admin = &internal.Principal{UserID: 1, IsAdmin: true, AccountType: internal.AccountTypeOperation}
		ctx = context.Background()
	})

	Describe("AddOrUpdate", func() {
		It("should reject a missing code or name", func() {
			_, err := service.AddOrUpdate(ctx, admin, team.TeamDTO{Name: "Support"})
			Expect(err).To(Equal(internal.ErrDataInvalid))
		})

		It("should create a team and refresh the team cache", func() {
			created, err := service.AddOrUpdate(ctx, admin, team.TeamDTO{Code: "SUP", Name: "Support"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeZero())
			Expect(cacheStore.resets).To(ContainElement(cache.TypeTeam))
		})
	})

	Describe("AllTeams", func() {
		It("should list only active teams", func() {
			_, err := service.AddOrUpdate(ctx, admin, team.TeamDTO{Code: "SUP", Name: "Support"})
			Expect(err).NotTo(HaveOccurred())
			created, err := service.AddOrUpdate(ctx, admin, team.TeamDTO{Code: "OPS", Name: "Operations"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Trash(ctx, created.ID, true)).To(Succeed())

			teams, err := service.AllTeams(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(teams).To(HaveLen(1))
			Expect(teams[0].Code).To(Equal("SUP"))
		})

		It("should annotate membership of a target user when asked", func() {
			sup, err := service.AddOrUpdate(ctx, admin, team.TeamDTO{Code: "SUP", Name: "Support"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AddOrUpdate(ctx, admin, team.TeamDTO{Code: "OPS", Name: "Operations"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUsers(ctx, admin, sup.ID, []int64{7})
			Expect(err).NotTo(HaveOccurred())

			target := int64(7)
			teams, err := service.AllTeams(ctx, &target)
			Expect(err).NotTo(HaveOccurred())
			Expect(teams).To(HaveLen(2))
			byCode := map[string]bool{}
			for _, t := range teams {
				Expect(t.Assigned).NotTo(BeNil())
				byCode[t.Code] = *t.Assigned
			}
			Expect(byCode["SUP"]).To(BeTrue())
			Expect(byCode["OPS"]).To(BeFalse())
		})
	})

	Describe("Trash", func() {
		It("should refuse deletion while members remain and report the count", func() {
			created, err := service.AddOrUpdate(ctx, admin, team.TeamDTO{Code: "SUP", Name: "Support"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUsers(ctx, admin, created.ID, []int64{7})
			Expect(err).NotTo(HaveOccurred())

			err = service.Trash(ctx, created.ID, true)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeGroupHasMembers))
		})

		It("should allow deletion after members are removed", func() {
			created, err := service.AddOrUpdate(ctx, admin, team.TeamDTO{Code: "SUP", Name: "Support"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUsers(ctx, admin, created.ID, []int64{7})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUsers(ctx, admin, created.ID, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Trash(ctx, created.ID, true)).To(Succeed())
		})
	})
})
