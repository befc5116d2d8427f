package department_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/cache"
	departmentDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/department"
	"github.com/lazypos/admin-api/internal/department"
	"github.com/lazypos/admin-api/internal/membership"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDepartmentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Service Suite")
}

// MockRepository implements department.RepositoryAPI
type MockRepository struct {
	departments map[int64]*departmentDatamodel.Department
	nextID      int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{departments: make(map[int64]*departmentDatamodel.Department), nextID: 1}
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*departmentDatamodel.Department, error) {
	return m.departments[id], nil
}

func (m *MockRepository) Create(_ context.Context, row *departmentDatamodel.Department) error {
	row.ID = m.nextID
	m.nextID++
	m.departments[row.ID] = row
	return nil
}

func (m *MockRepository) Update(_ context.Context, row *departmentDatamodel.Department) error {
	m.departments[row.ID] = row
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

// MockCacheStore implements department.CacheStore over the repository
type MockCacheStore struct {
	repo   *MockRepository
	resets []cache.EntityType
}

func (m *MockCacheStore) Departments(_ context.Context) ([]departmentDatamodel.Department, error) {
	var out []departmentDatamodel.Department
	for _, d := range m.repo.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (m *MockCacheStore) Reset(_ context.Context, types ...cache.EntityType) error {
	m.resets = append(m.resets, types...)
	return nil
}

var _ = Describe("Department Service", func() {
	var (
		repo       *MockRepository
		memberRepo *MockMemberRepository
		cacheStore *MockCacheStore
		service    *department.Service
		admin      *internal.Principal
		ctx        context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		memberRepo = &MockMemberRepository{active: make(map[int64][]int64)}
		cacheStore = &MockCacheStore{repo: repo}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		members := membership.NewManager(memberRepo, nil, logger)
		service = department.NewService(repo, members, cacheStore, logger)
		admin = &internal.Principal{UserID: 1, IsAdmin: true, AccountType: internal.AccountTypeOperation}
		ctx = context.Background()
	})

	Describe("AddOrUpdate", func() {
		It("should reject a missing code or name", func() {
			_, err := service.AddOrUpdate(ctx, admin, department.DepartmentDTO{Name: "Finance"})
			Expect(err).To(Equal(internal.ErrDataInvalid))
		})

		It("should create a department and refresh the department cache", func() {
			created, err := service.AddOrUpdate(ctx, admin, department.DepartmentDTO{Code: "FIN", Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeZero())
			Expect(cacheStore.resets).To(ContainElement(cache.TypeDepartment))
		})
	})

	Describe("UpdateUsers", func() {
		It("should refresh the user cache when the assignment changed", func() {
			created, err := service.AddOrUpdate(ctx, admin, department.DepartmentDTO{Code: "FIN", Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())

			changed, err := service.UpdateUsers(ctx, admin, created.ID, []int64{4, 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(cacheStore.resets).To(ContainElement(cache.TypeUser))

			resetsBefore := len(cacheStore.resets)
			changed, err = service.UpdateUsers(ctx, admin, created.ID, []int64{5, 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(cacheStore.resets).To(HaveLen(resetsBefore), "no user cache reset when nothing moved")
		})
	})

	Describe("Trash", func() {
		It("should refuse deletion while users are still assigned", func() {
			created, err := service.AddOrUpdate(ctx, admin, department.DepartmentDTO{Code: "FIN", Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUsers(ctx, admin, created.ID, []int64{4})
			Expect(err).NotTo(HaveOccurred())

			err = service.Trash(ctx, created.ID, true)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeGroupHasMembers))
		})

		It("should allow deletion after users are moved out", func() {
			created, err := service.AddOrUpdate(ctx, admin, department.DepartmentDTO{Code: "FIN", Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUsers(ctx, admin, created.ID, []int64{4})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUsers(ctx, admin, created.ID, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Trash(ctx, created.ID, true)).To(Succeed())
			Expect(repo.departments[created.ID].Status).To(Equal(-1))
		})
	})
})
