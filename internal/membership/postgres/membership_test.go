package postgres

import (
	"context"
	"testing"

	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	"github.com/lazypos/admin-api/internal/membership"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMembershipRepositories(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MembershipRepository Suite")
}

var _ = Describe("RoleMemberRepository", func() {
	var (
		db   *gorm.DB
		repo membership.Repository
		ctx  context.Context
	)

	activeMembers := func(roleID int64) []int64 {
		members, err := repo.Members(ctx, roleID)
		Expect(err).NotTo(HaveOccurred())
		var out []int64
		for _, m := range members {
			if m.Status == membership.StatusActive {
				out = append(out, m.UserID)
			}
		}
		return out
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&roleDatamodel.UserRole{})).To(Succeed())

		repo = NewRoleMemberRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("should insert new members as active rows", func() {
		Expect(repo.Apply(ctx, 1, nil, []int64{10, 20}, 99)).To(Succeed())
		Expect(activeMembers(1)).To(ConsistOf(int64(10), int64(20)))

		count, err := repo.ActiveCount(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(2)))
	})

	It("should tombstone members missing from the next set", func() {
		Expect(repo.Apply(ctx, 1, nil, []int64{10, 20}, 99)).To(Succeed())
		Expect(repo.Apply(ctx, 1, []int64{20}, nil, 99)).To(Succeed())

		Expect(activeMembers(1)).To(ConsistOf(int64(20)))

		members, err := repo.Members(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(members).To(HaveLen(2), "dropped row is kept inactive, not deleted")
	})

	It("should reactivate an inactive row instead of inserting a duplicate", func() {
		Expect(repo.Apply(ctx, 1, nil, []int64{10}, 99)).To(Succeed())
		Expect(repo.Apply(ctx, 1, nil, nil, 99)).To(Succeed())
		Expect(repo.Apply(ctx, 1, []int64{10}, nil, 99)).To(Succeed())

		var rowCount int64
		Expect(db.Model(&roleDatamodel.UserRole{}).Where("role_id = ?", 1).Count(&rowCount).Error).To(Succeed())
		Expect(rowCount).To(Equal(int64(1)))
		Expect(activeMembers(1)).To(ConsistOf(int64(10)))
	})

	It("should scope counts to the group", func() {
		Expect(repo.Apply(ctx, 1, nil, []int64{10}, 99)).To(Succeed())
		Expect(repo.Apply(ctx, 2, nil, []int64{10, 20, 30}, 99)).To(Succeed())

		count, err := repo.ActiveCount(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(1)))
	})
})

var _ = Describe("DepartmentMemberRepository", func() {
	var (
		db   *gorm.DB
		repo membership.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&userDatamodel.User{})).To(Succeed())

		for _, name := range []string{"ana", "bob", "cal"} {
			u := userDatamodel.User{UserName: name, Email: name + "@example.com", FullName: name, PasswordHash: "x", Status: 1}
			Expect(db.Create(&u).Error).To(Succeed())
		}

		repo = NewDepartmentMemberRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("should move users in and out through the department column", func() {
		Expect(repo.Apply(ctx, 7, nil, []int64{1, 2}, 99)).To(Succeed())

		members, err := repo.Members(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(members).To(HaveLen(2))

		Expect(repo.Apply(ctx, 7, []int64{2}, []int64{3}, 99)).To(Succeed())

		members, err = repo.Members(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		ids := []int64{members[0].UserID, members[1].UserID}
		Expect(ids).To(ConsistOf(int64(2), int64(3)))

		var parked userDatamodel.User
		Expect(db.First(&parked, 1).Error).To(Succeed())
		Expect(parked.DepartmentID).To(BeNil())
	})

	It("should count only users still attached", func() {
		Expect(repo.Apply(ctx, 7, nil, []int64{1, 2, 3}, 99)).To(Succeed())
		Expect(repo.Apply(ctx, 7, []int64{1}, nil, 99)).To(Succeed())

		count, err := repo.ActiveCount(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(1)))
	})
})
