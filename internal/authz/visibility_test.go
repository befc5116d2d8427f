package authz_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/authz"
	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Account Type Visibility", func() {
	var (
		resolver *authz.Resolver
		catalog  *MockCatalog
		ctx      context.Context
	)

	BeforeEach(func() {
		catalog = &MockCatalog{
			roles: []roleDatamodel.Role{
				{ID: 1, Code: "BACKOFFICE", Status: 1, CreatedBy: 1},
				{ID: 2, Code: "SHOP_OWNER", Status: 1, CreatedBy: 1},
				{ID: 3, Code: "AGENCY_MANAGER", Status: 1, CreatedBy: 1},
				{ID: 4, Code: "COLLAB_PARTNER", Status: 1, CreatedBy: 1},
				{ID: 5, Code: "SELF_MADE", Status: 1, CreatedBy: 77},
				{ID: 6, Code: "RETIRED", Status: 0, CreatedBy: 1},
			},
		}
		policy := internal.AuthzConfig{
			ShopRoleCodes:         []string{"SHOP_OWNER"},
			AgencyRoleCodes:       []string{"AGENCY_MANAGER"},
			CollaboratorRoleCodes: []string{"COLLAB_PARTNER"},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = authz.NewResolver(NewMockGrantRepository(), catalog, policy, logger)
		ctx = context.Background()
	})

	Describe("VisibleRoles", func() {
		It("should show everything active to an operation admin", func() {
			admin := &internal.Principal{UserID: 1, IsAdmin: true, AccountType: internal.AccountTypeOperation}
			roles, err := resolver.VisibleRoles(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleIDsOf(roles)).To(ConsistOf(int64(1), int64(2), int64(3), int64(4), int64(5)))
		})

		It("should hide classified roles from operation non-admins", func() {
			staff := &internal.Principal{UserID: 2, AccountType: internal.AccountTypeOperation}
			roles, err := resolver.VisibleRoles(ctx, staff)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleIDsOf(roles)).To(ConsistOf(int64(1), int64(5)))
		})

		It("should show shop principals only shop-coded roles", func() {
			shop := &internal.Principal{UserID: 3, AccountType: internal.AccountTypeShop}
			roles, err := resolver.VisibleRoles(ctx, shop)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleIDsOf(roles)).To(ConsistOf(int64(2)))
		})

		It("should show agency principals only agency-coded roles", func() {
			agency := &internal.Principal{UserID: 4, AccountType: internal.AccountTypeAgency}
			roles, err := resolver.VisibleRoles(ctx, agency)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleIDsOf(roles)).To(ConsistOf(int64(3)))
		})

		It("should always show creators their own records", func() {
			creator := &internal.Principal{UserID: 77, AccountType: internal.AccountTypeCollaborator}
			roles, err := resolver.VisibleRoles(ctx, creator)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleIDsOf(roles)).To(ConsistOf(int64(4), int64(5)))
		})

		It("should never show inactive roles", func() {
			admin := &internal.Principal{UserID: 1, IsAdmin: true, AccountType: internal.AccountTypeOperation}
			roles, err := resolver.VisibleRoles(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleIDsOf(roles)).NotTo(ContainElement(int64(6)))
		})
	})

	Describe("VisibleUsers", func() {
		users := []userDatamodel.User{
			{ID: 1, AccountType: int(internal.AccountTypeOperation), Status: 1, CreatedBy: 1},
			{ID: 2, AccountType: int(internal.AccountTypeShop), Status: 1, CreatedBy: 1},
			{ID: 3, AccountType: int(internal.AccountTypeAgency), Status: 1, CreatedBy: 9},
			{ID: 4, AccountType: int(internal.AccountTypeCollaborator), Status: -1, CreatedBy: 1},
		}

		It("should keep account-type boundaries for non-admins", func() {
			shop := &internal.Principal{UserID: 5, AccountType: internal.AccountTypeShop}
			visible := resolver.VisibleUsers(ctx, shop, users)
			Expect(userIDsOf(visible)).To(ConsistOf(int64(2)))
		})

		It("should include self-created users across boundaries", func() {
			shop := &internal.Principal{UserID: 9, AccountType: internal.AccountTypeShop}
			visible := resolver.VisibleUsers(ctx, shop, users)
			Expect(userIDsOf(visible)).To(ConsistOf(int64(2), int64(3)))
		})

		It("should drop deleted users even for admins", func() {
			admin := &internal.Principal{UserID: 5, IsAdmin: true, AccountType: internal.AccountTypeOperation}
			visible := resolver.VisibleUsers(ctx, admin, users)
			Expect(userIDsOf(visible)).NotTo(ContainElement(int64(4)))
		})
	})
})

func roleIDsOf(roles []roleDatamodel.Role) []int64 {
	ids := make([]int64, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}
	return ids
}

func userIDsOf(users []userDatamodel.User) []int64 {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
