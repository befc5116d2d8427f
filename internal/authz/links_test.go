package authz_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/authz"
	permissionDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func permIDPtr(id int64) *int64   { return &id }
func parentIDPtr(id int64) *int64 { return &id }

var _ = Describe("Navigation Resolver", func() {
	var (
		grants   *MockGrantRepository
		catalog  *MockCatalog
		resolver *authz.Resolver
		policy   internal.AuthzConfig
		logger   *slog.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		grants = NewMockGrantRepository()
		catalog = &MockCatalog{
			permissions: []permissionDatamodel.Permission{
				{ID: 1, Controller: "users", Action: "view", Name: "users.view"},
				{ID: 2, Controller: "roles", Action: "view", Name: "roles.view"},
				{ID: 3, Controller: "reports", Action: "view", Name: "reports.view"},
			},
			links: []permissionDatamodel.Link{
				{ID: 100, Name: "Administration", Link: "#", GroupOrder: 1, Order: 1},
				{ID: 101, ParentID: parentIDPtr(100), PermissionID: permIDPtr(1), Name: "Users", Link: "/users", GroupOrder: 1, Order: 2},
				{ID: 102, ParentID: parentIDPtr(100), PermissionID: permIDPtr(2), Name: "Roles", Link: "/roles", GroupOrder: 1, Order: 3},
				{ID: 103, PermissionID: permIDPtr(3), Name: "Reports (HQ)", Link: "/reports", GroupOrder: 2, Order: 1},
				{ID: 104, PermissionID: permIDPtr(1), Name: "Home", Link: "/", GroupOrder: 0, Order: 0},
			},
			roles: []roleDatamodel.Role{
				{ID: 10, Code: "CLERK", Status: 1},
				{ID: 11, Code: "HEADQUARTERS", Status: 1},
			},
		}
		policy = internal.AuthzConfig{
			LinkHideRules: []internal.LinkHideRule{
				{Suffix: "(HQ)", RoleCodes: []string{"HEADQUARTERS"}},
			},
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = authz.NewResolver(grants, catalog, policy, logger)
		ctx = context.Background()
	})

	Context("for an admin principal", func() {
		It("should show every permission-backed link", func() {
			admin := &internal.Principal{UserID: 1, IsAdmin: true}
			links, err := resolver.ResolveLinks(ctx, admin)
			Expect(err).NotTo(HaveOccurred())

			ids := linkIDs(links)
			Expect(ids).To(ConsistOf(int64(101), int64(102), int64(103), int64(104)))
		})
	})

	Context("for a principal with no grants", func() {
		It("should return an empty list", func() {
			principal := &internal.Principal{UserID: 42, RoleIDs: []int64{10}}
			links, err := resolver.ResolveLinks(ctx, principal)
			Expect(err).NotTo(HaveOccurred())
			Expect(links).To(BeEmpty())
		})
	})

	Context("for a principal with role grants", func() {
		BeforeEach(func() {
			grants.roleGrants[10] = []authz.Grant{{PermissionID: 1, Type: 1}}
		})

		It("should include granted links and their parent chain", func() {
			principal := &internal.Principal{UserID: 42, RoleIDs: []int64{10}}
			links, err := resolver.ResolveLinks(ctx, principal)
			Expect(err).NotTo(HaveOccurred())

			ids := linkIDs(links)
			Expect(ids).To(ConsistOf(int64(100), int64(101)))
		})

		It("should exclude the root path link even when granted", func() {
			principal := &internal.Principal{UserID: 42, RoleIDs: []int64{10}}
			links, err := resolver.ResolveLinks(ctx, principal)
			Expect(err).NotTo(HaveOccurred())

			for _, l := range links {
				Expect(l.Link).NotTo(Equal("/"))
			}
		})

		It("should sort by group order then order", func() {
			grants.roleGrants[10] = append(grants.roleGrants[10], authz.Grant{PermissionID: 2, Type: 1})
			principal := &internal.Principal{UserID: 42, RoleIDs: []int64{10}}
			links, err := resolver.ResolveLinks(ctx, principal)
			Expect(err).NotTo(HaveOccurred())

			Expect(linkIDs(links)).To(Equal([]int64{100, 101, 102}))
		})
	})

	Context("with a reserved-suffix link", func() {
		BeforeEach(func() {
			grants.roleGrants[10] = []authz.Grant{{PermissionID: 3, Type: 1}}
			grants.roleGrants[11] = []authz.Grant{{PermissionID: 3, Type: 1}}
		})

		It("should hide it from principals lacking the unlocking role code", func() {
			principal := &internal.Principal{UserID: 42, RoleIDs: []int64{10}}
			links, err := resolver.ResolveLinks(ctx, principal)
			Expect(err).NotTo(HaveOccurred())
			Expect(linkIDs(links)).NotTo(ContainElement(int64(103)))
		})

		It("should show it to principals holding the unlocking role code", func() {
			principal := &internal.Principal{UserID: 43, RoleIDs: []int64{11}}
			links, err := resolver.ResolveLinks(ctx, principal)
			Expect(err).NotTo(HaveOccurred())
			Expect(linkIDs(links)).To(ContainElement(int64(103)))
		})
	})
})

func linkIDs(links []authz.LinkNode) []int64 {
	ids := make([]int64, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	return ids
}
