package authz

import (
	"context"
	"sort"
	"strings"

	"log/slog"

	"github.com/lazypos/admin-api/internal"
	permissionmodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
	rolemodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
)

// Grant is one allow row, either role-level or user-level.
type Grant struct {
	PermissionID int64
	Type         int
}

// GrantRepository reads live grant rows. Only Allow=true rows are returned;
// revoked rows never reach the resolver.
type GrantRepository interface {
	RoleGrants(ctx context.Context, roleIDs []int64) ([]Grant, error)
	UserGrants(ctx context.Context, userID int64) ([]Grant, error)
	ActiveRoleIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Catalog is the slice of the cache store the resolver needs. Satisfied by
// *cache.Store.
type Catalog interface {
	Permissions(ctx context.Context) ([]permissionmodel.Permission, error)
	PermissionByRoute(ctx context.Context, controller, action string) (*permissionmodel.Permission, error)
	Links(ctx context.Context) ([]permissionmodel.Link, error)
	LinkByID(ctx context.Context, id int64) (*permissionmodel.Link, error)
	Roles(ctx context.Context) ([]rolemodel.Role, error)
	RoleByID(ctx context.Context, id int64) (*rolemodel.Role, error)
}

// EffectivePermission is one catalog entry annotated with the outcome of the
// role/user merge for a particular principal.
type EffectivePermission struct {
	PermissionID int64  `json:"permission_id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Group        string `json:"group"`
	Controller   string `json:"controller"`
	Action       string `json:"action"`
	Allow        bool   `json:"allow"`
	ReadOnly     bool   `json:"read_only"`
	Type         *int   `json:"type"`
	Types        []int  `json:"types"`
}

type Resolver struct {
	grants  GrantRepository
	catalog Catalog
	policy  internal.AuthzConfig
	logger  *slog.Logger
}

func NewResolver(grants GrantRepository, catalog Catalog, policy internal.AuthzConfig, logger *slog.Logger) *Resolver {
	return &Resolver{
		grants:  grants,
		catalog: catalog,
		policy:  policy,
		logger:  logger,
	}
}

// mergedGrants computes granted permission ids and their scope types for a
// user plus role set. Role grants are deduped by (permission, type) and
// collapsed to the smallest type per permission; a user grant replaces the
// role result for that permission entirely.
func (r *Resolver) mergedGrants(ctx context.Context, userID int64, roleIDs []int64) (merged map[int64]int, rolePIDs, userPIDs map[int64]struct{}, err error) {
	merged = make(map[int64]int)
	rolePIDs = make(map[int64]struct{})
	userPIDs = make(map[int64]struct{})

	if len(roleIDs) > 0 {
		roleGrants, err := r.grants.RoleGrants(ctx, roleIDs)
		if err != nil {
			return nil, nil, nil, err
		}
		seen := make(map[Grant]struct{}, len(roleGrants))
		for _, g := range roleGrants {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			rolePIDs[g.PermissionID] = struct{}{}
			if cur, ok := merged[g.PermissionID]; !ok || g.Type < cur {
				merged[g.PermissionID] = g.Type
			}
		}
	}

	if userID != 0 {
		userGrants, err := r.grants.UserGrants(ctx, userID)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, g := range userGrants {
			userPIDs[g.PermissionID] = struct{}{}
			merged[g.PermissionID] = g.Type
		}
	}

	return merged, rolePIDs, userPIDs, nil
}

// ResolvePermissions returns every catalog permission annotated for the
// target user. When explicitRoleIDs is non-nil it is used instead of the
// user's stored memberships, which callers use to preview a role edit.
// Missing users or roles degrade to an all-deny result, never an error.
func (r *Resolver) ResolvePermissions(ctx context.Context, userID int64, explicitRoleIDs []int64) ([]EffectivePermission, error) {
	roleIDs := explicitRoleIDs
	if roleIDs == nil && userID != 0 {
		ids, err := r.grants.ActiveRoleIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		roleIDs = ids
	}

	merged, rolePIDs, userPIDs, err := r.mergedGrants(ctx, userID, roleIDs)
	if err != nil {
		return nil, err
	}

	catalog, err := r.catalog.Permissions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]EffectivePermission, 0, len(catalog))
	for _, p := range catalog {
		ep := EffectivePermission{
			PermissionID: p.ID,
			Name:         p.Name,
			Title:        p.Title,
			Group:        p.Group,
			Controller:   p.Controller,
			Action:       p.Action,
			Types:        p.Types,
		}
		if t, ok := merged[p.ID]; ok {
			ep.Allow = true
			scope := t
			ep.Type = &scope
		}
		_, fromRole := rolePIDs[p.ID]
		_, fromUser := userPIDs[p.ID]
		ep.ReadOnly = fromRole && !fromUser
		out = append(out, ep)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Group < out[j].Group
	})
	return out, nil
}

// UserRoleIDs returns the ids of the roles the user actively belongs to.
func (r *Resolver) UserRoleIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.grants.ActiveRoleIDs(ctx, userID)
}

// RolePermissions annotates the catalog against a single role's grants,
// used by the role editor.
func (r *Resolver) RolePermissions(ctx context.Context, roleID int64) ([]EffectivePermission, error) {
	if roleID == 0 {
		return r.ResolvePermissions(ctx, 0, []int64{})
	}
	return r.ResolvePermissions(ctx, 0, []int64{roleID})
}

// actionSynonyms maps route action spellings onto the canonical permission
// action they are checked against.
var actionSynonyms = map[string]string{
	"":       "view",
	"items":  "view",
	"getall": "view",
	"addnew": "add",
	"insert": "add",
	"save":   "edit",
	"update": "edit",
	"delete": "delete",
	"get":    "viewdetail",
	"item":   "viewdetail",
}

func canonicalAction(action string) string {
	a := strings.ToLower(action)
	if canonical, ok := actionSynonyms[a]; ok {
		return canonical
	}
	return a
}

// Allow answers whether the principal may invoke controller/action. Admins
// pass unconditionally, as do lookup-prefixed discovery actions. An empty
// controller can never match a permission and is denied outright.
func (r *Resolver) Allow(ctx context.Context, principal *internal.Principal, controller, action string) (bool, error) {
	if principal.IsAdmin {
		return true, nil
	}
	if strings.HasPrefix(strings.ToLower(action), "lookup") {
		return true, nil
	}
	if controller == "" {
		return false, nil
	}

	perm, err := r.catalog.PermissionByRoute(ctx, controller, canonicalAction(action))
	if err != nil {
		return false, err
	}
	if perm == nil {
		return false, nil
	}

	merged, _, _, err := r.mergedGrants(ctx, principal.UserID, principal.RoleIDs)
	if err != nil {
		return false, err
	}
	_, granted := merged[perm.ID]
	return granted, nil
}

// Scope returns the effective scope type for the principal on the given
// route, or nil when nothing grants it. The merge follows ResolvePermissions:
// a user override wins, otherwise the smallest role-level type.
func (r *Resolver) Scope(ctx context.Context, principal *internal.Principal, controller, action string) (*int, error) {
	perm, err := r.catalog.PermissionByRoute(ctx, controller, canonicalAction(action))
	if err != nil || perm == nil {
		return nil, err
	}

	merged, _, _, err := r.mergedGrants(ctx, principal.UserID, principal.RoleIDs)
	if err != nil {
		return nil, err
	}
	if t, ok := merged[perm.ID]; ok {
		scope := t
		return &scope, nil
	}
	return nil, nil
}
