package authz

import (
	"context"
	"sort"
	"strings"

	"github.com/lazypos/admin-api/internal"
	permissionmodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
)

// LinkNode is one visible navigation entry.
type LinkNode struct {
	ID           int64  `json:"id"`
	ParentID     *int64 `json:"parent_id"`
	PermissionID *int64 `json:"permission_id"`
	Name         string `json:"name"`
	Link         string `json:"link"`
	Icon         string `json:"icon"`
	Group        string `json:"group"`
	GroupOrder   int    `json:"group_order"`
	Order        int    `json:"order"`
}

func toNode(l *permissionmodel.Link) LinkNode {
	return LinkNode{
		ID:           l.ID,
		ParentID:     l.ParentID,
		PermissionID: l.PermissionID,
		Name:         l.Name,
		Link:         l.Link,
		Icon:         l.Icon,
		Group:        l.Group,
		GroupOrder:   l.GroupOrder,
		Order:        l.Order,
	}
}

// ResolveLinks derives the navigation menu for a principal. Admins see every
// permission-backed link. Everyone else sees the links their grants cover,
// plus the parent of each visible link so folders still render, minus links
// reserved by name-suffix policy for role codes the principal lacks.
func (r *Resolver) ResolveLinks(ctx context.Context, principal *internal.Principal) ([]LinkNode, error) {
	links, err := r.catalog.Links(ctx)
	if err != nil {
		return nil, err
	}

	picked := make(map[int64]*permissionmodel.Link)

	if principal.IsAdmin {
		for i := range links {
			if links[i].PermissionID != nil {
				picked[links[i].ID] = &links[i]
			}
		}
	} else {
		merged, _, _, err := r.mergedGrants(ctx, principal.UserID, principal.RoleIDs)
		if err != nil {
			return nil, err
		}

		for i := range links {
			l := &links[i]
			if l.PermissionID == nil || l.Link == "/" {
				continue
			}
			if _, granted := merged[*l.PermissionID]; granted {
				picked[l.ID] = l
			}
		}

		// a visible child pulls in its parent folder even when the
		// parent's own permission is not granted
		for _, l := range picked {
			if l.ParentID == nil {
				continue
			}
			if _, ok := picked[*l.ParentID]; ok {
				continue
			}
			parent, err := r.catalog.LinkByID(ctx, *l.ParentID)
			if err != nil {
				return nil, err
			}
			if parent != nil {
				picked[parent.ID] = parent
			}
		}

		roleCodes, err := r.principalRoleCodes(ctx, principal)
		if err != nil {
			return nil, err
		}
		for id, l := range picked {
			if hiddenBySuffix(l.Name, roleCodes, r.policy.LinkHideRules) {
				delete(picked, id)
			}
		}
	}

	out := make([]LinkNode, 0, len(picked))
	for _, l := range picked {
		out = append(out, toNode(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupOrder != out[j].GroupOrder {
			return out[i].GroupOrder < out[j].GroupOrder
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Resolver) principalRoleCodes(ctx context.Context, principal *internal.Principal) (map[string]struct{}, error) {
	codes := make(map[string]struct{}, len(principal.RoleIDs))
	for _, id := range principal.RoleIDs {
		role, err := r.catalog.RoleByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if role != nil {
			codes[role.Code] = struct{}{}
		}
	}
	return codes, nil
}

// hiddenBySuffix reports whether a link name matches a reserved suffix the
// principal's role codes do not unlock.
func hiddenBySuffix(name string, roleCodes map[string]struct{}, rules []internal.LinkHideRule) bool {
	for _, rule := range rules {
		if !strings.HasSuffix(name, rule.Suffix) {
			continue
		}
		unlocked := false
		for _, code := range rule.RoleCodes {
			if _, ok := roleCodes[code]; ok {
				unlocked = true
				break
			}
		}
		if !unlocked {
			return true
		}
	}
	return false
}
