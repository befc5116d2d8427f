package authz

import (
	"context"

	"github.com/lazypos/admin-api/internal"
	rolemodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	usermodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
)

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// VisibleRoles filters active roles down to what the principal's account
// type may see. Records the principal created are always visible to them,
// whatever their classification.
func (r *Resolver) VisibleRoles(ctx context.Context, principal *internal.Principal) ([]rolemodel.Role, error) {
	roles, err := r.catalog.Roles(ctx)
	if err != nil {
		return nil, err
	}

	shop := codeSet(r.policy.ShopRoleCodes)
	agency := codeSet(r.policy.AgencyRoleCodes)
	collaborator := codeSet(r.policy.CollaboratorRoleCodes)

	out := make([]rolemodel.Role, 0, len(roles))
	for _, role := range roles {
		if role.Status != 1 {
			continue
		}
		if role.CreatedBy == principal.UserID {
			out = append(out, role)
			continue
		}

		_, isShop := shop[role.Code]
		_, isAgency := agency[role.Code]
		_, isCollaborator := collaborator[role.Code]

		visible := false
		switch principal.AccountType {
		case internal.AccountTypeOperation:
			visible = principal.IsAdmin || (!isShop && !isAgency && !isCollaborator)
		case internal.AccountTypeShop:
			visible = isShop
		case internal.AccountTypeAgency:
			visible = isAgency
		case internal.AccountTypeCollaborator:
			visible = isCollaborator
		}
		if visible {
			out = append(out, role)
		}
	}
	return out, nil
}

// VisibleUsers applies the same boundary to the user listing, classifying
// targets by their own account type.
func (r *Resolver) VisibleUsers(ctx context.Context, principal *internal.Principal, users []usermodel.User) []usermodel.User {
	out := make([]usermodel.User, 0, len(users))
	for _, u := range users {
		if u.Status == -1 {
			continue
		}
		if u.CreatedBy == principal.UserID {
			out = append(out, u)
			continue
		}

		target := internal.AccountType(u.AccountType)
		visible := false
		switch principal.AccountType {
		case internal.AccountTypeOperation:
			visible = principal.IsAdmin || target == internal.AccountTypeOperation
		case internal.AccountTypeShop:
			visible = target == internal.AccountTypeShop
		case internal.AccountTypeAgency:
			visible = target == internal.AccountTypeAgency
		case internal.AccountTypeCollaborator:
			visible = target == internal.AccountTypeCollaborator
		}
		if visible {
			out = append(out, u)
		}
	}
	return out
}
