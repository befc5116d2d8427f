package role

import (
	"context"
	"log/slog"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/authz"
	"github.com/lazypos/admin-api/internal/cache"
	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	"github.com/lazypos/admin-api/internal/membership"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	Create(ctx context.Context, role *roleDatamodel.Role) error
	Update(ctx context.Context, role *roleDatamodel.Role) error
	UpsertPermissions(ctx context.Context, roleID int64, grants []PermissionGrant) error
}

// CacheResetter is the slice of the cache store write paths need.
type CacheResetter interface {
	Reset(ctx context.Context, types ...cache.EntityType) error
}

type Service struct {
	repo     RepositoryAPI
	members  *membership.Manager
	resolver *authz.Resolver
	cache    CacheResetter
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, members *membership.Manager, resolver *authz.Resolver, cacheStore CacheResetter, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		resolver: resolver,
		cache:    cacheStore,
		logger:   logger,
	}
}

// AllRoles lists the active roles the principal's account type may see.
// When forUserID is non-nil each row is annotated with whether that user
// actively belongs to it.
func (s *Service) AllRoles(ctx context.Context, principal *internal.Principal, forUserID *int64) ([]RoleResponse, error) {
	roles, err := s.resolver.VisibleRoles(ctx, principal)
	if err != nil {
		s.logger.Error("failed to resolve visible roles", "error", err)
		return nil, err
	}

	var assigned map[int64]struct{}
	if forUserID != nil {
		ids, err := s.resolver.UserRoleIDs(ctx, *forUserID)
		if err != nil {
			return nil, err
		}
		assigned = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			assigned[id] = struct{}{}
		}
	}

	responses := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		resp := toResponse(&roles[i])
		if assigned != nil {
			member := false
			if _, ok := assigned[resp.ID]; ok {
				member = true
			}
			resp.Assigned = &member
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*RoleResponse, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Status == -1 {
		return nil, internal.ErrRoleNotFound
	}
	resp := toResponse(row)
	return &resp, nil
}

// AddOrUpdate creates the role when ID is zero, otherwise updates it. The
// role cache is refreshed after a successful write.
func (s *Service) AddOrUpdate(ctx context.Context, principal *internal.Principal, dto RoleDTO) (*RoleResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrDataInvalid
	}

	var row *roleDatamodel.Role
	if dto.ID == 0 {
		row = &roleDatamodel.Role{
			Code:        dto.Code,
			Name:        dto.Name,
			Description: dto.Description,
			Status:      1,
			CreatedBy:   principal.UserID,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			s.logger.Error("failed to create role", "error", err, "code", dto.Code)
			return nil, err
		}
	} else {
		existing, err := s.repo.GetByID(ctx, dto.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.Status == -1 {
			return nil, internal.ErrRoleNotFound
		}
		existing.Code = dto.Code
		existing.Name = dto.Name
		existing.Description = dto.Description
		if err := s.repo.Update(ctx, existing); err != nil {
			s.logger.Error("failed to update role", "error", err, "role_id", dto.ID)
			return nil, err
		}
		row = existing
	}

	if err := s.cache.Reset(ctx, cache.TypeRole); err != nil {
		s.logger.Error("failed to refresh role cache", "error", err)
		return nil, err
	}

	resp := toResponse(row)
	return &resp, nil
}

// Trash soft-deletes or restores a role. Deletion is refused while the role
// still has active members; restore is always allowed.
func (s *Service) Trash(ctx context.Context, id int64, deleted bool) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrRoleNotFound
	}

	if deleted {
		count, err := s.members.ActiveMemberCount(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return internal.NewGroupHasMembersError(count)
		}
		row.Status = -1
	} else {
		row.Status = 1
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return err
	}
	return s.cache.Reset(ctx, cache.TypeRole)
}

// UpdateUsers replaces the role's member set.
func (s *Service) UpdateUsers(ctx context.Context, principal *internal.Principal, roleID int64, userIDs []int64) (bool, error) {
	row, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		return false, err
	}
	if row == nil || row.Status == -1 {
		return false, internal.ErrRoleNotFound
	}

	group := membership.Group{Kind: "role", ID: row.ID, Name: row.Name}
	return s.members.SetMembers(ctx, group, userIDs, principal.UserID)
}

// UpdatePermissions replaces the role's grant rows. Rows are created on the
// first grant and toggled through Allow afterwards, never deleted.
func (s *Service) UpdatePermissions(ctx context.Context, roleID int64, grants []PermissionGrant) error {
	row, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if row == nil || row.Status == -1 {
		return internal.ErrRoleNotFound
	}
	return s.repo.UpsertPermissions(ctx, roleID, grants)
}

// Permissions annotates the full catalog against one role's grants.
func (s *Service) Permissions(ctx context.Context, roleID int64) ([]authz.EffectivePermission, error) {
	return s.resolver.RolePermissions(ctx, roleID)
}
