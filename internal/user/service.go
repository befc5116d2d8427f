package user

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/authz"
	"github.com/lazypos/admin-api/internal/cache"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	"github.com/lazypos/admin-api/internal/lookup"
	"github.com/lazypos/admin-api/internal/membership"
)

// RepositoryAPI persists user rows and the user-side assignment rows. The
// Apply methods must run their tombstone, reactivate, insert batch in one
// transaction.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	Create(ctx context.Context, user *userDatamodel.User) error
	Update(ctx context.Context, user *userDatamodel.User) error

	RoleAssignments(ctx context.Context, userID int64) ([]membership.Member, error)
	ApplyRoles(ctx context.Context, userID int64, reactivate, insert []int64, actorID int64) error
	TeamAssignments(ctx context.Context, userID int64) ([]membership.Member, error)
	ApplyTeams(ctx context.Context, userID int64, reactivate, insert []int64, actorID int64) error

	ActivePermissionIDs(ctx context.Context, userID int64) ([]int64, error)
	UpsertPermissions(ctx context.Context, userID int64, grants []Grant, actorID int64) error
}

type CacheStore interface {
	Users(ctx context.Context) ([]userDatamodel.User, error)
	Reset(ctx context.Context, types ...cache.EntityType) error
}

type Service struct {
	repo       RepositoryAPI
	resolver   *authz.Resolver
	cache      CacheStore
	notifier   membership.Notifier
	fields     *lookup.FieldSet[userDatamodel.User]
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, resolver *authz.Resolver, cacheStore CacheStore, notifier membership.Notifier, bcryptCost int, logger *slog.Logger) *Service {
	fields := lookup.NewFieldSet(func(u userDatamodel.User) int64 { return u.ID }).
		Register("user_name", func(u userDatamodel.User) any { return u.UserName }).
		Register("email", func(u userDatamodel.User) any { return u.Email }).
		Register("full_name", func(u userDatamodel.User) any { return u.FullName }).
		Register("phone", func(u userDatamodel.User) any { return u.Phone })

	return &Service{
		repo:       repo,
		resolver:   resolver,
		cache:      cacheStore,
		notifier:   notifier,
		fields:     fields,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// AllUsers lists the users the principal's account type may see.
func (s *Service) AllUsers(ctx context.Context, principal *internal.Principal) ([]UserResponse, error) {
	users, err := s.cache.Users(ctx)
	if err != nil {
		s.logger.Error("failed to load users", "error", err)
		return nil, err
	}

	visible := s.resolver.VisibleUsers(ctx, principal, users)
	responses := make([]UserResponse, 0, len(visible))
	for i := range visible {
		responses = append(responses, toResponse(&visible[i]))
	}
	return responses, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*DetailResponse, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Status == -1 {
		return nil, internal.ErrUserNotFound
	}

	roles, err := s.repo.RoleAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.TeamAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	return &DetailResponse{
		UserResponse: toResponse(row),
		RoleIDs:      activeIDs(roles),
		TeamIDs:      activeIDs(teams),
	}, nil
}

// AddOrUpdate creates or updates a user together with its role, team and
// direct-permission assignments. The user is notified once when the role or
// permission set actually changed; team moves are silent.
func (s *Service) AddOrUpdate(ctx context.Context, principal *internal.Principal, dto UserDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrDataInvalid
	}
	if dto.ID == 0 && dto.Password == "" {
		return nil, internal.ErrDataInvalid
	}

	row, err := s.upsertRow(ctx, principal, dto)
	if err != nil {
		return nil, err
	}

	grantsChanged := false

	if dto.RoleIDs != nil {
		changed, err := s.applyAssignment(ctx, row.ID, dto.RoleIDs, principal.UserID,
			s.repo.RoleAssignments, s.repo.ApplyRoles)
		if err != nil {
			return nil, err
		}
		grantsChanged = grantsChanged || changed
	}

	if dto.TeamIDs != nil {
		if _, err := s.applyAssignment(ctx, row.ID, dto.TeamIDs, principal.UserID,
			s.repo.TeamAssignments, s.repo.ApplyTeams); err != nil {
			return nil, err
		}
	}

	if dto.Permissions != nil {
		changed, err := s.applyPermissions(ctx, row.ID, dto.Permissions, principal.UserID)
		if err != nil {
			return nil, err
		}
		grantsChanged = grantsChanged || changed
	}

	if grantsChanged && s.notifier != nil {
		group := membership.Group{Kind: "user", ID: row.ID, Name: row.UserName}
		s.notifier.Notify(ctx, group, []int64{row.ID}, principal.UserID)
	}

	if err := s.cache.Reset(ctx, cache.TypeUser); err != nil {
		s.logger.Error("failed to refresh user cache", "error", err)
		return nil, err
	}

	resp := toResponse(row)
	return &resp, nil
}

func (s *Service) upsertRow(ctx context.Context, principal *internal.Principal, dto UserDTO) (*userDatamodel.User, error) {
	if dto.ID == 0 {
		hash, err := s.hashPassword(dto.Password)
		if err != nil {
			return nil, err
		}
		row := &userDatamodel.User{
			UserName:     dto.UserName,
			Email:        dto.Email,
			FullName:     dto.FullName,
			PasswordHash: hash,
			Phone:        dto.Phone,
			IsAdmin:      dto.IsAdmin,
			AccountType:  dto.AccountType,
			ParentID:     dto.ParentID,
			DepartmentID: dto.DepartmentID,
			Status:       1,
			CreatedBy:    principal.UserID,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			s.logger.Error("failed to create user", "error", err, "user_name", dto.UserName)
			return nil, err
		}
		return row, nil
	}

	existing, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Status == -1 {
		return nil, internal.ErrUserNotFound
	}
	existing.UserName = dto.UserName
	existing.Email = dto.Email
	existing.FullName = dto.FullName
	existing.Phone = dto.Phone
	existing.IsAdmin = dto.IsAdmin
	existing.AccountType = dto.AccountType
	existing.ParentID = dto.ParentID
	existing.DepartmentID = dto.DepartmentID
	if dto.Password != "" {
		hash, err := s.hashPassword(dto.Password)
		if err != nil {
			return nil, err
		}
		existing.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", dto.ID)
		return nil, err
	}
	return existing, nil
}

func (s *Service) applyAssignment(
	ctx context.Context,
	userID int64,
	desired []int64,
	actorID int64,
	load func(context.Context, int64) ([]membership.Member, error),
	apply func(context.Context, int64, []int64, []int64, int64) error,
) (bool, error) {
	existing, err := load(ctx, userID)
	if err != nil {
		return false, err
	}
	diff := membership.Compute(existing, desired)
	if err := apply(ctx, userID, diff.Reactivate, diff.Insert, actorID); err != nil {
		return false, err
	}
	return diff.Changed, nil
}

func (s *Service) applyPermissions(ctx context.Context, userID int64, grants []Grant, actorID int64) (bool, error) {
	before, err := s.repo.ActivePermissionIDs(ctx, userID)
	if err != nil {
		return false, err
	}

	desired := make([]int64, 0, len(grants))
	for _, g := range grants {
		if g.Allow {
			desired = append(desired, g.PermissionID)
		}
	}

	if err := s.repo.UpsertPermissions(ctx, userID, grants, actorID); err != nil {
		return false, err
	}
	return !sameIDSet(before, desired), nil
}

// Trash soft-deletes or restores a user.
func (s *Service) Trash(ctx context.Context, id int64, deleted bool) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrUserNotFound
	}

	if deleted {
		row.Status = -1
	} else {
		row.Status = 1
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return err
	}
	return s.cache.Reset(ctx, cache.TypeUser)
}

// ProfileResponse is what the account screen renders: the user row plus the
// resolved grants and navigation.
type ProfileResponse struct {
	User        UserResponse                `json:"user"`
	Permissions []authz.EffectivePermission `json:"permissions"`
	Links       []authz.LinkNode            `json:"links"`
}

func (s *Service) Profile(ctx context.Context, principal *internal.Principal) (*ProfileResponse, error) {
	row, err := s.repo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Status == -1 {
		return nil, internal.ErrUserNotFound
	}

	permissions, err := s.resolver.ResolvePermissions(ctx, principal.UserID, nil)
	if err != nil {
		return nil, err
	}
	links, err := s.resolver.ResolveLinks(ctx, principal)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		User:        toResponse(row),
		Permissions: permissions,
		Links:       links,
	}, nil
}

// Lookup pages distinct property values over the cached user set.
func (s *Service) Lookup(ctx context.Context, property, value, search string, page, pageSize int) ([]string, error) {
	rows, err := s.cache.Users(ctx)
	if err != nil {
		return nil, err
	}
	return s.fields.Lookup(rows, property, value, search, page, pageSize)
}

// Exists answers whether another user already holds the value, for
// username and email uniqueness checks on the edit form.
func (s *Service) Exists(ctx context.Context, property, value string, excludeID int64) (bool, error) {
	rows, err := s.cache.Users(ctx)
	if err != nil {
		return false, err
	}
	return s.fields.Exists(rows, property, value, excludeID)
}

func (s *Service) hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func activeIDs(members []membership.Member) []int64 {
	out := make([]int64, 0, len(members))
	for _, m := range members {
		if m.Status == membership.StatusActive {
			out = append(out, m.UserID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sameIDSet(a, b []int64) bool {
	as := append([]int64(nil), a...)
	bs := append([]int64(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	as = dedupeSorted(as)
	bs = dedupeSorted(bs)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func dedupeSorted(ids []int64) []int64 {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || ids[i-1] != id {
			out = append(out, id)
		}
	}
	return out
}
