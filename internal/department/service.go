package department

import (
	"context"
	"log/slog"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/cache"
	departmentDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/department"
	"github.com/lazypos/admin-api/internal/membership"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	Create(ctx context.Context, department *departmentDatamodel.Department) error
	Update(ctx context.Context, department *departmentDatamodel.Department) error
}

type CacheStore interface {
	Departments(ctx context.Context) ([]departmentDatamodel.Department, error)
	Reset(ctx context.Context, types ...cache.EntityType) error
}

type Service struct {
	repo    RepositoryAPI
	members *membership.Manager
	cache   CacheStore
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, members *membership.Manager, cacheStore CacheStore, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		cache:   cacheStore,
		logger:  logger,
	}
}

// AllDepartments lists active departments from the cache snapshot.
func (s *Service) AllDepartments(ctx context.Context) ([]DepartmentResponse, error) {
	departments, err := s.cache.Departments(ctx)
	if err != nil {
		s.logger.Error("failed to load departments", "error", err)
		return nil, err
	}

	responses := make([]DepartmentResponse, 0, len(departments))
	for i := range departments {
		if departments[i].Status != 1 {
			continue
		}
		responses = append(responses, toResponse(&departments[i]))
	}
	return responses, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*DepartmentResponse, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Status == -1 {
		return nil, internal.ErrDepartmentNotFound
	}
	resp := toResponse(row)
	return &resp, nil
}

func (s *Service) AddOrUpdate(ctx context.Context, principal *internal.Principal, dto DepartmentDTO) (*DepartmentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrDataInvalid
	}

	var row *departmentDatamodel.Department
	if dto.ID == 0 {
		row = &departmentDatamodel.Department{
			Code:      dto.Code,
			Name:      dto.Name,
			ParentID:  dto.ParentID,
			ManagerID: dto.ManagerID,
			Status:    1,
			CreatedBy: principal.UserID,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			s.logger.Error("failed to create department", "error", err, "code", dto.Code)
			return nil, err
		}
	} else {
		existing, err := s.repo.GetByID(ctx, dto.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.Status == -1 {
			return nil, internal.ErrDepartmentNotFound
		}
		existing.Code = dto.Code
		existing.Name = dto.Name
		existing.ParentID = dto.ParentID
		existing.ManagerID = dto.ManagerID
		if err := s.repo.Update(ctx, existing); err != nil {
			s.logger.Error("failed to update department", "error", err, "department_id", dto.ID)
			return nil, err
		}
		row = existing
	}

	if err := s.cache.Reset(ctx, cache.TypeDepartment); err != nil {
		s.logger.Error("failed to refresh department cache", "error", err)
		return nil, err
	}

	resp := toResponse(row)
	return &resp, nil
}

// Trash soft-deletes or restores a department. Deletion is refused while
// users are still assigned to it.
func (s *Service) Trash(ctx context.Context, id int64, deleted bool) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrDepartmentNotFound
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
	return s.cache.Reset(ctx, cache.TypeDepartment)
}

// UpdateUsers reassigns the set of users belonging to the department. The
// user cache is refreshed afterwards because assignment lives on the user
// row.
func (s *Service) UpdateUsers(ctx context.Context, principal *internal.Principal, departmentID int64, userIDs []int64) (bool, error) {
	row, err := s.repo.GetByID(ctx, departmentID)
	if err != nil {
		return false, err
	}
	if row == nil || row.Status == -1 {
		return false, internal.ErrDepartmentNotFound
	}

	group := membership.Group{Kind: "department", ID: row.ID, Name: row.Name}
	changed, err := s.members.SetMembers(ctx, group, userIDs, principal.UserID)
	if err != nil {
		return false, err
	}

	if changed {
		if err := s.cache.Reset(ctx, cache.TypeUser); err != nil {
			s.logger.Error("failed to refresh user cache", "error", err)
			return false, err
		}
	}
	return changed, nil
}
