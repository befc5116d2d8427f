package permission

import (
	"context"
	"log/slog"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/cache"
	permissionDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
	"github.com/lazypos/admin-api/internal/lookup"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*permissionDatamodel.Permission, error)
	Create(ctx context.Context, permission *permissionDatamodel.Permission) error
	Update(ctx context.Context, permission *permissionDatamodel.Permission) error
	GetLinkByID(ctx context.Context, id int64) (*permissionDatamodel.Link, error)
	CreateLink(ctx context.Context, link *permissionDatamodel.Link) error
	UpdateLink(ctx context.Context, link *permissionDatamodel.Link) error
}

type CacheStore interface {
	Permissions(ctx context.Context) ([]permissionDatamodel.Permission, error)
	Links(ctx context.Context) ([]permissionDatamodel.Link, error)
	Reset(ctx context.Context, types ...cache.EntityType) error
}

type Service struct {
	repo   RepositoryAPI
	cache  CacheStore
	fields *lookup.FieldSet[permissionDatamodel.Permission]
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, cacheStore CacheStore, logger *slog.Logger) *Service {
	fields := lookup.NewFieldSet(func(p permissionDatamodel.Permission) int64 { return p.ID }).
		Register("name", func(p permissionDatamodel.Permission) any { return p.Name }).
		Register("title", func(p permissionDatamodel.Permission) any { return p.Title }).
		Register("group", func(p permissionDatamodel.Permission) any { return p.Group }).
		Register("controller", func(p permissionDatamodel.Permission) any { return p.Controller }).
		Register("action", func(p permissionDatamodel.Permission) any { return p.Action })

	return &Service{
		repo:   repo,
		cache:  cacheStore,
		fields: fields,
		logger: logger,
	}
}

// Catalog returns the full permission catalog from the cache snapshot.
func (s *Service) Catalog(ctx context.Context) ([]permissionDatamodel.Permission, error) {
	return s.cache.Permissions(ctx)
}

func (s *Service) AddOrUpdate(ctx context.Context, dto PermissionDTO) (*permissionDatamodel.Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrDataInvalid
	}

	var row *permissionDatamodel.Permission
	if dto.ID == 0 {
		row = &permissionDatamodel.Permission{
			Controller: dto.Controller,
			Action:     dto.Action,
			Name:       dto.Name,
			Title:      dto.Title,
			Group:      dto.Group,
			Types:      dto.Types,
			Status:     1,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			s.logger.Error("failed to create permission", "error", err, "name", dto.Name)
			return nil, err
		}
	} else {
		existing, err := s.repo.GetByID(ctx, dto.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, internal.ErrPermissionNotFound
		}
		existing.Controller = dto.Controller
		existing.Action = dto.Action
		existing.Name = dto.Name
		existing.Title = dto.Title
		existing.Group = dto.Group
		existing.Types = dto.Types
		if err := s.repo.Update(ctx, existing); err != nil {
			s.logger.Error("failed to update permission", "error", err, "permission_id", dto.ID)
			return nil, err
		}
		row = existing
	}

	if err := s.cache.Reset(ctx, cache.TypePermission); err != nil {
		s.logger.Error("failed to refresh permission cache", "error", err)
		return nil, err
	}
	return row, nil
}

// Links returns the full navigation catalog from the cache snapshot.
func (s *Service) Links(ctx context.Context) ([]permissionDatamodel.Link, error) {
	return s.cache.Links(ctx)
}

func (s *Service) SaveLink(ctx context.Context, dto LinkDTO) (*permissionDatamodel.Link, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrDataInvalid
	}

	var row *permissionDatamodel.Link
	if dto.ID == 0 {
		row = &permissionDatamodel.Link{
			ParentID:     dto.ParentID,
			PermissionID: dto.PermissionID,
			Name:         dto.Name,
			Link:         dto.Link,
			Icon:         dto.Icon,
			Group:        dto.Group,
			GroupOrder:   dto.GroupOrder,
			Order:        dto.Order,
			Status:       1,
		}
		if err := s.repo.CreateLink(ctx, row); err != nil {
			s.logger.Error("failed to create link", "error", err, "name", dto.Name)
			return nil, err
		}
	} else {
		existing, err := s.repo.GetLinkByID(ctx, dto.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, internal.NewNotFoundError("link does not exist", internal.ErrCodePermissionNotFound)
		}
		existing.ParentID = dto.ParentID
		existing.PermissionID = dto.PermissionID
		existing.Name = dto.Name
		existing.Link = dto.Link
		existing.Icon = dto.Icon
		existing.Group = dto.Group
		existing.GroupOrder = dto.GroupOrder
		existing.Order = dto.Order
		if err := s.repo.UpdateLink(ctx, existing); err != nil {
			s.logger.Error("failed to update link", "error", err, "link_id", dto.ID)
			return nil, err
		}
		row = existing
	}

	if err := s.cache.Reset(ctx, cache.TypeLink); err != nil {
		s.logger.Error("failed to refresh link cache", "error", err)
		return nil, err
	}
	return row, nil
}

// Lookup pages distinct property values from the cached catalog.
func (s *Service) Lookup(ctx context.Context, property, value, search string, page, pageSize int) ([]string, error) {
	rows, err := s.cache.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	return s.fields.Lookup(rows, property, value, search, page, pageSize)
}

// Exists answers whether another permission already uses the value.
func (s *Service) Exists(ctx context.Context, property, value string, excludeID int64) (bool, error) {
	rows, err := s.cache.Permissions(ctx)
	if err != nil {
		return false, err
	}
	return s.fields.Exists(rows, property, value, excludeID)
}
