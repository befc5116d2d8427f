package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	permissionDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetByID(ctx context.Context, id int64) (*permissionDatamodel.Permission, error) {
	var row permissionDatamodel.Permission
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *PermissionRepository) Create(ctx context.Context, permission *permissionDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(permission).Error
}

func (r *PermissionRepository) Update(ctx context.Context, permission *permissionDatamodel.Permission) error {
	return r.db.WithContext(ctx).Save(permission).Error
}

func (r *PermissionRepository) GetLinkByID(ctx context.Context, id int64) (*permissionDatamodel.Link, error) {
	var row permissionDatamodel.Link
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *PermissionRepository) CreateLink(ctx context.Context, link *permissionDatamodel.Link) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *PermissionRepository) UpdateLink(ctx context.Context, link *permissionDatamodel.Link) error {
	return r.db.WithContext(ctx).Save(link).Error
}
