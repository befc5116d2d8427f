package postgres

import (
	"context"
	"errors"

	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	"github.com/lazypos/admin-api/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	var row roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *RoleRepository) Create(ctx context.Context, row *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *RoleRepository) Update(ctx context.Context, row *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// UpsertPermissions writes the role's grant matrix in one transaction.
// Existing rows are toggled in place; rows for permissions never granted
// before are inserted.
func (r *RoleRepository) UpsertPermissions(ctx context.Context, roleID int64, grants []role.PermissionGrant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, grant := range grants {
			var existing roleDatamodel.RolePermission
			err := tx.Where("role_id = ? AND permission_id = ?", roleID, grant.PermissionID).
				First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := roleDatamodel.RolePermission{
					RoleID:       roleID,
					PermissionID: grant.PermissionID,
					Allow:        grant.Allow,
					Type:         grant.Type,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				existing.Allow = grant.Allow
				existing.Type = grant.Type
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
