package postgres

import (
	"context"

	"github.com/lazypos/admin-api/internal/authz"
	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) authz.GrantRepository {
	return &GrantRepository{db: db}
}

func (r *GrantRepository) RoleGrants(ctx context.Context, roleIDs []int64) ([]authz.Grant, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var rows []roleDatamodel.RolePermission
	err := r.db.WithContext(ctx).
		Where("role_id IN ? AND allow = ?", roleIDs, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	grants := make([]authz.Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, authz.Grant{PermissionID: row.PermissionID, Type: row.Type})
	}
	return grants, nil
}

func (r *GrantRepository) UserGrants(ctx context.Context, userID int64) ([]authz.Grant, error) {
	if userID == 0 {
		return nil, nil
	}
	var rows []roleDatamodel.UserPermission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND allow = ? AND status = ?", userID, true, 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	grants := make([]authz.Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, authz.Grant{PermissionID: row.PermissionID, Type: row.Type})
	}
	return grants, nil
}

func (r *GrantRepository) ActiveRoleIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID == 0 {
		return nil, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.UserRole{}).
		Where("user_id = ? AND status = ?", userID, 1).
		Pluck("role_id", &ids).Error
	return ids, err
}
