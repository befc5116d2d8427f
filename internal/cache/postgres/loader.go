package postgres

import (
	"context"

	"github.com/lazypos/admin-api/internal/cache"
	departmentDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/department"
	permissionDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	teamDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type SnapshotLoader struct {
	db *gorm.DB
}

func NewSnapshotLoader(db *gorm.DB) cache.Loader {
	return &SnapshotLoader{db: db}
}

func (l *SnapshotLoader) LoadUsers(ctx context.Context) ([]userDatamodel.User, error) {
	var rows []userDatamodel.User
	err := l.db.WithContext(ctx).Where("status <> ?", -1).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (l *SnapshotLoader) LoadTeams(ctx context.Context) ([]teamDatamodel.Team, error) {
	var rows []teamDatamodel.Team
	err := l.db.WithContext(ctx).Where("status <> ?", -1).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (l *SnapshotLoader) LoadRoles(ctx context.Context) ([]roleDatamodel.Role, error) {
	var rows []roleDatamodel.Role
	err := l.db.WithContext(ctx).Where("status <> ?", -1).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (l *SnapshotLoader) LoadDepartments(ctx context.Context) ([]departmentDatamodel.Department, error) {
	var rows []departmentDatamodel.Department
	err := l.db.WithContext(ctx).Where("status <> ?", -1).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (l *SnapshotLoader) LoadPermissions(ctx context.Context) ([]permissionDatamodel.Permission, error) {
	var rows []permissionDatamodel.Permission
	err := l.db.WithContext(ctx).Where("status = ?", 1).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (l *SnapshotLoader) LoadLinks(ctx context.Context) ([]permissionDatamodel.Link, error) {
	var rows []permissionDatamodel.Link
	err := l.db.WithContext(ctx).Where("status = ?", 1).Order("group_order ASC, item_order ASC").Find(&rows).Error
	return rows, err
}
