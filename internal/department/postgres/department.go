package postgres

import (
	"context"
	"errors"

	departmentDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/department"
	"github.com/lazypos/admin-api/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	var row departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, row *departmentDatamodel.Department) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *DepartmentRepository) Update(ctx context.Context, row *departmentDatamodel.Department) error {
	return r.db.WithContext(ctx).Save(row).Error
}
