package department

import (
	"github.com/go-playground/validator/v10"
	departmentDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/department"
)

var validate = validator.New()

type DepartmentDTO struct {
	ID        int64  `json:"id"`
	Code      string `json:"code" validate:"required"`
	Name      string `json:"name" validate:"required"`
	ParentID  *int64 `json:"parent_id"`
	ManagerID *int64 `json:"manager_id"`
}

func (d DepartmentDTO) Validate() error {
	return validate.Struct(d)
}

type UpdateUsersDTO struct {
	UserIDs []int64 `json:"user_ids"`
}

type TrashDTO struct {
	Deleted bool `json:"deleted"`
}

type DepartmentResponse struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	ParentID  *int64 `json:"parent_id"`
	ManagerID *int64 `json:"manager_id"`
	Status    int    `json:"status"`
	CreatedBy int64  `json:"created_by"`
}

func toResponse(row *departmentDatamodel.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        row.ID,
		Code:      row.Code,
		Name:      row.Name,
		ParentID:  row.ParentID,
		ManagerID: row.ManagerID,
		Status:    row.Status,
		CreatedBy: row.CreatedBy,
	}
}
