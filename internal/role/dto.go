package role

import (
	"github.com/go-playground/validator/v10"
	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
)

var validate = validator.New()

type RoleDTO struct {
	ID          int64  `json:"id"`
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (d RoleDTO) Validate() error {
	return validate.Struct(d)
}

// PermissionGrant is one row of a role's grant matrix as edited in the UI.
type PermissionGrant struct {
	PermissionID int64 `json:"permission_id" validate:"required"`
	Allow        bool  `json:"allow"`
	Type         int   `json:"type"`
}

type UpdateUsersDTO struct {
	UserIDs []int64 `json:"user_ids"`
}

type UpdatePermissionsDTO struct {
	Grants []PermissionGrant `json:"grants" validate:"dive"`
}

func (d UpdatePermissionsDTO) Validate() error {
	return validate.Struct(d)
}

type TrashDTO struct {
	Deleted bool `json:"deleted"`
}

type RoleResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      int    `json:"status"`
	CreatedBy   int64  `json:"created_by"`
	// Assigned is set only when the listing was asked to annotate
	// membership of a specific user.
	Assigned *bool `json:"assigned,omitempty"`
}

func toResponse(row *roleDatamodel.Role) RoleResponse {
	return RoleResponse{
		ID:          row.ID,
		Code:        row.Code,
		Name:        row.Name,
		Description: row.Description,
		Status:      row.Status,
		CreatedBy:   row.CreatedBy,
	}
}
