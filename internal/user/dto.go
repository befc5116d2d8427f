package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
)

var validate = validator.New()

// Grant is one direct user-level permission row in the upsert payload.
type Grant struct {
	PermissionID int64 `json:"permission_id" validate:"required"`
	Allow        bool  `json:"allow"`
	Type         int   `json:"type"`
}

// UserDTO carries the admin upsert payload. Assignments are full replacement
// sets; a nil slice leaves the corresponding assignment untouched.
type UserDTO struct {
	ID           int64   `json:"id"`
	UserName     string  `json:"user_name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	FullName     string  `json:"full_name"`
	Password     string  `json:"password"`
	Phone        string  `json:"phone"`
	IsAdmin      bool    `json:"is_admin"`
	AccountType  int     `json:"account_type"`
	ParentID     *int64  `json:"parent_id"`
	DepartmentID *int64  `json:"department_id"`
	RoleIDs      []int64 `json:"role_ids"`
	TeamIDs      []int64 `json:"team_ids"`
	Permissions  []Grant `json:"permissions" validate:"omitempty,dive"`
}

func (d UserDTO) Validate() error {
	return validate.Struct(d)
}

type TrashDTO struct {
	Deleted bool `json:"deleted"`
}

type UserResponse struct {
	ID           int64      `json:"id"`
	UserName     string     `json:"user_name"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone"`
	IsAdmin      bool       `json:"is_admin"`
	AccountType  int        `json:"account_type"`
	ParentID     *int64     `json:"parent_id"`
	DepartmentID *int64     `json:"department_id"`
	Status       int        `json:"status"`
	LockedUntil  *time.Time `json:"locked_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toResponse(u *userDatamodel.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		UserName:     u.UserName,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		IsAdmin:      u.IsAdmin,
		AccountType:  u.AccountType,
		ParentID:     u.ParentID,
		DepartmentID: u.DepartmentID,
		Status:       u.Status,
		LockedUntil:  u.LockedUntil,
		CreatedAt:    u.CreatedAt,
	}
}

// DetailResponse adds the assignment sets the edit screen needs.
type DetailResponse struct {
	UserResponse
	RoleIDs []int64 `json:"role_ids"`
	TeamIDs []int64 `json:"team_ids"`
}
