package team

import (
	"github.com/go-playground/validator/v10"
	teamDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
)

var validate = validator.New()

type TeamDTO struct {
	ID          int64  `json:"id"`
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	LeaderID    *int64 `json:"leader_id"`
}

func (d TeamDTO) Validate() error {
	return validate.Struct(d)
}

type UpdateUsersDTO struct {
	UserIDs []int64 `json:"user_ids"`
}

type TrashDTO struct {
	Deleted bool `json:"deleted"`
}

type TeamResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LeaderID    *int64 `json:"leader_id"`
	Status      int    `json:"status"`
	CreatedBy   int64  `json:"created_by"`
	// Assigned is set only when the listing was asked to annotate
	// membership of a specific user.
	Assigned *bool `json:"assigned,omitempty"`
}

func toResponse(row *teamDatamodel.Team) TeamResponse {
	return TeamResponse{
		ID:          row.ID,
		Code:        row.Code,
		Name:        row.Name,
		Description: row.Description,
		LeaderID:    row.LeaderID,
		Status:      row.Status,
		CreatedBy:   row.CreatedBy,
	}
}
