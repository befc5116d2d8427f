package permission

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type PermissionDTO struct {
	ID         int64  `json:"id"`
	Controller string `json:"controller" validate:"required"`
	Action     string `json:"action" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Title      string `json:"title"`
	Group      string `json:"group"`
	Types      []int  `json:"types"`
}

func (d PermissionDTO) Validate() error {
	return validate.Struct(d)
}

type LinkDTO struct {
	ID           int64  `json:"id"`
	ParentID     *int64 `json:"parent_id"`
	PermissionID *int64 `json:"permission_id"`
	Name         string `json:"name" validate:"required"`
	Link         string `json:"link"`
	Icon         string `json:"icon"`
	Group        string `json:"group"`
	GroupOrder   int    `json:"group_order"`
	Order        int    `json:"order"`
}

func (d LinkDTO) Validate() error {
	return validate.Struct(d)
}
