package permission

import "time"

// Permission identifies a guarded operation by a controller and action pair.
// Types lists the scope values a grant row may pick from for this permission.
type Permission struct {
	ID         int64     `gorm:"primaryKey"`
	Controller string    `gorm:"column:controller;not null;uniqueIndex:idx_controller_action"`
	Action     string    `gorm:"column:action;not null;uniqueIndex:idx_controller_action"`
	Name       string    `gorm:"column:name;not null"`
	Title      string    `gorm:"column:title"`
	Group      string    `gorm:"column:perm_group"`
	Types      []int     `gorm:"column:types;serializer:json"`
	Status     int       `gorm:"column:status;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Link is a navigation entry. A nil PermissionID marks a grouping node that
// is never shown on its own.
type Link struct {
	ID           int64     `gorm:"primaryKey"`
	ParentID     *int64    `gorm:"column:parent_id"`
	PermissionID *int64    `gorm:"column:permission_id"`
	Name         string    `gorm:"column:name;not null"`
	Link         string    `gorm:"column:link"`
	Icon         string    `gorm:"column:icon"`
	Group        string    `gorm:"column:link_group"`
	GroupOrder   int       `gorm:"column:group_order"`
	Order        int       `gorm:"column:item_order"`
	Status       int       `gorm:"column:status;default:1"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Link) TableName() string { return "link_permissions" }
