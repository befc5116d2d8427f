package department

import "time"

type Department struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	ParentID  *int64    `gorm:"column:parent_id"`
	ManagerID *int64    `gorm:"column:manager_id"`
	Status    int       `gorm:"column:status;default:1"`
	CreatedBy int64     `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
