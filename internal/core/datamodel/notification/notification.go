package notification

import "time"

type Notification struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	Title     string     `gorm:"column:title;not null"`
	Body      string     `gorm:"column:body"`
	Kind      string     `gorm:"column:kind;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
