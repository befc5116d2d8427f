package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	UserName     string     `gorm:"column:user_name;uniqueIndex;not null"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	FullName     string     `gorm:"column:full_name;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Phone        string     `gorm:"column:phone"`
	IsAdmin      bool       `gorm:"column:is_admin;default:false"`
	AccountType  int        `gorm:"column:account_type;default:1"`
	ParentID     *int64     `gorm:"column:parent_id"`
	DepartmentID *int64     `gorm:"column:department_id"`
	Status       int        `gorm:"column:status;default:1"`
	LockedUntil  *time.Time `gorm:"column:locked_until"`
	CreatedBy    int64      `gorm:"column:created_by"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
