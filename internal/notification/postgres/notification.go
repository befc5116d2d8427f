package postgres

import (
	"context"
	"time"

	notificationDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/notification"
	"github.com/lazypos/admin-api/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.RepositoryAPI {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, row *notificationDatamodel.Notification) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]notificationDatamodel.Notification, error) {
	var rows []notificationDatamodel.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", now).Error
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
