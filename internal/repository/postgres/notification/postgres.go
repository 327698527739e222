package notification

import (
	"context"
	"time"

	notificationdomain "barbid-go/internal/domain/notification"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *notificationdomain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]notificationdomain.Notification, error) {
	var notifications []notificationdomain.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PostgresRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&notificationdomain.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Model(&notificationdomain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notificationdomain.ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&notificationdomain.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now().UTC(),
		}).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Delete(&notificationdomain.Notification{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notificationdomain.ErrNotificationNotFound
	}
	return nil
}
