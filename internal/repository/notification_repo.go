package repository

import (
	"context"
	"time"

	"acadex.dev/acadex/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*model.Notification, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateAllStatus(ctx context.Context, userID uuid.UUID, from, to string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&notification).Error; err != nil {
		return nil, err
	}

	return &notification, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*model.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []*model.Notification
	if err := q.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateAllStatus flips every notification of the user currently in
// status from over to status to.
func (r *notificationRepository) UpdateAllStatus(ctx context.Context, userID uuid.UUID, from, to string) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND status = ?", userID, from).
		Update("status", to).Error
}

// DeleteReadBefore purges read notifications older than cutoff and
// reports how many rows went away.
func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.NotificationRead, cutoff).
		Delete(&model.Notification{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
