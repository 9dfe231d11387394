package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Read notifications older than this are removed by the daily purge.
const notificationRetention = 30 * 24 * time.Hour

type NotificationService interface {
	Create(ctx context.Context, userID uuid.UUID, title, message string) error
	List(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*model.Notification, int64, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id string) error
	MarkUnread(ctx context.Context, userID uuid.UUID, id string) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	MarkAllUnread(ctx context.Context, userID uuid.UUID) error
	PurgeRead(ctx context.Context) (int64, error)
	Subscribe(ctx context.Context, userID uuid.UUID) *redis.PubSub
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func notificationChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

// Create persists the notification and publishes it to the user's
// stream channel for connected websocket clients.
func (s *notificationService) Create(ctx context.Context, userID uuid.UUID, title, message string) error {
	notification := &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Status:  model.NotificationUnread,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(notification); err == nil {
			s.redisClient.Publish(ctx, notificationChannel(userID), payload)
		}
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*model.Notification, int64, error) {
	page, limit = normalizePage(page, limit)

	notifications, total, err := s.repo.FindByUser(ctx, userID, status, page, limit)
	if err != nil {
		return nil, 0, apperror.Upstream(err)
	}
	return notifications, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID uuid.UUID, id string) error {
	return s.setStatus(ctx, userID, id, model.NotificationRead)
}

func (s *notificationService) MarkUnread(ctx context.Context, userID uuid.UUID, id string) error {
	return s.setStatus(ctx, userID, id, model.NotificationUnread)
}

func (s *notificationService) setStatus(ctx context.Context, userID uuid.UUID, id, status string) error {
	notificationID, err := parseUUID(id)
	if err != nil {
		return err
	}

	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("notification not found")
		}
		return apperror.Upstream(err)
	}
	if notification.UserID != userID {
		return apperror.NotFound("notification not found")
	}

	if err := s.repo.UpdateStatus(ctx, notificationID, status); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.UpdateAllStatus(ctx, userID, model.NotificationUnread, model.NotificationRead); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}

func (s *notificationService) MarkAllUnread(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.UpdateAllStatus(ctx, userID, model.NotificationRead, model.NotificationUnread); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}

// PurgeRead runs from the midnight cron and removes read notifications
// past the retention window.
func (s *notificationService) PurgeRead(ctx context.Context) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, time.Now().Add(-notificationRetention))
}

// Subscribe opens a redis subscription on the user's stream channel.
// The caller owns the returned PubSub and must close it.
func (s *notificationService) Subscribe(ctx context.Context, userID uuid.UUID) *redis.PubSub {
	return s.redisClient.Subscribe(ctx, notificationChannel(userID))
}
