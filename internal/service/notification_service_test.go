package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/pkg/apperror"
)

type notificationEnv struct {
	svc  NotificationService
	repo repository.NotificationRepository
}

func newNotificationEnv(t *testing.T) *notificationEnv {
	t.Helper()

	repo := repository.NewNotificationRepository(newTestDB(t))
	return &notificationEnv{svc: NewNotificationService(repo, nil), repo: repo}
}

func TestNotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newNotificationEnv(t)
	userID := uuid.New()

	assert.NoError(t, env.svc.Create(ctx, userID, "Welcome", "Glad to have you"))
	assert.NoError(t, env.svc.Create(ctx, userID, "Course updated", "New lessons available"))

	unread, total, err := env.svc.List(ctx, userID, model.NotificationUnread, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)

	assert.NoError(t, env.svc.MarkRead(ctx, userID, unread[0].ID.String()))

	_, total, err = env.svc.List(ctx, userID, model.NotificationUnread, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	assert.NoError(t, env.svc.MarkAllRead(ctx, userID))
	_, total, err = env.svc.List(ctx, userID, model.NotificationUnread, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)

	assert.NoError(t, env.svc.MarkAllUnread(ctx, userID))
	_, total, err = env.svc.List(ctx, userID, model.NotificationRead, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	env := newNotificationEnv(t)
	owner := uuid.New()

	assert.NoError(t, env.svc.Create(ctx, owner, "Private", "Only yours"))

	list, _, err := env.svc.List(ctx, owner, "", 1, 10)
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	err = env.svc.MarkRead(ctx, uuid.New(), list[0].ID.String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPurgeReadKeepsRecentAndUnread(t *testing.T) {
	ctx := context.Background()
	env := newNotificationEnv(t)
	userID := uuid.New()

	old := time.Now().Add(-40 * 24 * time.Hour)
	assert.NoError(t, env.repo.Create(ctx, &model.Notification{
		UserID: userID, Title: "Old read", Message: "gone", Status: model.NotificationRead, CreatedAt: old,
	}))
	assert.NoError(t, env.repo.Create(ctx, &model.Notification{
		UserID: userID, Title: "Old unread", Message: "stays", Status: model.NotificationUnread, CreatedAt: old,
	}))
	assert.NoError(t, env.repo.Create(ctx, &model.Notification{
		UserID: userID, Title: "Fresh read", Message: "stays", Status: model.NotificationRead,
	}))

	purged, err := env.svc.PurgeRead(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	remaining, _, err := env.svc.List(ctx, userID, "", 1, 10)
	assert.NoError(t, err)
	assert.Len(t, remaining, 2)
}
