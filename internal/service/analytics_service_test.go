package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/pkg/apperror"
)

type analyticsEnv struct {
	svc   *analyticsService
	users repository.UserRepository
}

func newAnalyticsEnv(t *testing.T, now time.Time) *analyticsEnv {
	t.Helper()

	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	orders := repository.NewOrderRepository(db)

	svc := NewAnalyticsService(users, courses, orders).(*analyticsService)
	svc.now = func() time.Time { return now }
	return &analyticsEnv{svc: svc, users: users}
}

func (e *analyticsEnv) seedUserAt(t *testing.T, ctx context.Context, createdAt time.Time) {
	t.Helper()

	err := e.users.Create(ctx, &model.User{
		Email:     fmt.Sprintf("user-%d@example.com", createdAt.UnixNano()),
		Password:  "hashed",
		FirstName: "Seed",
		Role:      model.RoleUser,
		CreatedAt: createdAt,
	})
	assert.NoError(t, err)
}

func TestWeeklyBuckets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)
	env := newAnalyticsEnv(t, now)

	env.seedUserAt(t, ctx, time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	env.seedUserAt(t, ctx, time.Date(2026, time.March, 15, 20, 0, 0, 0, time.UTC))
	env.seedUserAt(t, ctx, time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC))
	// Outside the 7-day window.
	env.seedUserAt(t, ctx, time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))

	buckets, err := env.svc.Users(ctx, PeriodWeek)
	assert.NoError(t, err)
	assert.Len(t, buckets, 7)

	// Oldest day first, today last.
	assert.Equal(t, "09 Mar", buckets[0].Period)
	assert.Equal(t, "15 Mar", buckets[6].Period)

	counts := make([]int64, 0, 7)
	for _, b := range buckets {
		counts = append(counts, b.Count)
	}
	assert.Equal(t, []int64{0, 0, 0, 0, 1, 0, 2}, counts)
}

func TestMonthlyBucketsCoverPreviousMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	env := newAnalyticsEnv(t, now)

	// February 2026 has 28 days, so the last bucket runs 22-28.
	env.seedUserAt(t, ctx, time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC))
	env.seedUserAt(t, ctx, time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC))
	env.seedUserAt(t, ctx, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))

	buckets, err := env.svc.Users(ctx, PeriodMonth)
	assert.NoError(t, err)
	assert.Len(t, buckets, 4)

	assert.Equal(t, "01 Feb - 07 Feb", buckets[0].Period)
	assert.Equal(t, "22 Feb - 28 Feb", buckets[3].Period)
	assert.Equal(t, int64(1), buckets[0].Count)
	assert.Equal(t, int64(1), buckets[3].Count)
	assert.Equal(t, int64(0), buckets[1].Count)
}

func TestMonthlyBucketsWrapJanuary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	env := newAnalyticsEnv(t, now)

	env.seedUserAt(t, ctx, time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC))

	buckets, err := env.svc.Users(ctx, PeriodMonth)
	assert.NoError(t, err)
	assert.Len(t, buckets, 4)

	assert.Equal(t, "01 Dec - 07 Dec", buckets[0].Period)
	// December has 31 days, the final bucket absorbs the remainder.
	assert.Equal(t, "22 Dec - 31 Dec", buckets[3].Period)
	assert.Equal(t, int64(1), buckets[3].Count)
}

func TestYearlyBuckets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 14, 0, 0, 0, time.UTC)
	env := newAnalyticsEnv(t, now)

	env.seedUserAt(t, ctx, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))
	env.seedUserAt(t, ctx, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	// Before the 12-month window.
	env.seedUserAt(t, ctx, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))

	buckets, err := env.svc.Users(ctx, PeriodYear)
	assert.NoError(t, err)
	assert.Len(t, buckets, 12)

	assert.Equal(t, "Apr 2025", buckets[0].Period)
	assert.Equal(t, "Mar 2026", buckets[11].Period)

	var total int64
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), buckets[11].Count)
}

func TestAnalyticsRejectsUnknownPeriod(t *testing.T) {
	ctx := context.Background()
	env := newAnalyticsEnv(t, time.Now())

	_, err := env.svc.Users(ctx, "decade")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
