package service

import (
	"context"
	"time"

	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/pkg/apperror"
)

// Analytics periods.
const (
	PeriodYear  = "year"
	PeriodMonth = "month"
	PeriodWeek  = "week"
)

// Bucket is one interval of the analytics series, oldest first.
type Bucket struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}

// countFunc counts rows created in [from, to).
type countFunc func(ctx context.Context, from, to time.Time) (int64, error)

type AnalyticsService interface {
	Users(ctx context.Context, period string) ([]Bucket, error)
	Courses(ctx context.Context, period string) ([]Bucket, error)
	Orders(ctx context.Context, period string) ([]Bucket, error)
}

type analyticsService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	orders  repository.OrderRepository
	now     func() time.Time
}

func NewAnalyticsService(users repository.UserRepository, courses repository.CourseRepository, orders repository.OrderRepository) AnalyticsService {
	return &analyticsService{
		users:   users,
		courses: courses,
		orders:  orders,
		now:     time.Now,
	}
}

func (s *analyticsService) Users(ctx context.Context, period string) ([]Bucket, error) {
	return s.series(ctx, period, s.users.CountCreatedBetween)
}

func (s *analyticsService) Courses(ctx context.Context, period string) ([]Bucket, error) {
	return s.series(ctx, period, s.courses.CountCreatedBetween)
}

func (s *analyticsService) Orders(ctx context.Context, period string) ([]Bucket, error) {
	return s.series(ctx, period, s.orders.CountCreatedBetween)
}

func (s *analyticsService) series(ctx context.Context, period string, count countFunc) ([]Bucket, error) {
	switch period {
	case PeriodYear:
		return s.yearly(ctx, count)
	case PeriodMonth:
		return s.monthly(ctx, count)
	case PeriodWeek:
		return s.weekly(ctx, count)
	default:
		return nil, apperror.Validation("analytics type must be year, month or week")
	}
}

// yearly yields 12 month buckets ending at the current month.
func (s *analyticsService) yearly(ctx context.Context, count countFunc) ([]Bucket, error) {
	now := s.now()
	buckets := make([]Bucket, 0, 12)
	for i := 11; i >= 0; i-- {
		from := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		to := from.AddDate(0, 1, 0)

		n, err := count(ctx, from, to)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		buckets = append(buckets, Bucket{Period: from.Format("Jan 2006"), Count: n})
	}
	return buckets, nil
}

// monthly splits the previous calendar month into four buckets, the
// last one absorbing the month's remainder. time.Date normalizes the
// January underflow into December of the prior year.
func (s *analyticsService) monthly(ctx context.Context, count countFunc) ([]Bucket, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	buckets := make([]Bucket, 0, 4)
	for i := 0; i < 4; i++ {
		from := monthStart.AddDate(0, 0, i*7)
		to := from.AddDate(0, 0, 7)
		if i == 3 || to.After(monthEnd) {
			to = monthEnd
		}

		n, err := count(ctx, from, to)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		buckets = append(buckets, Bucket{
			Period: from.Format("02 Jan") + " - " + to.AddDate(0, 0, -1).Format("02 Jan"),
			Count:  n,
		})
	}
	return buckets, nil
}

// weekly yields 7 daily buckets, a trailing window that includes today.
func (s *analyticsService) weekly(ctx context.Context, count countFunc) ([]Bucket, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	buckets := make([]Bucket, 0, 7)
	for i := 6; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		to := from.AddDate(0, 0, 1)

		n, err := count(ctx, from, to)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		buckets = append(buckets, Bucket{Period: from.Format("02 Jan"), Count: n})
	}
	return buckets, nil
}
