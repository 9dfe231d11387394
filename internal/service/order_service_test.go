package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"acadex.dev/acadex/internal/cache"
	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
)

type orderEnv struct {
	svc      OrderService
	orders   repository.OrderRepository
	courses  repository.CourseRepository
	users    repository.UserRepository
	sessions *session.Manager
	mail     *mailRecorder

	courseSvc CourseService
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()

	db := newTestDB(t)
	orders := repository.NewOrderRepository(db)
	courses := repository.NewCourseRepository(db)
	users := repository.NewUserRepository(db)
	sessions := session.NewManager(session.NewMemoryStore(), "access-secret", "refresh-secret", 5, 3)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil)
	mail := &mailRecorder{}

	return &orderEnv{
		svc:       NewOrderService(orders, courses, users, sessions, notifications, mail),
		orders:    orders,
		courses:   courses,
		users:     users,
		sessions:  sessions,
		mail:      mail,
		courseSvc: NewCourseService(courses, users, notifications, mail, &stubImages{}, &stubSearch{}, cache.NewMemory()),
	}
}

func (e *orderEnv) seedUser(t *testing.T, ctx context.Context, email, role string) *model.User {
	t.Helper()

	user := &model.User{
		Email:      email,
		Password:   "hashed",
		FirstName:  "Dana",
		LastName:   "Khalil",
		Role:       role,
		IsVerified: true,
	}
	assert.NoError(t, e.users.Create(ctx, user))
	return user
}

func (e *orderEnv) seedCourse(t *testing.T, ctx context.Context, creator *model.User) *model.Course {
	t.Helper()

	course, err := e.courseSvc.Create(ctx, creator, CreateCourseInput{
		Title:       "Distributed systems",
		Description: "Consensus and everything after",
		Price:       99.0,
	})
	assert.NoError(t, err)
	return course
}

func paymentInfo(t *testing.T) json.RawMessage {
	t.Helper()

	raw, err := json.Marshal(map[string]string{"provider": "stripe", "status": "succeeded"})
	assert.NoError(t, err)
	return raw
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)

	creator := env.seedUser(t, ctx, "creator@example.com", model.RoleAdmin)
	course := env.seedCourse(t, ctx, creator)
	buyer := env.seedUser(t, ctx, "buyer@example.com", model.RoleUser)
	assert.NoError(t, env.sessions.Store().Save(ctx, buyer))

	order, err := env.svc.Create(ctx, buyer, CreateOrderInput{
		CourseID:    course.ID.String(),
		PaymentInfo: paymentInfo(t),
	})
	assert.NoError(t, err)
	assert.Equal(t, buyer.ID, order.UserID)
	assert.Equal(t, course.ID, order.CourseID)

	stored, err := env.courses.FindByID(ctx, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored.Purchased)
	assert.Len(t, stored.Students, 1)

	owns, err := env.users.HasCourse(ctx, buyer.ID, course.ID)
	assert.NoError(t, err)
	assert.True(t, owns)

	// The session snapshot picks up the membership right away.
	snapshot, err := env.sessions.Store().Lookup(ctx, buyer.ID.String())
	assert.NoError(t, err)
	assert.Len(t, snapshot.Courses, 1)

	// Buyer and creator each get a receipt.
	assert.Len(t, env.mail.sent, 2)
}

func TestCreateOrderRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)

	creator := env.seedUser(t, ctx, "creator@example.com", model.RoleAdmin)
	course := env.seedCourse(t, ctx, creator)
	buyer := env.seedUser(t, ctx, "buyer@example.com", model.RoleUser)
	assert.NoError(t, env.sessions.Store().Save(ctx, buyer))

	_, err := env.svc.Create(ctx, buyer, CreateOrderInput{
		CourseID:    course.ID.String(),
		PaymentInfo: paymentInfo(t),
	})
	assert.NoError(t, err)

	refreshed, err := env.users.FindByID(ctx, buyer.ID)
	assert.NoError(t, err)

	_, err = env.svc.Create(ctx, refreshed, CreateOrderInput{
		CourseID:    course.ID.String(),
		PaymentInfo: paymentInfo(t),
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	// Counters and rosters are untouched by the rejected attempt.
	stored, err := env.courses.FindByID(ctx, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored.Purchased)
	assert.Len(t, stored.Students, 1)

	_, total, err := env.orders.FindAll(ctx, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestCreateOrderRejectsStaleSnapshotDuplicate(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)

	creator := env.seedUser(t, ctx, "creator@example.com", model.RoleAdmin)
	course := env.seedCourse(t, ctx, creator)
	buyer := env.seedUser(t, ctx, "buyer@example.com", model.RoleUser)
	assert.NoError(t, env.sessions.Store().Save(ctx, buyer))

	_, err := env.svc.Create(ctx, buyer, CreateOrderInput{
		CourseID:    course.ID.String(),
		PaymentInfo: paymentInfo(t),
	})
	assert.NoError(t, err)

	// Even with a snapshot that predates the purchase, the database
	// side of the membership check catches the duplicate.
	_, err = env.svc.Create(ctx, buyer, CreateOrderInput{
		CourseID:    course.ID.String(),
		PaymentInfo: paymentInfo(t),
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateOrderRejectsOwnCourse(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)

	creator := env.seedUser(t, ctx, "creator@example.com", model.RoleAdmin)
	course := env.seedCourse(t, ctx, creator)

	snapshot, err := env.users.FindByID(ctx, creator.ID)
	assert.NoError(t, err)

	_, err = env.svc.Create(ctx, snapshot, CreateOrderInput{
		CourseID:    course.ID.String(),
		PaymentInfo: paymentInfo(t),
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateOrderUnknownCourse(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)

	buyer := env.seedUser(t, ctx, "buyer@example.com", model.RoleUser)

	_, err := env.svc.Create(ctx, buyer, CreateOrderInput{
		CourseID:    "b0a4f6f0-4b8f-4d89-91a3-54c1bfa2b0de",
		PaymentInfo: paymentInfo(t),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
