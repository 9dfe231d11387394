package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
)

type adminEnv struct {
	svc      AdminService
	users    repository.UserRepository
	sessions *session.Manager
	mail     *mailRecorder
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()

	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	sessions := session.NewManager(session.NewMemoryStore(), "access-secret", "refresh-secret", 5, 3)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil)
	mail := &mailRecorder{}

	return &adminEnv{
		svc:      NewAdminService(users, sessions, mail, notifications, "password-secret", "http://localhost:3000"),
		users:    users,
		sessions: sessions,
		mail:     mail,
	}
}

func (e *adminEnv) seedUser(t *testing.T, ctx context.Context, email, role string) *model.User {
	t.Helper()

	user := &model.User{
		Email:      email,
		Password:   "hashed",
		FirstName:  "Rami",
		LastName:   "Aoun",
		Role:       role,
		IsVerified: true,
	}
	assert.NoError(t, e.users.Create(ctx, user))
	return user
}

func TestBlockEndsSessionAndFlagsUser(t *testing.T) {
	ctx := context.Background()
	env := newAdminEnv(t)

	owner := env.seedUser(t, ctx, "owner@example.com", model.RoleOwner)
	target := env.seedUser(t, ctx, "target@example.com", model.RoleUser)
	assert.NoError(t, env.sessions.Store().Save(ctx, target))

	deleted, err := env.svc.Block(ctx, owner, target.ID.String(), BlockInput{Reason: "spam"})
	assert.NoError(t, err)
	assert.False(t, deleted)

	stored, err := env.users.FindByID(ctx, target.ID)
	assert.NoError(t, err)
	assert.True(t, stored.IsBlocked)
	assert.Equal(t, 1, stored.BlockCount)

	snapshot, err := env.sessions.Store().Lookup(ctx, target.ID.String())
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestThirdBlockDeletesUser(t *testing.T) {
	ctx := context.Background()
	env := newAdminEnv(t)

	owner := env.seedUser(t, ctx, "owner@example.com", model.RoleOwner)
	target := env.seedUser(t, ctx, "target@example.com", model.RoleUser)

	for i := 0; i < 2; i++ {
		deleted, err := env.svc.Block(ctx, owner, target.ID.String(), BlockInput{Reason: "spam"})
		assert.NoError(t, err)
		assert.False(t, deleted)
	}

	deleted, err := env.svc.Block(ctx, owner, target.ID.String(), BlockInput{Reason: "spam"})
	assert.NoError(t, err)
	assert.True(t, deleted)

	_, err = env.users.FindByID(ctx, target.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = env.svc.Unblock(ctx, owner, target.ID.String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBlockGuards(t *testing.T) {
	ctx := context.Background()
	env := newAdminEnv(t)

	owner := env.seedUser(t, ctx, "owner@example.com", model.RoleOwner)
	admin := env.seedUser(t, ctx, "admin@example.com", model.RoleAdmin)
	peer := env.seedUser(t, ctx, "peer@example.com", model.RoleAdmin)

	_, err := env.svc.Block(ctx, owner, owner.ID.String(), BlockInput{Reason: "oops"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.Block(ctx, admin, owner.ID.String(), BlockInput{Reason: "coup"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = env.svc.Block(ctx, admin, peer.ID.String(), BlockInput{Reason: "rivalry"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUnblock(t *testing.T) {
	ctx := context.Background()
	env := newAdminEnv(t)

	owner := env.seedUser(t, ctx, "owner@example.com", model.RoleOwner)
	target := env.seedUser(t, ctx, "target@example.com", model.RoleUser)

	_, err := env.svc.Block(ctx, owner, target.ID.String(), BlockInput{Reason: "spam"})
	assert.NoError(t, err)

	assert.NoError(t, env.svc.Unblock(ctx, owner, target.ID.String()))

	stored, err := env.users.FindByID(ctx, target.ID)
	assert.NoError(t, err)
	assert.False(t, stored.IsBlocked)
	// The strike stays on record.
	assert.Equal(t, 1, stored.BlockCount)

	assert.ErrorIs(t, env.svc.Unblock(ctx, owner, target.ID.String()), apperror.ErrValidation)
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	env := newAdminEnv(t)

	owner := env.seedUser(t, ctx, "owner@example.com", model.RoleOwner)
	target := env.seedUser(t, ctx, "target@example.com", model.RoleUser)

	updated, err := env.svc.UpdateRole(ctx, owner, target.ID.String(), UpdateRoleInput{Role: model.RoleAdmin})
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	// The refreshed snapshot carries the new role for the auth gate.
	snapshot, err := env.sessions.Store().Lookup(ctx, target.ID.String())
	assert.NoError(t, err)
	assert.NotNil(t, snapshot)
	assert.Equal(t, model.RoleAdmin, snapshot.Role)

	_, err = env.svc.UpdateRole(ctx, owner, target.ID.String(), UpdateRoleInput{Role: model.RoleAdmin})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeleteUserGuards(t *testing.T) {
	ctx := context.Background()
	env := newAdminEnv(t)

	owner := env.seedUser(t, ctx, "owner@example.com", model.RoleOwner)
	other := env.seedUser(t, ctx, "other-owner@example.com", model.RoleOwner)
	target := env.seedUser(t, ctx, "target@example.com", model.RoleUser)

	assert.ErrorIs(t, env.svc.DeleteUser(ctx, owner, owner.ID.String()), apperror.ErrValidation)
	assert.ErrorIs(t, env.svc.DeleteUser(ctx, owner, other.ID.String()), apperror.ErrForbidden)

	assert.NoError(t, env.svc.DeleteUser(ctx, owner, target.ID.String()))
	_, err := env.users.FindByID(ctx, target.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
