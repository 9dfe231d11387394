package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
)

type userEnv struct {
	svc      UserService
	users    repository.UserRepository
	sessions *session.Manager
	mail     *mailRecorder
}

func newUserEnv(t *testing.T) *userEnv {
	t.Helper()

	users := repository.NewUserRepository(newTestDB(t))
	sessions := session.NewManager(session.NewMemoryStore(), "access-secret", "refresh-secret", 5, 3)
	mail := &mailRecorder{}
	return &userEnv{
		svc:      NewUserService(users, sessions, mail, &stubImages{}, "email-secret"),
		users:    users,
		sessions: sessions,
		mail:     mail,
	}
}

func (e *userEnv) seedUser(t *testing.T, ctx context.Context, email, password string) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)

	user := &model.User{
		Email:      email,
		Password:   string(hashed),
		FirstName:  "Maya",
		LastName:   "Saab",
		Role:       model.RoleUser,
		IsVerified: true,
	}
	assert.NoError(t, e.users.Create(ctx, user))
	assert.NoError(t, e.sessions.Store().Save(ctx, user))
	return user
}

func TestUpdateInfoMergesFields(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)

	user := env.seedUser(t, ctx, "maya@example.com", "secret123")

	updated, err := env.svc.UpdateInfo(ctx, user, UpdateInfoInput{Country: "Lebanon"})
	assert.NoError(t, err)
	assert.Equal(t, "Lebanon", updated.Country)
	// Untouched fields survive the merge.
	assert.Equal(t, "Maya", updated.FirstName)

	snapshot, err := env.sessions.Store().Lookup(ctx, user.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, "Lebanon", snapshot.Country)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)

	user := env.seedUser(t, ctx, "maya@example.com", "secret123")

	err := env.svc.UpdatePassword(ctx, user, UpdatePasswordInput{OldPassword: "wrong", NewPassword: "next456"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = env.svc.UpdatePassword(ctx, user, UpdatePasswordInput{OldPassword: "secret123", NewPassword: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = env.svc.UpdatePassword(ctx, user, UpdatePasswordInput{OldPassword: "secret123", NewPassword: "next456"})
	assert.NoError(t, err)

	stored, err := env.users.FindByID(ctx, user.ID)
	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("next456")))
}

func TestEmailChangeFlow(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)

	user := env.seedUser(t, ctx, "maya@example.com", "secret123")

	token, err := env.svc.RequestEmailChange(ctx, user, UpdateEmailInput{NewEmail: "maya@new.example.com"})
	assert.NoError(t, err)

	// The code goes to the address being claimed.
	confirmMail := env.mail.last()
	assert.Equal(t, "maya@new.example.com", confirmMail.To)
	code, ok := confirmMail.Data["ActivationCode"].(string)
	assert.True(t, ok)

	updated, err := env.svc.ConfirmEmailChange(ctx, user, ConfirmEmailInput{
		ActivationToken: token,
		ActivationCode:  code,
	})
	assert.NoError(t, err)
	assert.Equal(t, "maya@new.example.com", updated.Email)

	stored, err := env.users.FindByID(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "maya@new.example.com", stored.Email)
}

func TestEmailChangeRejectsTakenAddress(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)

	user := env.seedUser(t, ctx, "maya@example.com", "secret123")
	env.seedUser(t, ctx, "taken@example.com", "secret123")

	_, err := env.svc.RequestEmailChange(ctx, user, UpdateEmailInput{NewEmail: "taken@example.com"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.RequestEmailChange(ctx, user, UpdateEmailInput{NewEmail: "maya@example.com"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)

	user := env.seedUser(t, ctx, "maya@example.com", "secret123")

	assert.NoError(t, env.svc.DeleteAccount(ctx, user))

	_, err := env.users.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	snapshot, err := env.sessions.Store().Lookup(ctx, user.ID.String())
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}
