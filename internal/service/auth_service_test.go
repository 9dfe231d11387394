package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
)

type authEnv struct {
	svc      AuthService
	users    repository.UserRepository
	sessions *session.Manager
	mail     *mailRecorder
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	users := repository.NewUserRepository(newTestDB(t))
	sessions := session.NewManager(session.NewMemoryStore(), "access-secret", "refresh-secret", 5, 3)
	mail := &mailRecorder{}
	return &authEnv{
		svc:      NewAuthService(users, sessions, mail, "activation-secret", "password-secret"),
		users:    users,
		sessions: sessions,
		mail:     mail,
	}
}

func (e *authEnv) register(t *testing.T, ctx context.Context, email string) (token, code string) {
	t.Helper()

	token, err := e.svc.Register(ctx, RegisterInput{
		Email:     email,
		Password:  "secret123",
		FirstName: "Lina",
		LastName:  "Haddad",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	code, ok := e.mail.last().Data["ActivationCode"].(string)
	assert.True(t, ok)
	return token, code
}

func TestRegisterAndActivate(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	token, code := env.register(t, ctx, "lina@example.com")

	user, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: token, ActivationCode: code})
	assert.NoError(t, err)
	assert.Equal(t, "lina@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.IsVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))

	stored, err := env.users.FindByEmail(ctx, "lina@example.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestActivateRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	token, _ := env.register(t, ctx, "lina@example.com")

	// Codes are five digits starting at 10000, so this never matches.
	_, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: token, ActivationCode: "00000"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.users.FindByEmail(ctx, "lina@example.com")
	assert.Error(t, err)
}

func TestActivateRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	_, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: "not-a-jwt", ActivationCode: "12345"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRegisterRejectsExistingEmail(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	token, code := env.register(t, ctx, "lina@example.com")
	_, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: token, ActivationCode: code})
	assert.NoError(t, err)

	_, err = env.svc.Register(ctx, RegisterInput{
		Email:     "lina@example.com",
		Password:  "another123",
		FirstName: "Lina",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	token, code := env.register(t, ctx, "lina@example.com")
	_, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: token, ActivationCode: code})
	assert.NoError(t, err)

	user, pair, err := env.svc.Login(ctx, LoginInput{Email: "lina@example.com", Password: "secret123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Login writes the session snapshot the auth gate reads from.
	snapshot, err := env.sessions.Store().Lookup(ctx, user.ID.String())
	assert.NoError(t, err)
	assert.NotNil(t, snapshot)
	assert.Equal(t, user.Email, snapshot.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	token, code := env.register(t, ctx, "lina@example.com")
	_, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: token, ActivationCode: code})
	assert.NoError(t, err)

	_, _, err = env.svc.Login(ctx, LoginInput{Email: "lina@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, _, err = env.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLoginRejectsBlockedAccount(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	err = env.users.Create(ctx, &model.User{
		Email:      "blocked@example.com",
		Password:   string(hashed),
		FirstName:  "Omar",
		Role:       model.RoleUser,
		IsVerified: true,
		IsBlocked:  true,
	})
	assert.NoError(t, err)

	_, _, err = env.svc.Login(ctx, LoginInput{Email: "blocked@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestLogoutDropsSession(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	token, code := env.register(t, ctx, "lina@example.com")
	_, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: token, ActivationCode: code})
	assert.NoError(t, err)

	user, _, err := env.svc.Login(ctx, LoginInput{Email: "lina@example.com", Password: "secret123"})
	assert.NoError(t, err)

	assert.NoError(t, env.svc.Logout(ctx, user.ID.String()))

	snapshot, err := env.sessions.Store().Lookup(ctx, user.ID.String())
	assert.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestResetPasswordFlow(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)

	token, code := env.register(t, ctx, "lina@example.com")
	_, err := env.svc.Activate(ctx, ActivationInput{ActivationToken: token, ActivationCode: code})
	assert.NoError(t, err)

	resetToken, err := env.svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "lina@example.com"})
	assert.NoError(t, err)
	resetCode, ok := env.mail.last().Data["ActivationCode"].(string)
	assert.True(t, ok)

	// Reusing the current password is rejected.
	err = env.svc.ResetPassword(ctx, ResetPasswordInput{
		ResetToken:  resetToken,
		ResetCode:   resetCode,
		NewPassword: "secret123",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = env.svc.ResetPassword(ctx, ResetPasswordInput{
		ResetToken:  resetToken,
		ResetCode:   resetCode,
		NewPassword: "brandnew456",
	})
	assert.NoError(t, err)

	_, _, err = env.svc.Login(ctx, LoginInput{Email: "lina@example.com", Password: "brandnew456"})
	assert.NoError(t, err)
}
