package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/mailer"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Pending registrations and password resets live entirely inside a
// short-lived JWT; nothing is persisted until the code is confirmed.
const codeTokenTTL = 5 * time.Minute

type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	Department  string `json:"department"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phone_number"`
}

type ActivationInput struct {
	ActivationToken string `json:"activation_token" binding:"required"`
	ActivationCode  string `json:"activation_code" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SocialAuthInput struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	ResetToken  string `json:"reset_token" binding:"required"`
	ResetCode   string `json:"reset_code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (token string, err error)
	Activate(ctx context.Context, input ActivationInput) (*model.User, error)
	Login(ctx context.Context, input LoginInput) (*model.User, *session.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*model.User, *session.TokenPair, error)
	SocialAuth(ctx context.Context, input SocialAuthInput) (*model.User, *session.TokenPair, error)
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) (token string, err error)
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

type authService struct {
	users            repository.UserRepository
	sessions         *session.Manager
	mail             mailer.Mailer
	activationSecret []byte
	passwordSecret   []byte
}

func NewAuthService(users repository.UserRepository, sessions *session.Manager, mail mailer.Mailer, activationSecret, passwordSecret string) AuthService {
	return &authService{
		users:            users,
		sessions:         sessions,
		mail:             mail,
		activationSecret: []byte(activationSecret),
		passwordSecret:   []byte(passwordSecret),
	}
}

// activationClaims carries the pending registration and its code.
type activationClaims struct {
	User RegisterInput `json:"user"`
	Code string        `json:"activation_code"`
	jwt.RegisteredClaims
}

// resetClaims carries a password reset for an existing account.
type resetClaims struct {
	Email string `json:"email"`
	Code  string `json:"reset_code"`
	jwt.RegisteredClaims
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (string, error) {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return "", apperror.Validation("email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperror.Upstream(err)
	}

	code := newFiveDigitCode()
	claims := activationClaims{
		User: input,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(codeTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.activationSecret)
	if err != nil {
		return "", apperror.Upstream(err)
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       input.Email,
		Subject:  "Activate your account",
		Template: mailer.TplActivationAccount,
		Data: map[string]interface{}{
			"FirstName":      input.FirstName,
			"LastName":       input.LastName,
			"ActivationCode": code,
		},
	}); err != nil {
		return "", apperror.Upstream(err)
	}

	return token, nil
}

func (s *authService) Activate(ctx context.Context, input ActivationInput) (*model.User, error) {
	var claims activationClaims
	if err := parseClaims(input.ActivationToken, s.activationSecret, &claims); err != nil {
		return nil, apperror.Validation("activation token is not valid")
	}
	if claims.Code != input.ActivationCode {
		return nil, apperror.Validation("invalid activation code")
	}

	if _, err := s.users.FindByEmail(ctx, claims.User.Email); err == nil {
		return nil, apperror.Validation("email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Upstream(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(claims.User.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Upstream(err)
	}

	user := &model.User{
		Email:       claims.User.Email,
		Password:    string(hashed),
		FirstName:   claims.User.FirstName,
		LastName:    claims.User.LastName,
		Department:  claims.User.Department,
		Country:     claims.User.Country,
		PhoneNumber: claims.User.PhoneNumber,
		Role:        model.RoleUser,
		IsVerified:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Welcome aboard",
		Template: mailer.TplActivationSuccess,
		Data: map[string]interface{}{
			"FirstName": user.FirstName,
			"LastName":  user.LastName,
		},
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*model.User, *session.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.Validation("invalid email or password")
		}
		return nil, nil, apperror.Upstream(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, nil, apperror.Validation("invalid email or password")
	}
	if user.IsBlocked {
		return nil, nil, apperror.Forbidden("your account has been blocked, please contact support")
	}

	pair, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Store().Delete(ctx, userID); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.User, *session.TokenPair, error) {
	pair, user, err := s.sessions.Renew(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) SocialAuth(ctx context.Context, input SocialAuthInput) (*model.User, *session.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			Email:      input.Email,
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Role:       model.RoleUser,
			IsVerified: true,
			Avatar:     model.Image{URL: input.AvatarURL},
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, nil, apperror.Upstream(err)
		}
	} else if err != nil {
		return nil, nil, apperror.Upstream(err)
	}

	if user.IsBlocked {
		return nil, nil, apperror.Forbidden("your account has been blocked, please contact support")
	}

	pair, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *authService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) (string, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound("no account found with this email")
		}
		return "", apperror.Upstream(err)
	}

	code := newFiveDigitCode()
	claims := resetClaims{
		Email: user.Email,
		Code:  code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(codeTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.passwordSecret)
	if err != nil {
		return "", apperror.Upstream(err)
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Reset your password",
		Template: mailer.TplForgotPassword,
		Data: map[string]interface{}{
			"FirstName":      user.FirstName,
			"LastName":       user.LastName,
			"ActivationCode": code,
		},
	}); err != nil {
		return "", apperror.Upstream(err)
	}

	return token, nil
}

func (s *authService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	var claims resetClaims
	if err := parseClaims(input.ResetToken, s.passwordSecret, &claims); err != nil {
		return apperror.Validation("reset token is not valid")
	}
	if claims.Code != input.ResetCode {
		return apperror.Validation("invalid reset code")
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Upstream(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.NewPassword)) == nil {
		return apperror.Validation("new password must differ from the current one")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Upstream(err)
	}
	user.Password = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return apperror.Upstream(err)
	}

	if err := s.sessions.Store().Save(ctx, user); err != nil {
		return apperror.Upstream(err)
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Your password was changed",
		Template: mailer.TplPasswordChanged,
		Data: map[string]interface{}{
			"FirstName": user.FirstName,
			"LastName":  user.LastName,
		},
	}); err != nil {
		return apperror.Upstream(err)
	}

	return nil
}

func newFiveDigitCode() string {
	return fmt.Sprintf("%05d", 10000+rand.Intn(90000))
}

func parseClaims(tokenStr string, secret []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}
