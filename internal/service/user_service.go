package service

import (
	"context"
	"errors"
	"time"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/mailer"
	"acadex.dev/acadex/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Image widths for profile assets.
const (
	avatarWidth     = 150
	backgroundWidth = 300
)

type UpdateInfoInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Department  string `json:"department"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phone_number"`
}

type UpdatePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UpdateEmailInput struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

type ConfirmEmailInput struct {
	ActivationToken string `json:"activation_token" binding:"required"`
	ActivationCode  string `json:"activation_code" binding:"required"`
}

type UpdateImageInput struct {
	Image string `json:"image" binding:"required"`
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateInfo(ctx context.Context, user *model.User, input UpdateInfoInput) (*model.User, error)
	UpdatePassword(ctx context.Context, user *model.User, input UpdatePasswordInput) error
	RequestEmailChange(ctx context.Context, user *model.User, input UpdateEmailInput) (token string, err error)
	ConfirmEmailChange(ctx context.Context, user *model.User, input ConfirmEmailInput) (*model.User, error)
	UpdateAvatar(ctx context.Context, user *model.User, input UpdateImageInput) (*model.User, error)
	UpdateBackground(ctx context.Context, user *model.User, input UpdateImageInput) (*model.User, error)
	DeleteAccount(ctx context.Context, user *model.User) error
}

type userService struct {
	users       repository.UserRepository
	sessions    *session.Manager
	mail        mailer.Mailer
	images      storage.ImageStorage
	emailSecret []byte
}

func NewUserService(users repository.UserRepository, sessions *session.Manager, mail mailer.Mailer, images storage.ImageStorage, emailSecret string) UserService {
	return &userService{
		users:       users,
		sessions:    sessions,
		mail:        mail,
		images:      images,
		emailSecret: []byte(emailSecret),
	}
}

// emailChangeClaims carries a pending email change for an account.
type emailChangeClaims struct {
	UserID   string `json:"user_id"`
	NewEmail string `json:"new_email"`
	Code     string `json:"activation_code"`
	jwt.RegisteredClaims
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	userID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Upstream(err)
	}
	return user, nil
}

func (s *userService) UpdateInfo(ctx context.Context, user *model.User, input UpdateInfoInput) (*model.User, error) {
	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Department != "" {
		user.Department = input.Department
	}
	if input.Country != "" {
		user.Country = input.Country
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.sessions.Store().Save(ctx, user); err != nil {
		return nil, apperror.Upstream(err)
	}

	return user, nil
}

func (s *userService) UpdatePassword(ctx context.Context, user *model.User, input UpdatePasswordInput) error {
	// The session snapshot never carries the hash, read it back first.
	stored, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Upstream(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(input.OldPassword)) != nil {
		return apperror.Validation("invalid old password")
	}
	if input.OldPassword == input.NewPassword {
		return apperror.Validation("new password must differ from the current one")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Upstream(err)
	}
	stored.Password = string(hashed)
	if err := s.users.Update(ctx, stored); err != nil {
		return apperror.Upstream(err)
	}
	if err := s.sessions.Store().Save(ctx, stored); err != nil {
		return apperror.Upstream(err)
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       stored.Email,
		Subject:  "Your password was changed",
		Template: mailer.TplPasswordChanged,
		Data: map[string]interface{}{
			"FirstName": stored.FirstName,
			"LastName":  stored.LastName,
		},
	}); err != nil {
		return apperror.Upstream(err)
	}

	return nil
}

func (s *userService) RequestEmailChange(ctx context.Context, user *model.User, input UpdateEmailInput) (string, error) {
	if input.NewEmail == user.Email {
		return "", apperror.Validation("new email must differ from the current one")
	}
	if _, err := s.users.FindByEmail(ctx, input.NewEmail); err == nil {
		return "", apperror.Validation("email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperror.Upstream(err)
	}

	code := newFiveDigitCode()
	claims := emailChangeClaims{
		UserID:   user.ID.String(),
		NewEmail: input.NewEmail,
		Code:     code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(codeTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.emailSecret)
	if err != nil {
		return "", apperror.Upstream(err)
	}

	// The code goes to the address being claimed, not the current one.
	if err := s.mail.Send(ctx, mailer.Message{
		To:       input.NewEmail,
		Subject:  "Confirm your new email",
		Template: mailer.TplActivationEmail,
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

func (s *userService) ConfirmEmailChange(ctx context.Context, user *model.User, input ConfirmEmailInput) (*model.User, error) {
	var claims emailChangeClaims
	if err := parseClaims(input.ActivationToken, s.emailSecret, &claims); err != nil {
		return nil, apperror.Validation("activation token is not valid")
	}
	if claims.Code != input.ActivationCode {
		return nil, apperror.Validation("invalid activation code")
	}
	if claims.UserID != user.ID.String() {
		return nil, apperror.Validation("activation token is not valid")
	}

	stored, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Upstream(err)
	}

	oldEmail := stored.Email
	stored.Email = claims.NewEmail
	if err := s.users.Update(ctx, stored); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.sessions.Store().Save(ctx, stored); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       oldEmail,
		Subject:  "Your email address was changed",
		Template: mailer.TplEmailChanged,
		Data: map[string]interface{}{
			"FirstName": stored.FirstName,
			"LastName":  stored.LastName,
			"NewEmail":  stored.Email,
		},
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	return stored, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, user *model.User, input UpdateImageInput) (*model.User, error) {
	return s.updateImage(ctx, user, input.Image, storage.FolderAvatars, avatarWidth, func(u *model.User) *model.Image { return &u.Avatar })
}

func (s *userService) UpdateBackground(ctx context.Context, user *model.User, input UpdateImageInput) (*model.User, error) {
	return s.updateImage(ctx, user, input.Image, storage.FolderBackgrounds, backgroundWidth, func(u *model.User) *model.Image { return &u.Background })
}

// updateImage destroys the previous asset before uploading the new one
// so orphaned files never pile up in the CDN.
func (s *userService) updateImage(ctx context.Context, user *model.User, file, folder string, width int, pick func(*model.User) *model.Image) (*model.User, error) {
	stored, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Upstream(err)
	}

	img := pick(stored)
	if img.PublicID != "" {
		if err := s.images.Destroy(ctx, img.PublicID); err != nil {
			return nil, apperror.Upstream(err)
		}
	}

	uploaded, err := s.images.Upload(ctx, file, folder, width)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	img.PublicID = uploaded.PublicID
	img.URL = uploaded.URL

	if err := s.users.Update(ctx, stored); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.sessions.Store().Save(ctx, stored); err != nil {
		return nil, apperror.Upstream(err)
	}

	return stored, nil
}

func (s *userService) DeleteAccount(ctx context.Context, user *model.User) error {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return apperror.Upstream(err)
	}
	if err := s.sessions.Store().Delete(ctx, user.ID.String()); err != nil {
		return apperror.Upstream(err)
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Your account was deleted",
		Template: mailer.TplUserDeleteAccount,
		Data: map[string]interface{}{
			"FirstName": user.FirstName,
			"LastName":  user.LastName,
		},
	}); err != nil {
		return apperror.Upstream(err)
	}

	return nil
}
