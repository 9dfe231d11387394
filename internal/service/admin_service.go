package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/mailer"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// The third block is terminal: the account is removed instead of
// being suspended again.
const blockLimit = 3

type BlockInput struct {
	Reason string `json:"reason" binding:"required"`
}

type UpdateRoleInput struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

type AdminService interface {
	ListUsers(ctx context.Context, page, limit int) ([]*model.User, int64, error)
	ListUsersByRole(ctx context.Context, role string, page, limit int) ([]*model.User, int64, error)
	Block(ctx context.Context, actor *model.User, targetID string, input BlockInput) (deleted bool, err error)
	Unblock(ctx context.Context, actor *model.User, targetID string) error
	DeleteUser(ctx context.Context, actor *model.User, targetID string) error
	UpdateRole(ctx context.Context, actor *model.User, targetID string, input UpdateRoleInput) (*model.User, error)
	ChangePassword(ctx context.Context, actor *model.User, targetID string) error
}

type adminService struct {
	users          repository.UserRepository
	sessions       *session.Manager
	mail           mailer.Mailer
	notifications  NotificationService
	passwordSecret []byte
	origin         string
}

func NewAdminService(users repository.UserRepository, sessions *session.Manager, mail mailer.Mailer, notifications NotificationService, passwordSecret, origin string) AdminService {
	return &adminService{
		users:          users,
		sessions:       sessions,
		mail:           mail,
		notifications:  notifications,
		passwordSecret: []byte(passwordSecret),
		origin:         origin,
	}
}

func (s *adminService) ListUsers(ctx context.Context, page, limit int) ([]*model.User, int64, error) {
	page, limit = normalizePage(page, limit)
	users, total, err := s.users.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Upstream(err)
	}
	return users, total, nil
}

func (s *adminService) ListUsersByRole(ctx context.Context, role string, page, limit int) ([]*model.User, int64, error) {
	switch role {
	case model.RoleUser, model.RoleAdmin, model.RoleOwner:
	default:
		return nil, 0, apperror.Validation("unknown role")
	}

	page, limit = normalizePage(page, limit)
	users, total, err := s.users.FindAllByRole(ctx, role, page, limit)
	if err != nil {
		return nil, 0, apperror.Upstream(err)
	}
	return users, total, nil
}

func (s *adminService) Block(ctx context.Context, actor *model.User, targetID string, input BlockInput) (bool, error) {
	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target.ID == actor.ID {
		return false, apperror.Validation("you cannot block yourself")
	}
	if roleRank(target.Role) >= roleRank(actor.Role) || target.Role == model.RoleOwner {
		return false, apperror.Forbidden("you cannot block this user")
	}

	target.BlockCount++
	if target.BlockCount >= blockLimit {
		if err := s.users.Delete(ctx, target.ID); err != nil {
			return false, apperror.Upstream(err)
		}
		if err := s.sessions.Store().Delete(ctx, target.ID.String()); err != nil {
			return false, apperror.Upstream(err)
		}
		if err := s.audit(ctx, actor, target, model.ActionDelete, ""); err != nil {
			return false, err
		}

		if err := s.mail.Send(ctx, mailer.Message{
			To:       target.Email,
			Subject:  "Your account was removed",
			Template: mailer.TplOwnerDeleteAccount,
			Data: map[string]interface{}{
				"FirstName": target.FirstName,
				"LastName":  target.LastName,
				"Reason":    input.Reason,
			},
		}); err != nil {
			return true, apperror.Upstream(err)
		}

		return true, nil
	}

	target.IsBlocked = true
	if err := s.users.Update(ctx, target); err != nil {
		return false, apperror.Upstream(err)
	}
	// Blocking ends the session immediately.
	if err := s.sessions.Store().Delete(ctx, target.ID.String()); err != nil {
		return false, apperror.Upstream(err)
	}
	if err := s.audit(ctx, actor, target, model.ActionBlock, ""); err != nil {
		return false, err
	}

	if err := s.notifications.Create(ctx, target.ID, "Account blocked", input.Reason); err != nil {
		return false, apperror.Upstream(err)
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:       target.Email,
		Subject:  "Your account was blocked",
		Template: mailer.TplBlockAccount,
		Data: map[string]interface{}{
			"FirstName": target.FirstName,
			"LastName":  target.LastName,
			"Reason":    input.Reason,
		},
	}); err != nil {
		return false, apperror.Upstream(err)
	}

	return false, nil
}

func (s *adminService) Unblock(ctx context.Context, actor *model.User, targetID string) error {
	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsBlocked {
		return apperror.Validation("user is not blocked")
	}

	target.IsBlocked = false
	if err := s.users.Update(ctx, target); err != nil {
		return apperror.Upstream(err)
	}
	if err := s.audit(ctx, actor, target, model.ActionUnblock, ""); err != nil {
		return err
	}

	if err := s.notifications.Create(ctx, target.ID, "Account unblocked", "Your account has been unblocked, you can sign in again."); err != nil {
		return apperror.Upstream(err)
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:       target.Email,
		Subject:  "Your account was unblocked",
		Template: mailer.TplUnblockAccount,
		Data: map[string]interface{}{
			"FirstName": target.FirstName,
			"LastName":  target.LastName,
		},
	}); err != nil {
		return apperror.Upstream(err)
	}

	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor *model.User, targetID string) error {
	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.ID == actor.ID {
		return apperror.Validation("you cannot delete yourself")
	}
	if target.Role == model.RoleOwner {
		return apperror.Forbidden("you cannot delete an owner account")
	}

	if err := s.users.Delete(ctx, target.ID); err != nil {
		return apperror.Upstream(err)
	}
	if err := s.sessions.Store().Delete(ctx, target.ID.String()); err != nil {
		return apperror.Upstream(err)
	}
	if err := s.audit(ctx, actor, target, model.ActionDelete, ""); err != nil {
		return err
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       target.Email,
		Subject:  "Your account was removed",
		Template: mailer.TplOwnerDeleteAccount,
		Data: map[string]interface{}{
			"FirstName": target.FirstName,
			"LastName":  target.LastName,
			"Reason":    "Your account was removed by an administrator.",
		},
	}); err != nil {
		return apperror.Upstream(err)
	}

	return nil
}

func (s *adminService) UpdateRole(ctx context.Context, actor *model.User, targetID string, input UpdateRoleInput) (*model.User, error) {
	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == input.Role {
		return nil, apperror.Validation("user already has this role")
	}
	if target.Role == model.RoleOwner {
		return nil, apperror.Forbidden("you cannot change an owner's role")
	}

	target.Role = input.Role
	if err := s.users.Update(ctx, target); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.sessions.Store().Save(ctx, target); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.audit(ctx, actor, target, model.ActionRole, input.Role); err != nil {
		return nil, err
	}

	if err := s.notifications.Create(ctx, target.ID, "Role updated", fmt.Sprintf("Your role has been changed to %s.", input.Role)); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:       target.Email,
		Subject:  "Your role was updated",
		Template: mailer.TplUpdatedRole,
		Data: map[string]interface{}{
			"FirstName": target.FirstName,
			"LastName":  target.LastName,
			"Role":      input.Role,
		},
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	return target, nil
}

// ChangePassword does not set a password itself, it mails the user a
// code-carrying reset link.
func (s *adminService) ChangePassword(ctx context.Context, actor *model.User, targetID string) error {
	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return err
	}

	code := newFiveDigitCode()
	claims := resetClaims{
		Email: target.Email,
		Code:  code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(codeTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.passwordSecret)
	if err != nil {
		return apperror.Upstream(err)
	}

	if err := s.audit(ctx, actor, target, model.ActionPassword, ""); err != nil {
		return err
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       target.Email,
		Subject:  "Password reset instructions",
		Template: mailer.TplPasswordReset,
		Data: map[string]interface{}{
			"FirstName":      target.FirstName,
			"LastName":       target.LastName,
			"ActivationCode": code,
			"URL":            fmt.Sprintf("%s/reset-password?token=%s", s.origin, token),
		},
	}); err != nil {
		return apperror.Upstream(err)
	}

	return nil
}

func (s *adminService) findTarget(ctx context.Context, targetID string) (*model.User, error) {
	id, err := parseUUID(targetID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Upstream(err)
	}
	return target, nil
}

func (s *adminService) audit(ctx context.Context, actor, target *model.User, kind, role string) error {
	action := &model.UserAction{
		ActorID:  actor.ID,
		TargetID: target.ID,
		Kind:     kind,
		Role:     role,
	}
	if err := s.users.LogAction(ctx, action); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}
