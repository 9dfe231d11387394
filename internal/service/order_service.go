package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/mailer"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateOrderInput struct {
	CourseID    string          `json:"course_id" binding:"required"`
	PaymentInfo json.RawMessage `json:"payment_info" binding:"required"`
}

type OrderService interface {
	Create(ctx context.Context, buyer *model.User, input CreateOrderInput) (*model.Order, error)
	GetAll(ctx context.Context, page, limit int) ([]*model.Order, int64, error)
}

type orderService struct {
	orders        repository.OrderRepository
	courses       repository.CourseRepository
	users         repository.UserRepository
	sessions      *session.Manager
	notifications NotificationService
	mail          mailer.Mailer
}

func NewOrderService(orders repository.OrderRepository, courses repository.CourseRepository, users repository.UserRepository, sessions *session.Manager, notifications NotificationService, mail mailer.Mailer) OrderService {
	return &orderService{
		orders:        orders,
		courses:       courses,
		users:         users,
		sessions:      sessions,
		notifications: notifications,
		mail:          mail,
	}
}

func (s *orderService) Create(ctx context.Context, buyer *model.User, input CreateOrderInput) (*model.Order, error) {
	courseID, err := parseUUID(input.CourseID)
	if err != nil {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Upstream(err)
	}

	if course.Creator.UserID == buyer.ID {
		return nil, apperror.Validation("you cannot purchase your own course")
	}
	for _, created := range buyer.CoursesCreated {
		if created.CourseID == courseID {
			return nil, apperror.Validation("you cannot purchase your own course")
		}
	}

	// Membership is checked on both sides of the mirror.
	if hasCourse(buyer, courseID) {
		return nil, apperror.Validation("you have already purchased this course")
	}
	purchased, err := s.users.HasCourse(ctx, buyer.ID, courseID)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	if purchased {
		return nil, apperror.Validation("you have already purchased this course")
	}
	for _, student := range course.Students {
		if student.User.UserID == buyer.ID {
			return nil, apperror.Validation("you have already purchased this course")
		}
	}

	order := &model.Order{
		UserID:      buyer.ID,
		CourseID:    courseID,
		PaymentInfo: datatypes.JSON(input.PaymentInfo),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.courses.IncrementPurchased(ctx, courseID); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.users.AddCourse(ctx, &model.UserCourse{UserID: buyer.ID, CourseID: courseID}); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.courses.AddStudent(ctx, &model.CourseStudent{CourseID: courseID, User: userRef(buyer)}); err != nil {
		return nil, apperror.Upstream(err)
	}

	// Refresh the snapshot so the new membership is visible immediately.
	updated, err := s.users.FindByID(ctx, buyer.ID)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.sessions.Store().Save(ctx, updated); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.notifications.Create(ctx, course.Creator.UserID, "New order received", fmt.Sprintf("%s %s purchased %s", buyer.FirstName, buyer.LastName, course.Title)); err != nil {
		return nil, apperror.Upstream(err)
	}

	// The order is committed; email failures surface without undoing it.
	purchaseDate := order.CreatedAt.Format(time.RFC1123)
	var fanout []error
	if err := s.mail.Send(ctx, mailer.Message{
		To:       buyer.Email,
		Subject:  fmt.Sprintf("Your order for %s", course.Title),
		Template: mailer.TplCoursePurchase,
		Data: map[string]interface{}{
			"FirstName":    buyer.FirstName,
			"LastName":     buyer.LastName,
			"CourseTitle":  course.Title,
			"PurchaseDate": purchaseDate,
			"Amount":       course.Price,
		},
	}); err != nil {
		fanout = append(fanout, err)
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:       course.Creator.Email,
		Subject:  fmt.Sprintf("New sale on %s", course.Title),
		Template: mailer.TplCoursePurchaseForOwner,
		Data: map[string]interface{}{
			"FirstName":     course.Creator.FirstName,
			"LastName":      course.Creator.LastName,
			"CourseTitle":   course.Title,
			"UserFirstName": buyer.FirstName,
			"UserLastName":  buyer.LastName,
			"UserEmail":     buyer.Email,
			"PurchaseDate":  purchaseDate,
			"Amount":        course.Price,
		},
	}); err != nil {
		fanout = append(fanout, err)
	}
	if len(fanout) > 0 {
		return order, apperror.Upstream(errors.Join(fanout...))
	}

	return order, nil
}

func (s *orderService) GetAll(ctx context.Context, page, limit int) ([]*model.Order, int64, error) {
	page, limit = normalizePage(page, limit)
	orders, total, err := s.orders.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Upstream(err)
	}
	return orders, total, nil
}
