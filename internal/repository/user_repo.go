package repository

import (
	"context"
	"time"

	"acadex.dev/acadex/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, page, limit int) ([]*model.User, int64, error)
	FindAllByRole(ctx context.Context, role string, page, limit int) ([]*model.User, int64, error)
	AddCourse(ctx context.Context, membership *model.UserCourse) error
	AddCreatedCourse(ctx context.Context, membership *model.UserCreatedCourse) error
	HasCourse(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	LogAction(ctx context.Context, action *model.UserAction) error
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Courses").
		Preload("CoursesCreated").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Courses").
		Preload("CoursesCreated").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepository) FindAll(ctx context.Context, page, limit int) ([]*model.User, int64, error) {
	return r.findPaged(ctx, r.db.WithContext(ctx).Model(&model.User{}), page, limit)
}

func (r *userRepository) FindAllByRole(ctx context.Context, role string, page, limit int) ([]*model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role)
	return r.findPaged(ctx, q, page, limit)
}

func (r *userRepository) findPaged(ctx context.Context, q *gorm.DB, page, limit int) ([]*model.User, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*model.User
	if err := q.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) AddCourse(ctx context.Context, membership *model.UserCourse) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *userRepository) AddCreatedCourse(ctx context.Context, membership *model.UserCreatedCourse) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *userRepository) HasCourse(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) LogAction(ctx context.Context, action *model.UserAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *userRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
