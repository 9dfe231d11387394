package repository

import (
	"context"
	"time"

	"acadex.dev/acadex/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	FindAll(ctx context.Context) ([]*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error

	ClearBenefits(ctx context.Context, courseID uuid.UUID) error
	ClearPrerequisites(ctx context.Context, courseID uuid.UUID) error
	ClearContents(ctx context.Context, courseID uuid.UUID) error

	FindContent(ctx context.Context, courseID, contentID uuid.UUID) (*model.CourseContent, error)
	AddQuestion(ctx context.Context, question *model.Question) error
	FindQuestion(ctx context.Context, contentID, questionID uuid.UUID) (*model.Question, error)
	AddAnswer(ctx context.Context, answer *model.Answer) error
	AddReview(ctx context.Context, review *model.Review) error
	FindReview(ctx context.Context, courseID, reviewID uuid.UUID) (*model.Review, error)
	AddReviewReply(ctx context.Context, reply *model.ReviewReply) error
	UpdateRatings(ctx context.Context, courseID uuid.UUID, ratings float64) error

	AddStudent(ctx context.Context, student *model.CourseStudent) error
	IncrementPurchased(ctx context.Context, courseID uuid.UUID) error

	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// coursePreloads loads the full course document: lessons with their
// links and Q&A threads, reviews with replies, roster and audit trail.
func coursePreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Benefits").
		Preload("Prerequisites").
		Preload("CourseData").
		Preload("CourseData.Links").
		Preload("CourseData.Questions").
		Preload("CourseData.Questions.Replies").
		Preload("Reviews").
		Preload("Reviews.Replies").
		Preload("Students").
		Preload("Updates")
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := coursePreloads(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&course).Error; err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseRepository) FindAll(ctx context.Context) ([]*model.Course, error) {
	var courses []*model.Course
	if err := coursePreloads(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Course{}, "id = ?", id).Error
}

func (r *courseRepository) ClearBenefits(ctx context.Context, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.CourseBenefit{}).Error
}

func (r *courseRepository) ClearPrerequisites(ctx context.Context, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.CoursePrerequisite{}).Error
}

// ClearContents removes a course's lessons together with their links
// and Q&A threads.
func (r *courseRepository) ClearContents(ctx context.Context, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contentIDs []uuid.UUID
		if err := tx.Model(&model.CourseContent{}).
			Where("course_id = ?", courseID).
			Pluck("id", &contentIDs).Error; err != nil {
			return err
		}
		if len(contentIDs) > 0 {
			var questionIDs []uuid.UUID
			if err := tx.Model(&model.Question{}).
				Where("content_id IN ?", contentIDs).
				Pluck("id", &questionIDs).Error; err != nil {
				return err
			}
			if len(questionIDs) > 0 {
				if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Answer{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("content_id IN ?", contentIDs).Delete(&model.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_content_id IN ?", contentIDs).Delete(&model.ContentLink{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("course_id = ?", courseID).Delete(&model.CourseContent{}).Error
	})
}

func (r *courseRepository) FindContent(ctx context.Context, courseID, contentID uuid.UUID) (*model.CourseContent, error) {
	var content model.CourseContent
	if err := r.db.WithContext(ctx).
		Preload("Links").
		Preload("Questions").
		Preload("Questions.Replies").
		Where("id = ? AND course_id = ?", contentID, courseID).
		First(&content).Error; err != nil {
		return nil, err
	}

	return &content, nil
}

func (r *courseRepository) AddQuestion(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *courseRepository) FindQuestion(ctx context.Context, contentID, questionID uuid.UUID) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).
		Preload("Replies").
		Where("id = ? AND content_id = ?", questionID, contentID).
		First(&question).Error; err != nil {
		return nil, err
	}

	return &question, nil
}

func (r *courseRepository) AddAnswer(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

func (r *courseRepository) AddReview(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *courseRepository) FindReview(ctx context.Context, courseID, reviewID uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).
		Preload("Replies").
		Where("id = ? AND course_id = ?", reviewID, courseID).
		First(&review).Error; err != nil {
		return nil, err
	}

	return &review, nil
}

func (r *courseRepository) AddReviewReply(ctx context.Context, reply *model.ReviewReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *courseRepository) UpdateRatings(ctx context.Context, courseID uuid.UUID, ratings float64) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("ratings", ratings).Error
}

func (r *courseRepository) AddStudent(ctx context.Context, student *model.CourseStudent) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *courseRepository) IncrementPurchased(ctx context.Context, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("purchased", gorm.Expr("purchased + ?", 1)).Error
}

func (r *courseRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
