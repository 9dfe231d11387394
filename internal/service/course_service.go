package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"acadex.dev/acadex/internal/cache"
	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/mailer"
	"acadex.dev/acadex/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	courseCacheTTL  = 7 * 24 * time.Hour
	allCoursesCache = "allCourses"
)

type LinkInput struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type CourseContentInput struct {
	Title         string      `json:"title" binding:"required"`
	VideoURL      string      `json:"video_url"`
	VideoSection  string      `json:"video_section"`
	VideoDuration int         `json:"video_duration"`
	VideoPlayer   string      `json:"video_player"`
	Suggestions   string      `json:"suggestions"`
	Links         []LinkInput `json:"links"`
}

type CreateCourseInput struct {
	Title          string               `json:"title" binding:"required"`
	Description    string               `json:"description" binding:"required"`
	Price          float64              `json:"price" binding:"required"`
	EstimatedPrice float64              `json:"estimated_price"`
	Thumbnail      string               `json:"thumbnail"`
	Tags           []string             `json:"tags"`
	Level          string               `json:"level"`
	DemoURL        string               `json:"demo_url"`
	Benefits       []string             `json:"benefits"`
	Prerequisites  []string             `json:"prerequisites"`
	CourseData     []CourseContentInput `json:"course_data"`
}

type UpdateCourseInput struct {
	UpdateTitle       string `json:"update_title" binding:"required"`
	UpdateDescription string `json:"update_description" binding:"required"`

	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Price          float64              `json:"price"`
	EstimatedPrice float64              `json:"estimated_price"`
	Thumbnail      string               `json:"thumbnail"`
	Tags           []string             `json:"tags"`
	Level          string               `json:"level"`
	DemoURL        string               `json:"demo_url"`
	Benefits       []string             `json:"benefits"`
	Prerequisites  []string             `json:"prerequisites"`
	CourseData     []CourseContentInput `json:"course_data"`
}

type DeleteCourseInput struct {
	Reason string `json:"reason" binding:"required"`
}

type AddQuestionInput struct {
	CourseID  string `json:"course_id" binding:"required"`
	ContentID string `json:"content_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

type AddAnswerInput struct {
	CourseID   string `json:"course_id" binding:"required"`
	ContentID  string `json:"content_id" binding:"required"`
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

type AddReviewInput struct {
	Rating  float64 `json:"rating" binding:"required,min=1,max=5"`
	Comment string  `json:"comment" binding:"required"`
}

type AddReviewReplyInput struct {
	CourseID string `json:"course_id" binding:"required"`
	ReviewID string `json:"review_id" binding:"required"`
	Comment  string `json:"comment" binding:"required"`
}

type CourseService interface {
	Create(ctx context.Context, creator *model.User, input CreateCourseInput) (*model.Course, error)
	Update(ctx context.Context, actor *model.User, id string, input UpdateCourseInput) (*model.Course, error)
	Delete(ctx context.Context, actor *model.User, id string, input DeleteCourseInput) error
	Get(ctx context.Context, id string) (*model.Course, error)
	GetAll(ctx context.Context) ([]*model.Course, error)
	GetContent(ctx context.Context, user *model.User, id string) ([]model.CourseContent, error)
	AddQuestion(ctx context.Context, user *model.User, input AddQuestionInput) (*model.Question, error)
	AddAnswer(ctx context.Context, user *model.User, input AddAnswerInput) (*model.Answer, error)
	AddReview(ctx context.Context, user *model.User, courseID string, input AddReviewInput) (*model.Course, error)
	AddReviewReply(ctx context.Context, user *model.User, input AddReviewReplyInput) (*model.Review, error)
}

type courseService struct {
	courses       repository.CourseRepository
	users         repository.UserRepository
	notifications NotificationService
	mail          mailer.Mailer
	images        storage.ImageStorage
	search        SearchService
	cache         cache.Cache
}

func NewCourseService(courses repository.CourseRepository, users repository.UserRepository, notifications NotificationService, mail mailer.Mailer, images storage.ImageStorage, search SearchService, c cache.Cache) CourseService {
	return &courseService{
		courses:       courses,
		users:         users,
		notifications: notifications,
		mail:          mail,
		images:        images,
		search:        search,
		cache:         c,
	}
}

func (s *courseService) Create(ctx context.Context, creator *model.User, input CreateCourseInput) (*model.Course, error) {
	course := &model.Course{
		Creator:        userRef(creator),
		Title:          input.Title,
		Description:    input.Description,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
	}

	if len(input.Tags) > 0 {
		raw, err := json.Marshal(input.Tags)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		course.Tags = datatypes.JSON(raw)
	}

	if input.Thumbnail != "" {
		uploaded, err := s.images.Upload(ctx, input.Thumbnail, storage.FolderCourses, 0)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		course.Thumbnail = model.Image{PublicID: uploaded.PublicID, URL: uploaded.URL}
	}

	for _, title := range input.Benefits {
		course.Benefits = append(course.Benefits, model.CourseBenefit{Title: title})
	}
	for _, title := range input.Prerequisites {
		course.Prerequisites = append(course.Prerequisites, model.CoursePrerequisite{Title: title})
	}
	course.CourseData = buildContents(input.CourseData)

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.users.AddCreatedCourse(ctx, &model.UserCreatedCourse{
		UserID:   creator.ID,
		CourseID: course.ID,
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.search.IndexCourse(course); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, allCoursesCache); err != nil {
		return nil, apperror.Upstream(err)
	}

	return course, nil
}

func (s *courseService) Update(ctx context.Context, actor *model.User, id string, input UpdateCourseInput) (*model.Course, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Price > 0 {
		course.Price = input.Price
	}
	if input.EstimatedPrice > 0 {
		course.EstimatedPrice = input.EstimatedPrice
	}
	if input.Level != "" {
		course.Level = input.Level
	}
	if input.DemoURL != "" {
		course.DemoURL = input.DemoURL
	}
	if len(input.Tags) > 0 {
		raw, err := json.Marshal(input.Tags)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		course.Tags = datatypes.JSON(raw)
	}

	if input.Thumbnail != "" {
		if course.Thumbnail.PublicID != "" {
			if err := s.images.Destroy(ctx, course.Thumbnail.PublicID); err != nil {
				return nil, apperror.Upstream(err)
			}
		}
		uploaded, err := s.images.Upload(ctx, input.Thumbnail, storage.FolderCourses, 0)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		course.Thumbnail = model.Image{PublicID: uploaded.PublicID, URL: uploaded.URL}
	}

	// A provided collection replaces the stored one wholesale; Save only
	// upserts, so the old rows have to go first.
	if len(input.Benefits) > 0 {
		if err := s.courses.ClearBenefits(ctx, course.ID); err != nil {
			return nil, apperror.Upstream(err)
		}
		course.Benefits = nil
		for _, title := range input.Benefits {
			course.Benefits = append(course.Benefits, model.CourseBenefit{CourseID: course.ID, Title: title})
		}
	}
	if len(input.Prerequisites) > 0 {
		if err := s.courses.ClearPrerequisites(ctx, course.ID); err != nil {
			return nil, apperror.Upstream(err)
		}
		course.Prerequisites = nil
		for _, title := range input.Prerequisites {
			course.Prerequisites = append(course.Prerequisites, model.CoursePrerequisite{CourseID: course.ID, Title: title})
		}
	}
	if len(input.CourseData) > 0 {
		if err := s.courses.ClearContents(ctx, course.ID); err != nil {
			return nil, apperror.Upstream(err)
		}
		contents := buildContents(input.CourseData)
		for i := range contents {
			contents[i].CourseID = course.ID
		}
		course.CourseData = contents
	}

	course.Updates = append(course.Updates, model.CourseUpdate{
		CourseID: course.ID,
		UserID:   actor.ID,
	})

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.search.IndexCourse(course); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, allCoursesCache); err != nil {
		return nil, apperror.Upstream(err)
	}

	// The update is committed; fan-out failures surface as an upstream
	// error without undoing it.
	var fanout []error
	for _, student := range course.Students {
		if err := s.notifications.Create(ctx, student.User.UserID, "Course updated", fmt.Sprintf("%s: %s", input.UpdateTitle, input.UpdateDescription)); err != nil {
			fanout = append(fanout, err)
		}
		if err := s.mail.Send(ctx, mailer.Message{
			To:       student.User.Email,
			Subject:  fmt.Sprintf("New update in %s", course.Title),
			Template: mailer.TplCourseUpdate,
			Data: map[string]interface{}{
				"FirstName":         student.User.FirstName,
				"LastName":          student.User.LastName,
				"CourseTitle":       course.Title,
				"UpdateTitle":       input.UpdateTitle,
				"UpdateDescription": input.UpdateDescription,
			},
		}); err != nil {
			fanout = append(fanout, err)
		}
	}
	if len(fanout) > 0 {
		return course, apperror.Upstream(errors.Join(fanout...))
	}

	return course, nil
}

func (s *courseService) Delete(ctx context.Context, actor *model.User, id string, input DeleteCourseInput) error {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return err
	}

	var fanout []error
	for _, student := range course.Students {
		if err := s.notifications.Create(ctx, student.User.UserID, "Course removed", fmt.Sprintf("%s has been removed: %s", course.Title, input.Reason)); err != nil {
			fanout = append(fanout, err)
		}
		if err := s.mail.Send(ctx, mailer.Message{
			To:       student.User.Email,
			Subject:  fmt.Sprintf("%s has been removed", course.Title),
			Template: mailer.TplCourseDeleted,
			Data: map[string]interface{}{
				"FirstName":   student.User.FirstName,
				"LastName":    student.User.LastName,
				"CourseTitle": course.Title,
				"Reason":      input.Reason,
			},
		}); err != nil {
			fanout = append(fanout, err)
		}
	}

	if err := s.courses.Delete(ctx, course.ID); err != nil {
		return apperror.Upstream(err)
	}
	if err := s.search.DeleteCourse(course.ID.String()); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, course.ID.String(), allCoursesCache); err != nil {
		return apperror.Upstream(err)
	}

	if len(fanout) > 0 {
		return apperror.Upstream(errors.Join(fanout...))
	}
	return nil
}

// Get serves the storefront view: cache first, stripped of the content
// only buyers may see.
func (s *courseService) Get(ctx context.Context, id string) (*model.Course, error) {
	courseID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	var cached model.Course
	hit, err := s.cache.Get(ctx, courseID.String(), &cached)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	if hit {
		return &cached, nil
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Upstream(err)
	}

	view := storefrontView(course)
	if err := s.cache.Set(ctx, courseID.String(), view, courseCacheTTL); err != nil {
		return nil, apperror.Upstream(err)
	}

	return view, nil
}

func (s *courseService) GetAll(ctx context.Context) ([]*model.Course, error) {
	var cached []*model.Course
	hit, err := s.cache.Get(ctx, allCoursesCache, &cached)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	if hit {
		return cached, nil
	}

	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return nil, apperror.Upstream(err)
	}

	views := make([]*model.Course, 0, len(courses))
	for _, course := range courses {
		views = append(views, storefrontView(course))
	}
	if err := s.cache.Set(ctx, allCoursesCache, views, courseCacheTTL); err != nil {
		return nil, apperror.Upstream(err)
	}

	return views, nil
}

func (s *courseService) GetContent(ctx context.Context, user *model.User, id string) ([]model.CourseContent, error) {
	courseID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	if !hasCourse(user, courseID) {
		return nil, apperror.Forbidden("you are not eligible to access this course")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Upstream(err)
	}

	return course.CourseData, nil
}

func (s *courseService) AddQuestion(ctx context.Context, user *model.User, input AddQuestionInput) (*model.Question, error) {
	course, err := s.findCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	contentID, err := parseUUID(input.ContentID)
	if err != nil {
		return nil, err
	}
	content, err := s.courses.FindContent(ctx, course.ID, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("course content not found")
		}
		return nil, apperror.Upstream(err)
	}

	question := &model.Question{
		ContentID: content.ID,
		User:      userRef(user),
		Question:  input.Question,
	}
	if err := s.courses.AddQuestion(ctx, question); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.notifications.Create(ctx, course.Creator.UserID, "New question received", fmt.Sprintf("You have a new question in %s", content.Title)); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:       course.Creator.Email,
		Subject:  fmt.Sprintf("New question in %s", course.Title),
		Template: mailer.TplNewQuestion,
		Data: map[string]interface{}{
			"FirstName":       course.Creator.FirstName,
			"LastName":        course.Creator.LastName,
			"CourseTitle":     course.Title,
			"UserFirstName":   user.FirstName,
			"UserLastName":    user.LastName,
			"QuestionContent": input.Question,
		},
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	return question, nil
}

func (s *courseService) AddAnswer(ctx context.Context, user *model.User, input AddAnswerInput) (*model.Answer, error) {
	course, err := s.findCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	contentID, err := parseUUID(input.ContentID)
	if err != nil {
		return nil, err
	}
	questionID, err := parseUUID(input.QuestionID)
	if err != nil {
		return nil, err
	}

	content, err := s.courses.FindContent(ctx, course.ID, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("course content not found")
		}
		return nil, apperror.Upstream(err)
	}
	question, err := s.courses.FindQuestion(ctx, content.ID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("question not found")
		}
		return nil, apperror.Upstream(err)
	}

	answer := &model.Answer{
		QuestionID: question.ID,
		User:       userRef(user),
		Answer:     input.Answer,
	}
	if err := s.courses.AddAnswer(ctx, answer); err != nil {
		return nil, apperror.Upstream(err)
	}

	if question.User.UserID == user.ID {
		// The asker replied to their own thread, ping the creator.
		if err := s.notifications.Create(ctx, course.Creator.UserID, "New question reply received", fmt.Sprintf("You have a new reply in %s", content.Title)); err != nil {
			return nil, apperror.Upstream(err)
		}
		return answer, nil
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       question.User.Email,
		Subject:  fmt.Sprintf("Your question in %s was answered", course.Title),
		Template: mailer.TplNewAnswer,
		Data: map[string]interface{}{
			"FirstName":   question.User.FirstName,
			"LastName":    question.User.LastName,
			"CourseTitle": course.Title,
			"Question":    question.Question,
			"Answer":      input.Answer,
		},
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	return answer, nil
}

func (s *courseService) AddReview(ctx context.Context, user *model.User, courseID string, input AddReviewInput) (*model.Course, error) {
	id, err := parseUUID(courseID)
	if err != nil {
		return nil, err
	}
	if !hasCourse(user, id) {
		return nil, apperror.Forbidden("you are not eligible to review this course")
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Upstream(err)
	}

	review := model.Review{
		CourseID: course.ID,
		User:     userRef(user),
		Rating:   input.Rating,
		Comment:  input.Comment,
	}
	if err := s.courses.AddReview(ctx, &review); err != nil {
		return nil, apperror.Upstream(err)
	}
	course.Reviews = append(course.Reviews, review)

	// Full recompute, not an incremental adjustment.
	var sum float64
	for _, r := range course.Reviews {
		sum += r.Rating
	}
	course.Ratings = sum / float64(len(course.Reviews))
	if err := s.courses.UpdateRatings(ctx, course.ID, course.Ratings); err != nil {
		return nil, apperror.Upstream(err)
	}

	if err := s.notifications.Create(ctx, course.Creator.UserID, "New review received", fmt.Sprintf("%s %s left a review on %s", user.FirstName, user.LastName, course.Title)); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:       course.Creator.Email,
		Subject:  fmt.Sprintf("New review on %s", course.Title),
		Template: mailer.TplNewReview,
		Data: map[string]interface{}{
			"FirstName":         course.Creator.FirstName,
			"LastName":          course.Creator.LastName,
			"CourseTitle":       course.Title,
			"ReviewerFirstName": user.FirstName,
			"ReviewerLastName":  user.LastName,
			"Rating":            input.Rating,
			"ReviewContent":     input.Comment,
		},
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	return course, nil
}

func (s *courseService) AddReviewReply(ctx context.Context, user *model.User, input AddReviewReplyInput) (*model.Review, error) {
	course, err := s.findCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	reviewID, err := parseUUID(input.ReviewID)
	if err != nil {
		return nil, err
	}
	review, err := s.courses.FindReview(ctx, course.ID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("review not found")
		}
		return nil, apperror.Upstream(err)
	}

	reply := model.ReviewReply{
		ReviewID: review.ID,
		User:     userRef(user),
		Comment:  input.Comment,
	}
	if err := s.courses.AddReviewReply(ctx, &reply); err != nil {
		return nil, apperror.Upstream(err)
	}
	review.Replies = append(review.Replies, reply)

	if err := s.notifications.Create(ctx, review.User.UserID, "New reply on your review", fmt.Sprintf("Your review on %s got a reply", course.Title)); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.mail.Send(ctx, mailer.Message{
		To:       review.User.Email,
		Subject:  fmt.Sprintf("Your review on %s got a reply", course.Title),
		Template: mailer.TplNewReviewReply,
		Data: map[string]interface{}{
			"FirstName":   review.User.FirstName,
			"LastName":    review.User.LastName,
			"CourseTitle": course.Title,
			"Answer":      input.Comment,
		},
	}); err != nil {
		return nil, apperror.Upstream(err)
	}

	return review, nil
}

func (s *courseService) findCourse(ctx context.Context, id string) (*model.Course, error) {
	courseID, err := parseUUID(id)
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
	return course, nil
}

func buildContents(inputs []CourseContentInput) []model.CourseContent {
	contents := make([]model.CourseContent, 0, len(inputs))
	for _, in := range inputs {
		content := model.CourseContent{
			Title:         in.Title,
			VideoURL:      in.VideoURL,
			VideoSection:  in.VideoSection,
			VideoDuration: in.VideoDuration,
			VideoPlayer:   in.VideoPlayer,
			Suggestions:   in.Suggestions,
		}
		for _, link := range in.Links {
			content.Links = append(content.Links, model.ContentLink{Title: link.Title, URL: link.URL})
		}
		contents = append(contents, content)
	}
	return contents
}

// storefrontView strips everything buyers pay for: video URLs,
// suggestions, Q&A threads and lesson links.
func storefrontView(course *model.Course) *model.Course {
	view := *course
	view.CourseData = make([]model.CourseContent, len(course.CourseData))
	for i, content := range course.CourseData {
		stripped := content
		stripped.VideoURL = ""
		stripped.Suggestions = ""
		stripped.Questions = nil
		stripped.Links = nil
		view.CourseData[i] = stripped
	}
	return &view
}

func hasCourse(user *model.User, courseID uuid.UUID) bool {
	for _, membership := range user.Courses {
		if membership.CourseID == courseID {
			return true
		}
	}
	return false
}
