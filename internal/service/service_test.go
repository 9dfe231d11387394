package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/pkg/mailer"
	"acadex.dev/acadex/pkg/storage"
)

// newTestDB opens a throwaway sqlite database named after the test so
// parallel packages never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.UserCourse{},
		&model.UserCreatedCourse{},
		&model.UserAction{},
		&model.Course{},
		&model.CourseBenefit{},
		&model.CoursePrerequisite{},
		&model.CourseContent{},
		&model.ContentLink{},
		&model.Question{},
		&model.Answer{},
		&model.Review{},
		&model.ReviewReply{},
		&model.CourseStudent{},
		&model.CourseUpdate{},
		&model.Order{},
		&model.Notification{},
		&model.Layout{},
		&model.BannerImage{},
		&model.FAQItem{},
		&model.CategoryItem{},
		&model.SocialLink{},
		&model.NavItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// mailRecorder captures outgoing mail instead of talking to SendGrid.
type mailRecorder struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *mailRecorder) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailRecorder) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Message{}
	}
	return m.sent[len(m.sent)-1]
}

// stubImages hands back deterministic asset ids without a CDN.
type stubImages struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
}

func (s *stubImages) Upload(_ context.Context, _ interface{}, folder string, _ int) (*storage.UploadedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	return &storage.UploadedImage{
		PublicID: folder + "/stub",
		URL:      "https://cdn.test/" + folder + "/stub.png",
	}, nil
}

func (s *stubImages) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

// stubSearch satisfies the search index without a running engine.
type stubSearch struct {
	mu      sync.Mutex
	indexed []string
	removed []string
}

func (s *stubSearch) IndexCourse(course *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed = append(s.indexed, course.ID.String())
	return nil
}

func (s *stubSearch) DeleteCourse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, id)
	return nil
}

func (s *stubSearch) Search(string, int, int) ([]CourseHit, int64, error) {
	return nil, 0, nil
}
