package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRef is an identity snapshot denormalized at write time. Later
// profile edits do not propagate into it.
type UserRef struct {
	UserID    uuid.UUID `gorm:"type:uuid" json:"_id"`
	Email     string    `gorm:"size:100" json:"email"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
}

type Course struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Creator UserRef   `gorm:"embedded;embeddedPrefix:creator_" json:"creator"`

	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Price          float64        `gorm:"not null" json:"price"`
	EstimatedPrice float64        `json:"estimated_price,omitempty"`
	Thumbnail      Image          `gorm:"embedded;embeddedPrefix:thumbnail_" json:"thumbnail"`
	Tags           datatypes.JSON `json:"tags"`
	Level          string         `gorm:"size:50" json:"level"`
	DemoURL        string         `gorm:"type:text" json:"demo_url"`

	Benefits      []CourseBenefit      `gorm:"constraint:OnDelete:CASCADE" json:"benefits,omitempty"`
	Prerequisites []CoursePrerequisite `gorm:"constraint:OnDelete:CASCADE" json:"prerequisites,omitempty"`
	CourseData    []CourseContent      `gorm:"constraint:OnDelete:CASCADE" json:"course_data,omitempty"`
	Reviews       []Review             `gorm:"constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	Students      []CourseStudent      `gorm:"constraint:OnDelete:CASCADE" json:"students,omitempty"`
	Updates       []CourseUpdate       `gorm:"constraint:OnDelete:CASCADE" json:"updates,omitempty"`

	// Ratings is the arithmetic mean over Reviews, recomputed in full on
	// every insert.
	Ratings   float64 `gorm:"default:0" json:"ratings"`
	Purchased int     `gorm:"default:0" json:"purchased"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CourseBenefit struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;index;not null" json:"course_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
}

func (b *CourseBenefit) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type CoursePrerequisite struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;index;not null" json:"course_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
}

func (p *CoursePrerequisite) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CourseContent is one video lesson with its links and Q&A thread.
type CourseContent struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID       uuid.UUID `gorm:"type:uuid;index;not null" json:"course_id"`
	Title          string    `gorm:"size:255" json:"title"`
	VideoURL       string    `gorm:"type:text" json:"video_url,omitempty"`
	VideoThumbnail Image     `gorm:"embedded;embeddedPrefix:video_thumbnail_" json:"video_thumbnail"`
	VideoSection   string    `gorm:"size:255" json:"video_section"`
	VideoDuration  int       `json:"video_duration"`
	VideoPlayer    string    `gorm:"size:50" json:"video_player"`
	Suggestions    string    `gorm:"type:text" json:"suggestions,omitempty"`

	Links     []ContentLink `gorm:"constraint:OnDelete:CASCADE" json:"links,omitempty"`
	Questions []Question    `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (c *CourseContent) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ContentLink struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseContentID uuid.UUID `gorm:"type:uuid;index;not null" json:"course_content_id"`
	Title           string    `gorm:"size:255" json:"title"`
	URL             string    `gorm:"type:text" json:"url"`
}

func (l *ContentLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Question struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID uuid.UUID `gorm:"type:uuid;index;not null" json:"content_id"`
	User      UserRef   `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Replies   []Answer  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"question_replies,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;index;not null" json:"question_id"`
	User       UserRef   `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Review struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID     `gorm:"type:uuid;index;not null" json:"course_id"`
	User      UserRef       `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	Rating    float64       `gorm:"default:0" json:"rating"`
	Comment   string        `gorm:"type:text" json:"comment"`
	Replies   []ReviewReply `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"comment_replies,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type ReviewReply struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReviewID  uuid.UUID `gorm:"type:uuid;index;not null" json:"review_id"`
	User      UserRef   `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *ReviewReply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CourseStudent is the course-side roster entry, mirrored with the
// buyer's UserCourse row on purchase.
type CourseStudent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;index;not null" json:"course_id"`
	User      UserRef   `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *CourseStudent) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// CourseUpdate records who pushed a content update.
type CourseUpdate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;index;not null" json:"course_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *CourseUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
