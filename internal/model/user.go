package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// Image is a remote asset reference. The public id is what the image
// store needs to destroy the asset later.
type Image struct {
	PublicID string `gorm:"size:255" json:"public_id"`
	URL      string `gorm:"type:text" json:"url"`
}

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	FirstName   string    `gorm:"size:100;not null" json:"first_name"`
	LastName    string    `gorm:"size:100" json:"last_name"`
	Department  string    `gorm:"size:100" json:"department,omitempty"`
	Country     string    `gorm:"size:100" json:"country,omitempty"`
	PhoneNumber string    `gorm:"size:50" json:"phone_number,omitempty"`
	Role        string    `gorm:"size:20;default:user" json:"role"`
	IsVerified  bool      `gorm:"default:false" json:"is_verified"`
	IsBlocked   bool      `gorm:"default:false" json:"is_blocked"`
	BlockCount  int       `gorm:"default:0" json:"block_count"`

	Avatar     Image `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	Background Image `gorm:"embedded;embeddedPrefix:background_" json:"background"`

	// Purchased and authored course memberships. The course side keeps
	// its own roster (CourseStudent); both are written on purchase.
	Courses        []UserCourse        `gorm:"constraint:OnDelete:CASCADE" json:"courses,omitempty"`
	CoursesCreated []UserCreatedCourse `gorm:"constraint:OnDelete:CASCADE" json:"courses_created,omitempty"`

	Actions []UserAction `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserCourse is one purchased-course membership on the user side.
type UserCourse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *UserCourse) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type UserCreatedCourse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *UserCreatedCourse) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

const (
	ActionBlock    = "block"
	ActionUnblock  = "unblock"
	ActionDelete   = "delete"
	ActionPassword = "password"
	ActionRole     = "role"
)

// UserAction is the moderation audit trail: who did what to whom.
type UserAction struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID  uuid.UUID `gorm:"type:uuid;index;not null" json:"actor_id"`
	TargetID uuid.UUID `gorm:"type:uuid;not null" json:"target_id"`
	Kind     string    `gorm:"size:20;not null" json:"kind"`
	// Populated for role changes only.
	Role      string    `gorm:"size:20" json:"role,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *UserAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
