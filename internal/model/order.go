package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order records one purchase event. Uniqueness of (user, course) is only
// enforced by the membership checks in the order service, matching the
// membership-array semantics of the purchase flow.
type Order struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	CourseID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"course_id"`
	PaymentInfo datatypes.JSON `json:"payment_info"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
