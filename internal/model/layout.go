package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Layout types. One layout row exists per type; the nav groups services
// and learnNow address sub-lists of the navitems row.
const (
	LayoutFAQ          = "faq"
	LayoutLogo         = "logo"
	LayoutBannerText   = "bannertext"
	LayoutBannerImages = "bannerimages"
	LayoutCategories   = "categories"
	LayoutNavItems     = "navitems"
	LayoutServices     = "services"
	LayoutLearnNow     = "learnnow"
	LayoutSocial       = "social"
)

// Nav item groups within the navitems layout.
const (
	NavGroupMain     = "main"
	NavGroupServices = "services"
	NavGroupLearnNow = "learnNow"
)

// Cardinality of add/delete operations on layout sub-collections.
const (
	SelectOne  = "one"
	SelectMany = "many"
	SelectAll  = "all"
)

type Layout struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type string    `gorm:"size:30;uniqueIndex;not null" json:"type"`

	BannerTitle    string `gorm:"size:255" json:"banner_title,omitempty"`
	BannerSubTitle string `gorm:"size:255" json:"banner_sub_title,omitempty"`

	LogoTitle string `gorm:"size:255" json:"logo_title,omitempty"`
	LogoImage Image  `gorm:"embedded;embeddedPrefix:logo_image_" json:"logo_image"`

	BannerImages []BannerImage  `gorm:"constraint:OnDelete:CASCADE" json:"banner_images,omitempty"`
	FAQ          []FAQItem      `gorm:"constraint:OnDelete:CASCADE" json:"faq,omitempty"`
	Categories   []CategoryItem `gorm:"constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	Social       []SocialLink   `gorm:"constraint:OnDelete:CASCADE" json:"social,omitempty"`
	NavItems     []NavItem      `gorm:"constraint:OnDelete:CASCADE" json:"nav_items,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Layout) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type BannerImage struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LayoutID uuid.UUID `gorm:"type:uuid;index;not null" json:"layout_id"`
	Image    Image     `gorm:"embedded" json:"image"`
}

func (b *BannerImage) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type FAQItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LayoutID uuid.UUID `gorm:"type:uuid;index;not null" json:"layout_id"`
	Question string    `gorm:"type:text;not null" json:"question"`
	Answer   string    `gorm:"type:text;not null" json:"answer"`
}

func (f *FAQItem) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// CategoryItem titles are bilingual, as the storefront renders both.
type CategoryItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LayoutID uuid.UUID `gorm:"type:uuid;index;not null" json:"layout_id"`
	TitleAr  string    `gorm:"size:255;not null" json:"title_ar"`
	TitleEn  string    `gorm:"size:255;not null" json:"title_en"`
}

func (c *CategoryItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type SocialLink struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LayoutID uuid.UUID `gorm:"type:uuid;index;not null" json:"layout_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	URL      string    `gorm:"type:text;not null" json:"url"`
}

func (s *SocialLink) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type NavItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LayoutID uuid.UUID `gorm:"type:uuid;index;not null" json:"layout_id"`
	Group    string    `gorm:"size:20;not null;column:nav_group" json:"group"`
	TitleAr  string    `gorm:"size:255" json:"title_ar"`
	TitleEn  string    `gorm:"size:255" json:"title_en"`
	URL      string    `gorm:"type:text" json:"url"`
}

func (n *NavItem) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
