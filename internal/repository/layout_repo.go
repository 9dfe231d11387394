package repository

import (
	"context"

	"acadex.dev/acadex/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LayoutRepository interface {
	Create(ctx context.Context, layout *model.Layout) error
	FindByType(ctx context.Context, layoutType string) (*model.Layout, error)
	FindAll(ctx context.Context) ([]*model.Layout, error)
	Update(ctx context.Context, layout *model.Layout) error

	AddBannerImages(ctx context.Context, images []model.BannerImage) error
	DeleteBannerImages(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error
	AddFAQItems(ctx context.Context, items []model.FAQItem) error
	DeleteFAQItems(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error
	AddCategories(ctx context.Context, items []model.CategoryItem) error
	DeleteCategories(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error
	AddSocialLinks(ctx context.Context, links []model.SocialLink) error
	DeleteSocialLinks(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error
	AddNavItems(ctx context.Context, items []model.NavItem) error
	DeleteNavItems(ctx context.Context, layoutID uuid.UUID, group string, ids []uuid.UUID) error
}

type layoutRepository struct {
	db *gorm.DB
}

func NewLayoutRepository(db *gorm.DB) LayoutRepository {
	return &layoutRepository{db: db}
}

func layoutPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("BannerImages").
		Preload("FAQ").
		Preload("Categories").
		Preload("Social").
		Preload("NavItems")
}

func (r *layoutRepository) Create(ctx context.Context, layout *model.Layout) error {
	return r.db.WithContext(ctx).Create(layout).Error
}

func (r *layoutRepository) FindByType(ctx context.Context, layoutType string) (*model.Layout, error) {
	var layout model.Layout
	if err := layoutPreloads(r.db.WithContext(ctx)).
		Where("type = ?", layoutType).
		First(&layout).Error; err != nil {
		return nil, err
	}

	return &layout, nil
}

func (r *layoutRepository) FindAll(ctx context.Context) ([]*model.Layout, error) {
	var layouts []*model.Layout
	if err := layoutPreloads(r.db.WithContext(ctx)).Find(&layouts).Error; err != nil {
		return nil, err
	}

	return layouts, nil
}

func (r *layoutRepository) Update(ctx context.Context, layout *model.Layout) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(layout).Error
}

func (r *layoutRepository) AddBannerImages(ctx context.Context, images []model.BannerImage) error {
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *layoutRepository) DeleteBannerImages(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error {
	q := r.db.WithContext(ctx).Where("layout_id = ?", layoutID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Delete(&model.BannerImage{}).Error
}

func (r *layoutRepository) AddFAQItems(ctx context.Context, items []model.FAQItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *layoutRepository) DeleteFAQItems(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error {
	q := r.db.WithContext(ctx).Where("layout_id = ?", layoutID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Delete(&model.FAQItem{}).Error
}

func (r *layoutRepository) AddCategories(ctx context.Context, items []model.CategoryItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *layoutRepository) DeleteCategories(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error {
	q := r.db.WithContext(ctx).Where("layout_id = ?", layoutID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Delete(&model.CategoryItem{}).Error
}

func (r *layoutRepository) AddSocialLinks(ctx context.Context, links []model.SocialLink) error {
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *layoutRepository) DeleteSocialLinks(ctx context.Context, layoutID uuid.UUID, ids []uuid.UUID) error {
	q := r.db.WithContext(ctx).Where("layout_id = ?", layoutID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Delete(&model.SocialLink{}).Error
}

func (r *layoutRepository) AddNavItems(ctx context.Context, items []model.NavItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *layoutRepository) DeleteNavItems(ctx context.Context, layoutID uuid.UUID, group string, ids []uuid.UUID) error {
	q := r.db.WithContext(ctx).Where("layout_id = ?", layoutID)
	if group != "" {
		q = q.Where("nav_group = ?", group)
	}
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Delete(&model.NavItem{}).Error
}
