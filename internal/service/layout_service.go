package service

import (
	"context"
	"errors"

	"acadex.dev/acadex/internal/cache"
	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The full layout collection is mirrored under a single cache key and
// rewritten after every mutation.
const layoutCacheKey = "layout"

type FAQEntryInput struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type CategoryEntryInput struct {
	ID      string `json:"id"`
	TitleAr string `json:"title_ar"`
	TitleEn string `json:"title_en"`
}

type SocialEntryInput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type NavEntryInput struct {
	ID      string `json:"id"`
	TitleAr string `json:"title_ar"`
	TitleEn string `json:"title_en"`
	URL     string `json:"url"`
}

type BannerImageInput struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

type LayoutInput struct {
	Type string `json:"type" binding:"required"`

	BannerTitle    string `json:"banner_title"`
	BannerSubTitle string `json:"banner_sub_title"`

	LogoTitle string `json:"logo_title"`
	LogoImage string `json:"logo_image"`

	Images     []BannerImageInput   `json:"images"`
	FAQ        []FAQEntryInput      `json:"faq"`
	Categories []CategoryEntryInput `json:"categories"`
	Social     []SocialEntryInput   `json:"social"`
	NavItems   []NavEntryInput      `json:"nav_items"`
}

type DeleteLayoutInput struct {
	Type       string   `json:"type" binding:"required"`
	DeleteType string   `json:"delete_type" binding:"required,oneof=one many all"`
	IDs        []string `json:"ids"`
}

type LayoutService interface {
	Create(ctx context.Context, input LayoutInput) (*model.Layout, error)
	Add(ctx context.Context, input LayoutInput) (*model.Layout, error)
	Edit(ctx context.Context, input LayoutInput) (*model.Layout, error)
	Delete(ctx context.Context, input DeleteLayoutInput) error
	Get(ctx context.Context, layoutType string) (*model.Layout, error)
	GetAll(ctx context.Context) ([]*model.Layout, error)
}

type layoutService struct {
	layouts repository.LayoutRepository
	images  storage.ImageStorage
	cache   cache.Cache
}

func NewLayoutService(layouts repository.LayoutRepository, images storage.ImageStorage, c cache.Cache) LayoutService {
	return &layoutService{
		layouts: layouts,
		images:  images,
		cache:   c,
	}
}

// navGroupFor maps the services and learnNow pseudo-types onto groups
// of the shared navitems row.
func navGroupFor(layoutType string) string {
	switch layoutType {
	case model.LayoutServices:
		return model.NavGroupServices
	case model.LayoutLearnNow:
		return model.NavGroupLearnNow
	default:
		return model.NavGroupMain
	}
}

func (s *layoutService) Create(ctx context.Context, input LayoutInput) (*model.Layout, error) {
	switch input.Type {
	case model.LayoutBannerText:
		if input.BannerTitle == "" || input.BannerSubTitle == "" {
			return nil, apperror.Validation("banner title and subtitle are required")
		}
		return s.createRow(ctx, &model.Layout{
			Type:           input.Type,
			BannerTitle:    input.BannerTitle,
			BannerSubTitle: input.BannerSubTitle,
		})

	case model.LayoutLogo:
		if input.LogoTitle == "" || input.LogoImage == "" {
			return nil, apperror.Validation("logo title and image are required")
		}
		uploaded, err := s.images.Upload(ctx, input.LogoImage, storage.FolderLogo, 0)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		return s.createRow(ctx, &model.Layout{
			Type:      input.Type,
			LogoTitle: input.LogoTitle,
			LogoImage: model.Image{PublicID: uploaded.PublicID, URL: uploaded.URL},
		})

	case model.LayoutBannerImages:
		if len(input.Images) == 0 {
			return nil, apperror.Validation("banner images are required")
		}
		row := &model.Layout{Type: input.Type}
		for _, img := range input.Images {
			uploaded, err := s.images.Upload(ctx, img.Image, storage.FolderLayout, 0)
			if err != nil {
				return nil, apperror.Upstream(err)
			}
			row.BannerImages = append(row.BannerImages, model.BannerImage{
				Image: model.Image{PublicID: uploaded.PublicID, URL: uploaded.URL},
			})
		}
		return s.createRow(ctx, row)

	case model.LayoutFAQ:
		if len(input.FAQ) == 0 {
			return nil, apperror.Validation("faq items are required")
		}
		row := &model.Layout{Type: input.Type}
		for _, item := range input.FAQ {
			if item.Question == "" || item.Answer == "" {
				return nil, apperror.Validation("faq question and answer are required")
			}
			row.FAQ = append(row.FAQ, model.FAQItem{Question: item.Question, Answer: item.Answer})
		}
		return s.createRow(ctx, row)

	case model.LayoutCategories:
		if len(input.Categories) == 0 {
			return nil, apperror.Validation("categories are required")
		}
		row := &model.Layout{Type: input.Type}
		for _, item := range input.Categories {
			if item.TitleAr == "" || item.TitleEn == "" {
				return nil, apperror.Validation("category titles are required")
			}
			row.Categories = append(row.Categories, model.CategoryItem{TitleAr: item.TitleAr, TitleEn: item.TitleEn})
		}
		return s.createRow(ctx, row)

	case model.LayoutSocial:
		if len(input.Social) == 0 {
			return nil, apperror.Validation("social links are required")
		}
		row := &model.Layout{Type: input.Type}
		for _, item := range input.Social {
			if item.Title == "" || item.URL == "" {
				return nil, apperror.Validation("social title and url are required")
			}
			row.Social = append(row.Social, model.SocialLink{Title: item.Title, URL: item.URL})
		}
		return s.createRow(ctx, row)

	case model.LayoutNavItems, model.LayoutServices, model.LayoutLearnNow:
		if len(input.NavItems) == 0 {
			return nil, apperror.Validation("nav items are required")
		}
		return s.createNavGroup(ctx, input)

	default:
		return nil, apperror.Validation("unknown layout type")
	}
}

func (s *layoutService) createRow(ctx context.Context, row *model.Layout) (*model.Layout, error) {
	if _, err := s.layouts.FindByType(ctx, row.Type); err == nil {
		return nil, apperror.Validation(row.Type + " layout already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Upstream(err)
	}

	if err := s.layouts.Create(ctx, row); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.refreshCache(ctx); err != nil {
		return nil, err
	}
	return row, nil
}

// createNavGroup creates or extends the shared navitems row with the
// group addressed by the pseudo-type.
func (s *layoutService) createNavGroup(ctx context.Context, input LayoutInput) (*model.Layout, error) {
	group := navGroupFor(input.Type)

	row, err := s.layouts.FindByType(ctx, model.LayoutNavItems)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = &model.Layout{Type: model.LayoutNavItems}
		if err := s.layouts.Create(ctx, row); err != nil {
			return nil, apperror.Upstream(err)
		}
	} else if err != nil {
		return nil, apperror.Upstream(err)
	}

	for _, existing := range row.NavItems {
		if existing.Group == group {
			return nil, apperror.Validation(input.Type + " layout already exists")
		}
	}

	items := make([]model.NavItem, 0, len(input.NavItems))
	for _, item := range input.NavItems {
		if item.TitleEn == "" {
			return nil, apperror.Validation("nav item title is required")
		}
		items = append(items, model.NavItem{
			LayoutID: row.ID,
			Group:    group,
			TitleAr:  item.TitleAr,
			TitleEn:  item.TitleEn,
			URL:      item.URL,
		})
	}
	if err := s.layouts.AddNavItems(ctx, items); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.refreshCache(ctx); err != nil {
		return nil, err
	}

	return s.findRow(ctx, model.LayoutNavItems)
}

func (s *layoutService) Add(ctx context.Context, input LayoutInput) (*model.Layout, error) {
	row, err := s.findRow(ctx, canonicalType(input.Type))
	if err != nil {
		return nil, err
	}

	switch input.Type {
	case model.LayoutFAQ:
		if len(input.FAQ) == 0 {
			return nil, apperror.Validation("faq items are required")
		}
		items := make([]model.FAQItem, 0, len(input.FAQ))
		for _, item := range input.FAQ {
			if item.Question == "" || item.Answer == "" {
				return nil, apperror.Validation("faq question and answer are required")
			}
			items = append(items, model.FAQItem{LayoutID: row.ID, Question: item.Question, Answer: item.Answer})
		}
		if err := s.layouts.AddFAQItems(ctx, items); err != nil {
			return nil, apperror.Upstream(err)
		}

	case model.LayoutCategories:
		if len(input.Categories) == 0 {
			return nil, apperror.Validation("categories are required")
		}
		items := make([]model.CategoryItem, 0, len(input.Categories))
		for _, item := range input.Categories {
			if item.TitleAr == "" || item.TitleEn == "" {
				return nil, apperror.Validation("category titles are required")
			}
			items = append(items, model.CategoryItem{LayoutID: row.ID, TitleAr: item.TitleAr, TitleEn: item.TitleEn})
		}
		if err := s.layouts.AddCategories(ctx, items); err != nil {
			return nil, apperror.Upstream(err)
		}

	case model.LayoutSocial:
		if len(input.Social) == 0 {
			return nil, apperror.Validation("social links are required")
		}
		items := make([]model.SocialLink, 0, len(input.Social))
		for _, item := range input.Social {
			if item.Title == "" || item.URL == "" {
				return nil, apperror.Validation("social title and url are required")
			}
			items = append(items, model.SocialLink{LayoutID: row.ID, Title: item.Title, URL: item.URL})
		}
		if err := s.layouts.AddSocialLinks(ctx, items); err != nil {
			return nil, apperror.Upstream(err)
		}

	case model.LayoutBannerImages:
		if len(input.Images) == 0 {
			return nil, apperror.Validation("banner images are required")
		}
		items := make([]model.BannerImage, 0, len(input.Images))
		for _, img := range input.Images {
			uploaded, err := s.images.Upload(ctx, img.Image, storage.FolderLayout, 0)
			if err != nil {
				return nil, apperror.Upstream(err)
			}
			items = append(items, model.BannerImage{
				LayoutID: row.ID,
				Image:    model.Image{PublicID: uploaded.PublicID, URL: uploaded.URL},
			})
		}
		if err := s.layouts.AddBannerImages(ctx, items); err != nil {
			return nil, apperror.Upstream(err)
		}

	case model.LayoutNavItems, model.LayoutServices, model.LayoutLearnNow:
		if len(input.NavItems) == 0 {
			return nil, apperror.Validation("nav items are required")
		}
		group := navGroupFor(input.Type)
		items := make([]model.NavItem, 0, len(input.NavItems))
		for _, item := range input.NavItems {
			if item.TitleEn == "" {
				return nil, apperror.Validation("nav item title is required")
			}
			items = append(items, model.NavItem{
				LayoutID: row.ID,
				Group:    group,
				TitleAr:  item.TitleAr,
				TitleEn:  item.TitleEn,
				URL:      item.URL,
			})
		}
		if err := s.layouts.AddNavItems(ctx, items); err != nil {
			return nil, apperror.Upstream(err)
		}

	case model.LayoutBannerText, model.LayoutLogo:
		return nil, apperror.Validation("this layout type has nothing to append, use edit")

	default:
		return nil, apperror.Validation("unknown layout type")
	}

	if err := s.refreshCache(ctx); err != nil {
		return nil, err
	}
	return s.findRow(ctx, canonicalType(input.Type))
}

func (s *layoutService) Edit(ctx context.Context, input LayoutInput) (*model.Layout, error) {
	row, err := s.findRow(ctx, canonicalType(input.Type))
	if err != nil {
		return nil, err
	}

	switch input.Type {
	case model.LayoutBannerText:
		if input.BannerTitle == "" || input.BannerSubTitle == "" {
			return nil, apperror.Validation("banner title and subtitle are required")
		}
		row.BannerTitle = input.BannerTitle
		row.BannerSubTitle = input.BannerSubTitle

	case model.LayoutLogo:
		if input.LogoTitle != "" {
			row.LogoTitle = input.LogoTitle
		}
		if input.LogoImage != "" {
			if row.LogoImage.PublicID != "" {
				if err := s.images.Destroy(ctx, row.LogoImage.PublicID); err != nil {
					return nil, apperror.Upstream(err)
				}
			}
			uploaded, err := s.images.Upload(ctx, input.LogoImage, storage.FolderLogo, 0)
			if err != nil {
				return nil, apperror.Upstream(err)
			}
			row.LogoImage = model.Image{PublicID: uploaded.PublicID, URL: uploaded.URL}
		}

	case model.LayoutBannerImages:
		if len(input.Images) == 0 {
			return nil, apperror.Validation("banner images are required")
		}
		for _, img := range input.Images {
			id, err := parseUUID(img.ID)
			if err != nil {
				return nil, err
			}
			idx := -1
			for i := range row.BannerImages {
				if row.BannerImages[i].ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, apperror.NotFound("banner image not found")
			}
			if row.BannerImages[idx].Image.PublicID != "" {
				if err := s.images.Destroy(ctx, row.BannerImages[idx].Image.PublicID); err != nil {
					return nil, apperror.Upstream(err)
				}
			}
			uploaded, err := s.images.Upload(ctx, img.Image, storage.FolderLayout, 0)
			if err != nil {
				return nil, apperror.Upstream(err)
			}
			row.BannerImages[idx].Image = model.Image{PublicID: uploaded.PublicID, URL: uploaded.URL}
		}

	case model.LayoutFAQ:
		for _, item := range input.FAQ {
			if item.Question == "" || item.Answer == "" {
				return nil, apperror.Validation("faq question and answer are required")
			}
			id, err := parseUUID(item.ID)
			if err != nil {
				return nil, err
			}
			found := false
			for i := range row.FAQ {
				if row.FAQ[i].ID == id {
					row.FAQ[i].Question = item.Question
					row.FAQ[i].Answer = item.Answer
					found = true
					break
				}
			}
			if !found {
				return nil, apperror.NotFound("faq item not found")
			}
		}

	case model.LayoutCategories:
		for _, item := range input.Categories {
			if item.TitleAr == "" || item.TitleEn == "" {
				return nil, apperror.Validation("category titles are required")
			}
			id, err := parseUUID(item.ID)
			if err != nil {
				return nil, err
			}
			found := false
			for i := range row.Categories {
				if row.Categories[i].ID == id {
					row.Categories[i].TitleAr = item.TitleAr
					row.Categories[i].TitleEn = item.TitleEn
					found = true
					break
				}
			}
			if !found {
				return nil, apperror.NotFound("category not found")
			}
		}

	case model.LayoutSocial:
		for _, item := range input.Social {
			if item.Title == "" || item.URL == "" {
				return nil, apperror.Validation("social title and url are required")
			}
			id, err := parseUUID(item.ID)
			if err != nil {
				return nil, err
			}
			found := false
			for i := range row.Social {
				if row.Social[i].ID == id {
					row.Social[i].Title = item.Title
					row.Social[i].URL = item.URL
					found = true
					break
				}
			}
			if !found {
				return nil, apperror.NotFound("social link not found")
			}
		}

	case model.LayoutNavItems, model.LayoutServices, model.LayoutLearnNow:
		for _, item := range input.NavItems {
			if item.TitleEn == "" {
				return nil, apperror.Validation("nav item title is required")
			}
			id, err := parseUUID(item.ID)
			if err != nil {
				return nil, err
			}
			found := false
			for i := range row.NavItems {
				if row.NavItems[i].ID == id {
					row.NavItems[i].TitleAr = item.TitleAr
					row.NavItems[i].TitleEn = item.TitleEn
					row.NavItems[i].URL = item.URL
					found = true
					break
				}
			}
			if !found {
				return nil, apperror.NotFound("nav item not found")
			}
		}

	default:
		return nil, apperror.Validation("unknown layout type")
	}

	if err := s.layouts.Update(ctx, row); err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.refreshCache(ctx); err != nil {
		return nil, err
	}

	return row, nil
}

func (s *layoutService) Delete(ctx context.Context, input DeleteLayoutInput) error {
	row, err := s.findRow(ctx, canonicalType(input.Type))
	if err != nil {
		return err
	}

	ids, err := resolveDeleteIDs(input)
	if err != nil {
		return err
	}

	switch input.Type {
	case model.LayoutFAQ:
		if err := s.layouts.DeleteFAQItems(ctx, row.ID, ids); err != nil {
			return apperror.Upstream(err)
		}

	case model.LayoutCategories:
		if err := s.layouts.DeleteCategories(ctx, row.ID, ids); err != nil {
			return apperror.Upstream(err)
		}

	case model.LayoutSocial:
		if err := s.layouts.DeleteSocialLinks(ctx, row.ID, ids); err != nil {
			return apperror.Upstream(err)
		}

	case model.LayoutBannerImages:
		// Assets are destroyed to completion before the rows go away.
		targets := row.BannerImages
		if len(ids) > 0 {
			targets = nil
			for _, img := range row.BannerImages {
				for _, id := range ids {
					if img.ID == id {
						targets = append(targets, img)
					}
				}
			}
		}
		for _, img := range targets {
			if err := s.images.Destroy(ctx, img.Image.PublicID); err != nil {
				return apperror.Upstream(err)
			}
		}
		if err := s.layouts.DeleteBannerImages(ctx, row.ID, ids); err != nil {
			return apperror.Upstream(err)
		}

	case model.LayoutNavItems, model.LayoutServices, model.LayoutLearnNow:
		group := ""
		if input.Type != model.LayoutNavItems {
			group = navGroupFor(input.Type)
		}
		if err := s.layouts.DeleteNavItems(ctx, row.ID, group, ids); err != nil {
			return apperror.Upstream(err)
		}

	case model.LayoutBannerText, model.LayoutLogo:
		return apperror.Validation("this layout type has no entries to delete")

	default:
		return apperror.Validation("unknown layout type")
	}

	return s.refreshCache(ctx)
}

func (s *layoutService) Get(ctx context.Context, layoutType string) (*model.Layout, error) {
	layouts, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	want := canonicalType(layoutType)
	for _, layout := range layouts {
		if layout.Type == want {
			return layout, nil
		}
	}
	return nil, apperror.NotFound("layout not found")
}

func (s *layoutService) GetAll(ctx context.Context) ([]*model.Layout, error) {
	var cached []*model.Layout
	hit, err := s.cache.Get(ctx, layoutCacheKey, &cached)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	if hit {
		return cached, nil
	}

	layouts, err := s.layouts.FindAll(ctx)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	if err := s.cache.Set(ctx, layoutCacheKey, layouts, 0); err != nil {
		return nil, apperror.Upstream(err)
	}

	return layouts, nil
}

func (s *layoutService) findRow(ctx context.Context, layoutType string) (*model.Layout, error) {
	row, err := s.layouts.FindByType(ctx, layoutType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(layoutType + " layout not found")
		}
		return nil, apperror.Upstream(err)
	}
	return row, nil
}

// refreshCache rewrites the full-collection blob after a mutation.
func (s *layoutService) refreshCache(ctx context.Context) error {
	layouts, err := s.layouts.FindAll(ctx)
	if err != nil {
		return apperror.Upstream(err)
	}
	if err := s.cache.Set(ctx, layoutCacheKey, layouts, 0); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}

// canonicalType collapses the nav pseudo-types onto the stored row.
func canonicalType(layoutType string) string {
	switch layoutType {
	case model.LayoutServices, model.LayoutLearnNow:
		return model.LayoutNavItems
	default:
		return layoutType
	}
}

func resolveDeleteIDs(input DeleteLayoutInput) ([]uuid.UUID, error) {
	switch input.DeleteType {
	case model.SelectOne:
		if len(input.IDs) != 1 {
			return nil, apperror.Validation("exactly one id is required")
		}
	case model.SelectMany:
		if len(input.IDs) == 0 {
			return nil, apperror.Validation("at least one id is required")
		}
	case model.SelectAll:
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(input.IDs))
	for _, raw := range input.IDs {
		id, err := parseUUID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
