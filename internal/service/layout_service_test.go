package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"acadex.dev/acadex/internal/cache"
	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/pkg/apperror"
)

func newLayoutService(t *testing.T) LayoutService {
	t.Helper()

	layouts := repository.NewLayoutRepository(newTestDB(t))
	return NewLayoutService(layouts, &stubImages{}, cache.NewMemory())
}

func seedFAQ(t *testing.T, ctx context.Context, svc LayoutService) *model.Layout {
	t.Helper()

	row, err := svc.Create(ctx, LayoutInput{
		Type: model.LayoutFAQ,
		FAQ: []FAQEntryInput{
			{Question: "How do refunds work?", Answer: "Within 14 days."},
			{Question: "Is there a certificate?", Answer: "Yes, on completion."},
			{Question: "Can I download videos?", Answer: "No, streaming only."},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, row.FAQ, 3)
	return row
}

func TestCreateFAQLayout(t *testing.T) {
	ctx := context.Background()
	svc := newLayoutService(t)

	seedFAQ(t, ctx, svc)

	row, err := svc.Get(ctx, model.LayoutFAQ)
	assert.NoError(t, err)
	assert.Len(t, row.FAQ, 3)

	// A second faq row is refused.
	_, err = svc.Create(ctx, LayoutInput{
		Type: model.LayoutFAQ,
		FAQ:  []FAQEntryInput{{Question: "Again?", Answer: "No."}},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeleteOneFAQItem(t *testing.T) {
	ctx := context.Background()
	svc := newLayoutService(t)

	row := seedFAQ(t, ctx, svc)
	victim := row.FAQ[1]

	err := svc.Delete(ctx, DeleteLayoutInput{
		Type:       model.LayoutFAQ,
		DeleteType: model.SelectOne,
		IDs:        []string{victim.ID.String()},
	})
	assert.NoError(t, err)

	after, err := svc.Get(ctx, model.LayoutFAQ)
	assert.NoError(t, err)
	assert.Len(t, after.FAQ, 2)
	for _, item := range after.FAQ {
		assert.NotEqual(t, victim.ID, item.ID)
	}
}

func TestDeleteOneRequiresExactlyOneID(t *testing.T) {
	ctx := context.Background()
	svc := newLayoutService(t)

	row := seedFAQ(t, ctx, svc)

	err := svc.Delete(ctx, DeleteLayoutInput{
		Type:       model.LayoutFAQ,
		DeleteType: model.SelectOne,
		IDs:        []string{row.FAQ[0].ID.String(), row.FAQ[1].ID.String()},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = svc.Delete(ctx, DeleteLayoutInput{
		Type:       model.LayoutFAQ,
		DeleteType: model.SelectOne,
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	after, err := svc.Get(ctx, model.LayoutFAQ)
	assert.NoError(t, err)
	assert.Len(t, after.FAQ, 3)
}

func TestDeleteAllFAQItems(t *testing.T) {
	ctx := context.Background()
	svc := newLayoutService(t)

	seedFAQ(t, ctx, svc)

	err := svc.Delete(ctx, DeleteLayoutInput{
		Type:       model.LayoutFAQ,
		DeleteType: model.SelectAll,
	})
	assert.NoError(t, err)

	after, err := svc.Get(ctx, model.LayoutFAQ)
	assert.NoError(t, err)
	assert.Empty(t, after.FAQ)
}

func TestNavPseudoTypesShareOneRow(t *testing.T) {
	ctx := context.Background()
	svc := newLayoutService(t)

	_, err := svc.Create(ctx, LayoutInput{
		Type:     model.LayoutServices,
		NavItems: []NavEntryInput{{TitleEn: "Mentoring", TitleAr: "إرشاد", URL: "/mentoring"}},
	})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, LayoutInput{
		Type:     model.LayoutLearnNow,
		NavItems: []NavEntryInput{{TitleEn: "Courses", TitleAr: "دورات", URL: "/courses"}},
	})
	assert.NoError(t, err)

	// Both groups land on the shared navitems row.
	row, err := svc.Get(ctx, model.LayoutNavItems)
	assert.NoError(t, err)
	assert.Len(t, row.NavItems, 2)

	// Re-creating an occupied group is refused.
	_, err = svc.Create(ctx, LayoutInput{
		Type:     model.LayoutServices,
		NavItems: []NavEntryInput{{TitleEn: "Again", URL: "/again"}},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	// Deleting one group leaves the other intact.
	err = svc.Delete(ctx, DeleteLayoutInput{
		Type:       model.LayoutServices,
		DeleteType: model.SelectAll,
	})
	assert.NoError(t, err)

	row, err = svc.Get(ctx, model.LayoutNavItems)
	assert.NoError(t, err)
	assert.Len(t, row.NavItems, 1)
	assert.Equal(t, "Courses", row.NavItems[0].TitleEn)
}

func TestBannerTextLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newLayoutService(t)

	_, err := svc.Create(ctx, LayoutInput{
		Type:           model.LayoutBannerText,
		BannerTitle:    "Learn anything",
		BannerSubTitle: "At your own pace",
	})
	assert.NoError(t, err)

	// Banner text has no list to append to.
	_, err = svc.Add(ctx, LayoutInput{Type: model.LayoutBannerText, BannerTitle: "More"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	row, err := svc.Edit(ctx, LayoutInput{
		Type:           model.LayoutBannerText,
		BannerTitle:    "Learn everything",
		BannerSubTitle: "At your own pace",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Learn everything", row.BannerTitle)

	got, err := svc.Get(ctx, model.LayoutBannerText)
	assert.NoError(t, err)
	assert.Equal(t, "Learn everything", got.BannerTitle)
}

func TestGetUnknownLayout(t *testing.T) {
	ctx := context.Background()
	svc := newLayoutService(t)

	_, err := svc.Get(ctx, model.LayoutFAQ)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
