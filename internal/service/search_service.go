package service

import (
	"encoding/json"
	"html"
	"strings"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/pkg/apperror"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const courseIndex = "courses"

// CourseHit is one search result row, a storefront subset of a course.
type CourseHit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Level       string   `json:"level"`
	Price       float64  `json:"price"`
	Thumbnail   string   `json:"thumbnail"`
	Ratings     float64  `json:"ratings"`
	Purchased   int      `json:"purchased"`
}

type SearchService interface {
	IndexCourse(course *model.Course) error
	DeleteCourse(id string) error
	Search(query string, page, limit int) ([]CourseHit, int64, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

func NewSearchService(client meilisearch.ServiceManager, log *zap.Logger) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndex()
	return s
}

func (s *searchService) initIndex() {
	sortable := []string{"ratings", "purchased", "price"}
	if _, err := s.client.Index(courseIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update course sortable attributes", zap.Error(err))
	}

	searchable := []string{"title", "description", "tags"}
	if _, err := s.client.Index(courseIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.Warn("failed to update course searchable attributes", zap.Error(err))
	}
}

func (s *searchService) clean(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleaned := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleaned), " ")
}

func (s *searchService) IndexCourse(course *model.Course) error {
	var tags []string
	if len(course.Tags) > 0 {
		// Tags are stored as a JSON array column; ignore malformed data.
		_ = json.Unmarshal(course.Tags, &tags)
	}

	doc := CourseHit{
		ID:          course.ID.String(),
		Title:       course.Title,
		Description: s.clean(course.Description),
		Tags:        tags,
		Level:       course.Level,
		Price:       course.Price,
		Thumbnail:   course.Thumbnail.URL,
		Ratings:     course.Ratings,
		Purchased:   course.Purchased,
	}

	primaryKey := "id"
	if _, err := s.client.Index(courseIndex).AddDocuments([]CourseHit{doc}, &primaryKey); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}

func (s *searchService) DeleteCourse(id string) error {
	if _, err := s.client.Index(courseIndex).DeleteDocument(id); err != nil {
		return apperror.Upstream(err)
	}
	return nil
}

func (s *searchService) Search(query string, page, limit int) ([]CourseHit, int64, error) {
	page, limit = normalizePage(page, limit)

	resp, err := s.client.Index(courseIndex).Search(query, &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Offset: int64((page - 1) * limit),
	})
	if err != nil {
		return nil, 0, apperror.Upstream(err)
	}

	hits := make([]CourseHit, 0, len(resp.Hits))
	for _, raw := range resp.Hits {
		encoded, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		var hit CourseHit
		if err := json.Unmarshal(encoded, &hit); err != nil {
			continue
		}
		hits = append(hits, hit)
	}

	return hits, resp.EstimatedTotalHits, nil
}
