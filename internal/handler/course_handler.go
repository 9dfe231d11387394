package handler

import (
	"net/http"

	"acadex.dev/acadex/internal/middleware"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courses service.CourseService
	search  service.SearchService
}

func NewCourseHandler(courses service.CourseService, search service.SearchService) *CourseHandler {
	return &CourseHandler{
		courses: courses,
		search:  search,
	}
}

func (h *CourseHandler) Upload(c *gin.Context) {
	var input service.CreateCourseInput
	if !bindJSON(c, &input) {
		return
	}

	course, err := h.courses.Create(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"course": course})
}

func (h *CourseHandler) Update(c *gin.Context) {
	var input service.UpdateCourseInput
	if !bindJSON(c, &input) {
		return
	}

	course, err := h.courses.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	var input service.DeleteCourseInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.courses.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "course deleted successfully"})
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandler) GetAll(c *gin.Context) {
	courses, err := h.courses.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) GetContent(c *gin.Context) {
	content, err := h.courses.GetContent(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"content": content})
}

func (h *CourseHandler) AddQuestion(c *gin.Context) {
	var input service.AddQuestionInput
	if !bindJSON(c, &input) {
		return
	}

	question, err := h.courses.AddQuestion(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"question": question})
}

func (h *CourseHandler) AddAnswer(c *gin.Context) {
	var input service.AddAnswerInput
	if !bindJSON(c, &input) {
		return
	}

	answer, err := h.courses.AddAnswer(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"answer": answer})
}

func (h *CourseHandler) AddReview(c *gin.Context) {
	var input service.AddReviewInput
	if !bindJSON(c, &input) {
		return
	}

	course, err := h.courses.AddReview(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"course": course})
}

func (h *CourseHandler) AddReviewReply(c *gin.Context) {
	var input service.AddReviewReplyInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.courses.AddReviewReply(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"review": review})
}

func (h *CourseHandler) Search(c *gin.Context) {
	page, limit := pageQuery(c)

	hits, total, err := h.search.Search(c.Query("q"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"courses": hits, "total": total})
}
