package handler

import (
	"net/http"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

type LayoutHandler struct {
	layouts service.LayoutService
}

func NewLayoutHandler(layouts service.LayoutService) *LayoutHandler {
	return &LayoutHandler{layouts: layouts}
}

func (h *LayoutHandler) Create(c *gin.Context) {
	var input service.LayoutInput
	if !bindJSON(c, &input) {
		return
	}

	layout, err := h.layouts.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"layout": layout})
}

func (h *LayoutHandler) Add(c *gin.Context) {
	var input service.LayoutInput
	if !bindJSON(c, &input) {
		return
	}

	layout, err := h.layouts.Add(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"layout": layout})
}

func (h *LayoutHandler) Edit(c *gin.Context) {
	var input service.LayoutInput
	if !bindJSON(c, &input) {
		return
	}

	layout, err := h.layouts.Edit(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"layout": layout})
}

func (h *LayoutHandler) Delete(c *gin.Context) {
	var input service.DeleteLayoutInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.layouts.Delete(c.Request.Context(), input); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "layout entries deleted"})
}

func (h *LayoutHandler) Get(c *gin.Context) {
	layoutType := c.Query("type")
	if layoutType == "" {
		response.Error(c, apperror.Validation("layout type is required"))
		return
	}

	if layoutType == model.SelectAll {
		layouts, err := h.layouts.GetAll(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"layouts": layouts})
		return
	}

	layout, err := h.layouts.Get(c.Request.Context(), layoutType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"layout": layout})
}
