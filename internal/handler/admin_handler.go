package handler

import (
	"net/http"

	"acadex.dev/acadex/internal/middleware"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admin service.AdminService
}

func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := pageQuery(c)

	users, total, err := h.admin.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) ListUsersByRole(c *gin.Context) {
	page, limit := pageQuery(c)

	users, total, err := h.admin.ListUsersByRole(c.Request.Context(), c.Param("role"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) Block(c *gin.Context) {
	var input service.BlockInput
	if !bindJSON(c, &input) {
		return
	}

	deleted, err := h.admin.Block(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "user blocked successfully"
	if deleted {
		message = "user reached the block limit and was deleted"
	}
	response.OK(c, http.StatusOK, gin.H{"message": message})
}

func (h *AdminHandler) Unblock(c *gin.Context) {
	if err := h.admin.Unblock(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "user unblocked successfully"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "user deleted successfully"})
}

func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var input service.UpdateRoleInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.admin.UpdateRole(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	if err := h.admin.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "reset instructions sent"})
}
