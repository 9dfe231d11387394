package handler

import (
	"net/http"

	"acadex.dev/acadex/internal/middleware"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users         service.UserService
	secureCookies bool
}

func NewUserHandler(users service.UserService, secureCookies bool) *UserHandler {
	return &UserHandler{
		users:         users,
		secureCookies: secureCookies,
	}
}

// Me serves the session snapshot attached by the auth middleware.
func (h *UserHandler) Me(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateInfo(c *gin.Context) {
	var input service.UpdateInfoInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.users.UpdateInfo(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var input service.UpdatePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), middleware.CurrentUser(c), input); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "password updated successfully"})
}

func (h *UserHandler) UpdateEmail(c *gin.Context) {
	var input service.UpdateEmailInput
	if !bindJSON(c, &input) {
		return
	}

	token, err := h.users.RequestEmailChange(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"message":          "check your new email for the activation code",
		"activation_token": token,
	})
}

func (h *UserHandler) ConfirmEmail(c *gin.Context) {
	var input service.ConfirmEmailInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.users.ConfirmEmailChange(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	var input service.UpdateImageInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateBackground(c *gin.Context) {
	var input service.UpdateImageInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.users.UpdateBackground(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.users.DeleteAccount(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		response.Error(c, err)
		return
	}

	clearSessionCookies(c, h.secureCookies)
	response.OK(c, http.StatusOK, gin.H{"message": "account deleted successfully"})
}
