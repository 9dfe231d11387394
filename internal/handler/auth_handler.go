package handler

import (
	"net/http"

	"acadex.dev/acadex/internal/middleware"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth          service.AuthService
	secureCookies bool
}

func NewAuthHandler(auth service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	token, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{
		"message":          "check your email to activate your account",
		"activation_token": token,
	})
}

func (h *AuthHandler) Activate(c *gin.Context) {
	var input service.ActivationInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.auth.Activate(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	setSessionCookies(c, pair, h.secureCookies)
	response.OK(c, http.StatusOK, gin.H{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.auth.Logout(c.Request.Context(), user.ID.String()); err != nil {
		response.Error(c, err)
		return
	}

	clearSessionCookies(c, h.secureCookies)
	response.OK(c, http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Refresh runs on the refresh token cookie alone, no auth middleware.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refreshToken")
	if err != nil || refreshToken == "" {
		response.Error(c, apperror.Auth("could not refresh token"))
		return
	}

	user, pair, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	setSessionCookies(c, pair, h.secureCookies)
	response.OK(c, http.StatusOK, gin.H{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) SocialAuth(c *gin.Context) {
	var input service.SocialAuthInput
	if !bindJSON(c, &input) {
		return
	}

	user, pair, err := h.auth.SocialAuth(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	setSessionCookies(c, pair, h.secureCookies)
	response.OK(c, http.StatusOK, gin.H{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input service.ForgotPasswordInput
	if !bindJSON(c, &input) {
		return
	}

	token, err := h.auth.ForgotPassword(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"message":     "check your email for the reset code",
		"reset_token": token,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input service.ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), input); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "password updated successfully"})
}
