package handler

import (
	"net/http"
	"strconv"

	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/response"
	"acadex.dev/acadex/pkg/validator"
	"github.com/gin-gonic/gin"
)

// bindJSON binds and reports field-specific validation messages through
// the error funnel. Returns false when the request was already answered.
func bindJSON(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		response.Error(c, apperror.Validation(validator.FormatValidationError(err)))
		return false
	}
	return true
}

func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

// setSessionCookies installs both tokens as http-only cookies with
// lifetimes matching the token TTLs.
func setSessionCookies(c *gin.Context, pair *session.TokenPair, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("accessToken", pair.AccessToken, int(pair.AccessTTL.Seconds()), "/", "", secure, true)
	c.SetCookie("refreshToken", pair.RefreshToken, int(pair.RefreshTTL.Seconds()), "/", "", secure, true)
}

func clearSessionCookies(c *gin.Context, secure bool) {
	c.SetCookie("accessToken", "", -1, "/", "", secure, true)
	c.SetCookie("refreshToken", "", -1, "/", "", secure, true)
}
