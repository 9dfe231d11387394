package middleware

import (
	"strings"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

const userContextKey = "currentUser"

// RequireAuth validates the access token cookie and loads the cached
// session snapshot. A missing snapshot means the session expired even
// if the token still verifies.
func RequireAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("accessToken")
		if err != nil || token == "" {
			response.Error(c, apperror.Auth("please login to access this resource"))
			c.Abort()
			return
		}

		userID, err := sessions.VerifyAccess(token)
		if err != nil {
			response.Error(c, apperror.Auth("access token is not valid"))
			c.Abort()
			return
		}

		user, err := sessions.Store().Lookup(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, apperror.Upstream(err))
			c.Abort()
			return
		}
		if user == nil {
			response.Error(c, apperror.Auth("please login to access this resource"))
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated
// user holds one of the given roles. Must run after RequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, apperror.Auth("please login to access this resource"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if strings.EqualFold(user.Role, role) {
				c.Next()
				return
			}
		}
		response.Error(c, apperror.Forbidden("role "+user.Role+" is not allowed to access this resource"))
		c.Abort()
	}
}

// CurrentUser returns the authenticated user attached by RequireAuth,
// or nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}
