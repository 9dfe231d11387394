package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/session"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	sessions := session.NewManager(session.NewMemoryStore(), "access-secret", "refresh-secret", 5, 3)

	router := gin.New()
	router.GET("/me", RequireAuth(sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	router.GET("/admin", RequireAuth(sessions), RequireRoles(model.RoleAdmin, model.RoleOwner), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, sessions
}

func loginAs(t *testing.T, sessions *session.Manager, role string) (*model.User, *session.TokenPair) {
	t.Helper()

	user := &model.User{ID: uuid.New(), Email: "gate@example.com", FirstName: "Gate", Role: role}
	pair, err := sessions.Issue(context.Background(), user)
	assert.NoError(t, err)
	return user, pair
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthAllowsActiveSession(t *testing.T) {
	router, sessions := newAuthRouter(t)
	_, pair := loginAs(t, sessions, model.RoleUser)

	rec := get(router, "/me", pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gate@example.com")
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := get(router, "/me", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := get(router, "/me", "garbage")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A verifiable token is not enough once the session snapshot is gone.
func TestRequireAuthRejectsEndedSession(t *testing.T) {
	router, sessions := newAuthRouter(t)
	user, pair := loginAs(t, sessions, model.RoleUser)

	assert.NoError(t, sessions.Store().Delete(context.Background(), user.ID.String()))

	rec := get(router, "/me", pair.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	router, sessions := newAuthRouter(t)

	_, userPair := loginAs(t, sessions, model.RoleUser)
	rec := get(router, "/admin", userPair.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, adminPair := loginAs(t, sessions, model.RoleAdmin)
	rec = get(router, "/admin", adminPair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}
