package response

import (
	"net/http"

	"acadex.dev/acadex/pkg/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OK emits the standard success envelope. Extra payload fields are merged
// next to "success".
func OK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error is the single funnel for controller errors: every failure in the
// request path maps through the taxonomy to a status and the
// {success:false, message} shape.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		if l, ok := c.Get("logger"); ok {
			if logger, ok := l.(*zap.Logger); ok {
				logger.Error("internal error",
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
		}
	}

	c.JSON(code, gin.H{"success": false, "message": err.Error()})
}

// NoRoute handles requests that match no registered route.
func NoRoute(c *gin.Context) {
	Error(c, apperror.New(http.StatusNotFound, "404 Page Not Found", apperror.ErrNoRoute))
}
