package handlers

import (
	"net/http"

	"blogapi/internal/apperr"
	"blogapi/internal/middleware"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error to its status and a {message} body.
// Dependency and unknown failures are logged and answered with a generic
// message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	code := apperr.CodeOf(err)
	status := apperr.Status(code)
	l := middleware.Logger(c, log)

	if status >= http.StatusInternalServerError {
		fields := []zap.Field{zap.String("code", code), zap.Error(err)}
		for k, v := range apperr.Context(err) {
			fields = append(fields, zap.Any(k, v))
		}
		l.Error("request failed", fields...)
	} else {
		l.Debug("request rejected", zap.String("code", code), zap.String("message", apperr.PublicMessage(err)))
	}

	c.AbortWithStatusJSON(status, gin.H{"message": apperr.PublicMessage(err)})
}

// bind decodes the request into obj. On failure it answers 400 with the
// first validation message and returns false.
func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": utils.ValidationMessage(err)})
		return false
	}
	return true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
