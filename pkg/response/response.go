package response

import (
	"net/http"

	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var log = logger.Nop()

// UseLogger sets the logger used to report internal errors.
func UseLogger(l *logger.Logger) {
	if l != nil {
		log = l
	}
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OK writes a 200 response. The body always carries "status": 200.
func OK(c *gin.Context, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["status"] = http.StatusOK
	c.JSON(http.StatusOK, body)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", code,
			"error", errorCause(err),
		)
	}

	c.JSON(code, gin.H{"status": code, "message": err.Error()})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	ResponseError(c, err)
	c.Abort()
}

func errorCause(err error) string {
	if appErr, ok := err.(*apperror.AppError); ok && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return err.Error()
}
