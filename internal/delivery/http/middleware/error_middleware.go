package middleware

import (
	"errors"
	"net/http"

	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/logger"
	"go-hiring-pipeline/pkg/security"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Internal causes are logged and never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.FromContext(c.Request.Context())

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		code := http.StatusInternalServerError
		message := "An unexpected error occurred. Please try again later."
		if appErr != nil && appErr.Code != http.StatusInternalServerError {
			// 503 and friends carry a message meant for the client
			code, message = appErr.Code, appErr.Message
		}

		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", code,
			"error", err,
		)
		if code == http.StatusInternalServerError {
			security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
				Event:       security.EventServerError,
				SubjectType: "system",
				IP:          c.ClientIP(),
				RequestID:   c.GetString(RequestIDKey),
				Details:     map[string]interface{}{"path": c.FullPath()},
			})
		}
		response.Error(c, code, message, nil)
	}
}
