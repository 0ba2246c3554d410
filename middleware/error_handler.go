package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/apperrors"
)

const msgInternal = "Internal Server Error"

// ErrorHandler renders the last error attached to the context as
// {"message": ...}. Outside production the cause is added under "error".
func ErrorHandler(logger *slog.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status, message := http.StatusInternalServerError, msgInternal
		var maxErr *http.MaxBytesError
		if appErr, ok := apperrors.As(err); ok {
			status, message = appErr.Status(), appErr.Message
		} else if errors.As(err, &maxErr) {
			status, message = http.StatusRequestEntityTooLarge, "Request body too large"
		}

		attrs := []any{"status", status, "path", c.Request.URL.Path, "error", err.Error()}
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(c.Request.Context(), message, attrs...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(c.Request.Context(), message, attrs...)
		}

		if c.Writer.Written() {
			return
		}
		body := gin.H{"message": message}
		if !production {
			body["error"] = err.Error()
		}
		c.JSON(status, body)
	}
}

// Recovery turns a panic into the same 500 body the error handler writes.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
	})
}

// BodyLimit caps request bodies at n bytes.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
