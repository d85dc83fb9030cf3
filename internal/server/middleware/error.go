package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terrascribe/llm-api/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler converts errors attached via c.Error() into the JSON error
// envelope. Handlers return errors; this is the single place they become
// HTTP responses.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if apiErr, ok := err.(*api.Error); ok {
			if apiErr.Log != nil {
				logger.Error("request failed",
					zap.Int("status", apiErr.Code),
					zap.String("error", apiErr.Message),
					zap.Error(apiErr.Log),
				)
			}
			c.JSON(apiErr.Code, apiErr)
			c.Abort()
			return
		}

		logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError,
			api.NewError(http.StatusInternalServerError, "Internal Server Error", ""))
		c.Abort()
	}
}
