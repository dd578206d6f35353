// Package middleware contains gin middleware shared across routes.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/Vijayy-ai/EduTube/internal/observability"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"github.com/gin-gonic/gin"
)

// Recovery converts panics into structured AppError responses
func Recovery(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic recovered: %v", r)
				logger.Error(c.Request.Context(), "Handler panicked", err, map[string]interface{}{
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})

				appErr := contextutils.NewAppError(
					contextutils.ErrorCodeInternalError,
					contextutils.SeverityError,
					"Internal server error",
					"",
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, appErr.ToJSON())
			}
		}()
		c.Next()
	}
}
