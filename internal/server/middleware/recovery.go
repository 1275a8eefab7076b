package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/objects"
)

// Recovery recovers from handler panics, logs the stack and responds with a
// JSON 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered",
					log.Any("panic", r),
					log.String("path", c.Request.URL.Path),
					log.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, objects.ErrorResponse{
					Error: objects.Error{
						Type:    http.StatusText(http.StatusInternalServerError),
						Message: "internal server error",
					},
				})
			}
		}()

		c.Next()
	}
}
