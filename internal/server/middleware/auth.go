package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/tenanthub/internal/authz"
	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/server/biz"
)

// WithJWTAuth authenticates the request with a bearer JWT and installs the
// user and its principal into the request context.
func WithJWTAuth(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractTokenFromRequest(c.Request, &TokenConfig{
			Headers:       []string{"Authorization"},
			RequireBearer: true,
		})
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		user, err := auth.AuthenticateJWTToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, biz.ErrInvalidJWT) {
				AbortWithError(c, http.StatusUnauthorized, errors.New("invalid token"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("failed to validate token"))
			}

			return
		}

		ctx := contexts.WithUser(c.Request.Context(), user)
		ctx = authz.NewUserContext(ctx, user.ID)

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
