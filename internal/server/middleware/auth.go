package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/terrascribe/llm-api/internal/identity"
	"github.com/terrascribe/llm-api/pkg/api"
)

// Auth resolves the Bearer token against the identity collaborator and
// stores the verified user on the request context. Any failure short-
// circuits with the 401 envelope before a vendor call can happen.
func Auth(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				api.UnauthorizedError("Missing Authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				api.UnauthorizedError("Invalid Authorization header format"))
			return
		}

		user, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			details := "Invalid or expired session"
			if !errors.Is(err, identity.ErrUnauthorized) {
				details = "Identity service unavailable"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.UnauthorizedError(details))
			return
		}

		c.Request = c.Request.WithContext(identity.NewContext(c.Request.Context(), user))
		c.Next()
	}
}
