package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"postboard/internal/apperr"
)

// BearerMiddleware resolves the Authorization header on every request.
// A missing header leaves the request anonymous (register and login run
// unauthenticated; per-field role checks happen in the resolvers). A
// present but invalid or expired token is rejected with 401 and a
// normalized GraphQL error body.
func BearerMiddleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthenticated(c)
			return
		}
		id, err := issuer.Validate(strings.TrimSpace(tokenStr))
		if err != nil {
			abortUnauthenticated(c)
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	norm := apperr.Normalize(apperr.New(apperr.KindUnauthenticated, "invalid or expired token")).(*apperr.Normalized)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"errors": []gin.H{{
			"message":    norm.Message,
			"extensions": norm.Extensions(),
		}},
	})
}
