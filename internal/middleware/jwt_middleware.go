package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/drapery_api/internal/utils"
)

// JWTMiddleware authenticates staff requests with a bearer session token.
type JWTMiddleware struct {
	allowQueryToken bool
}

func NewJWTMiddleware() *JWTMiddleware {
	return &JWTMiddleware{}
}

// WithQueryToken also accepts ?token=<jwt>. EventSource cannot set headers,
// so the SSE route needs it.
func (m *JWTMiddleware) WithQueryToken() *JWTMiddleware {
	return &JWTMiddleware{allowQueryToken: true}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.Error(c, 401, "UNAUTHORIZED", "Invalid authorization header")
				c.Abort()
				return
			}
			token = parts[1]
		} else if m.allowQueryToken {
			token = c.Query("token")
		}
		if token == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("owner", claims.Owner())
		c.Set("email", claims.Email)
		c.Next()
	}
}
