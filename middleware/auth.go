package middleware

import (
	"net/http"
	"strings"

	"friendzone/apperr"
	"friendzone/response"
	"friendzone/token"

	"github.com/gin-gonic/gin"
)

// CtxUserIDKey holds the authenticated user id.
const CtxUserIDKey = "userId"

// JWTAuth verifies the bearer token and stores the caller id in the
// context. A token query parameter is accepted when the header is absent,
// since browsers cannot set headers on websocket upgrades.
func JWTAuth(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			tok := c.Query("token")
			if tok == "" {
				response.Abort(c, http.StatusUnauthorized, apperr.KindAuth, "No authorization token provided")
				return
			}
			authHeader = "Bearer " + tok
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, apperr.KindAuth, "Format should be: Bearer <token>")
			return
		}

		userID, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			_ = c.Error(err)
			response.Abort(c, http.StatusUnauthorized, apperr.KindAuth, "Token validation failed")
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}
