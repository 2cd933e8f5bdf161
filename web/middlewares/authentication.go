package middlewares

import (
	"net/http"
	"strings"

	"fieldtrack.com/fieldtrack/security"
	"fieldtrack.com/fieldtrack/web/common"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "fieldtrack.session"

	ContextUserID = "userId"
	ContextClaims = "claims"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			return "", false
		}
		return cookie, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authentication requires a valid HS256 identity token, read from the
// Authorization header or the session cookie.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("authentication required"))
			return
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.Subject)
		c.Next()
	}
}

// UserID returns the authenticated caller set by Authentication.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
