package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "userID"
	sessionKey = "session"
)

// AuthMiddleware validates the bearer token, loads the caller's active
// profile and attaches their session. Any failure ends the request with 401.
func AuthMiddleware(authService service.AuthService, sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			logger.L().Warnw("[Auth] Missing or malformed Authorization header", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		userID, err := authService.GetUserIDFromToken(tokenString)
		if err != nil {
			logger.L().Warnw("[Auth] Invalid token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		profile, err := authService.CurrentUser(c.Request.Context(), userID)
		if err != nil {
			sessions.Drop(userID)
			logger.L().Warnw("[Auth] Profile unavailable", "userID", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		sess := sessions.Get(userID)
		sess.SetViewer(profile)
		sess.Touch(time.Now())

		c.Set(userIDKey, userID)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireRole rejects callers whose role is not listed with 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := GetSession(c).Viewer()
		if viewer == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		for _, r := range roles {
			if viewer.Role == r {
				c.Next()
				return
			}
		}
		logger.L().Warnw("[Auth] Role rejected", "userID", viewer.ID, "role", viewer.Role, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	}
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RequireUserID writes 401 when no user is attached to the request.
func RequireUserID(c *gin.Context) (string, bool) {
	userID := GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return userID, true
}

// GetSession returns the caller's session, or nil on public routes.
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
