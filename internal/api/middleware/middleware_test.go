package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth implements the two AuthService methods the middleware calls.
type stubAuth struct {
	service.AuthService
	profiles map[string]*repository.Profile
}

func (s *stubAuth) GetUserIDFromToken(token string) (string, error) {
	if token == "bad" {
		return "", service.ErrInvalidToken
	}
	return token, nil
}

func (s *stubAuth) CurrentUser(_ context.Context, userID string) (*repository.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, service.ErrUnauthorized
	}
	return p, nil
}

func newAuthRouter(auth service.AuthService, sessions *session.Registry, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(auth, sessions)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		sess := GetSession(c)
		c.JSON(http.StatusOK, gin.H{"userID": GetUserID(c), "role": sess.Viewer().Role})
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	auth := &stubAuth{profiles: map[string]*repository.Profile{
		"u1": {ID: "u1", Role: types.RoleCompany, Status: types.ProfileActive},
	}}
	sessions := session.NewRegistry()
	r := newAuthRouter(auth, sessions)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "bad").Code)
	})

	t.Run("unknown profile fails closed", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "ghost").Code)
		_, ok := sessions.Lookup("ghost")
		assert.False(t, ok)
	})

	t.Run("valid token attaches session", func(t *testing.T) {
		w := get(r, "u1")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"userID":"u1"`)

		sess, ok := sessions.Lookup("u1")
		require.True(t, ok)
		assert.Equal(t, "u1", sess.Viewer().ID)
	})
}

func TestRequireRole(t *testing.T) {
	auth := &stubAuth{profiles: map[string]*repository.Profile{
		"admin":  {ID: "admin", Role: types.RoleAdmin, Status: types.ProfileActive},
		"client": {ID: "client", Role: types.RoleClient, Status: types.ProfileActive},
	}}
	r := newAuthRouter(auth, session.NewRegistry(), RequireRole(types.RoleAdmin))

	assert.Equal(t, http.StatusOK, get(r, "admin").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "client").Code)
}

func TestRequireUserID(t *testing.T) {
	r := gin.New()
	r.GET("/me", func(c *gin.Context) {
		if _, ok := RequireUserID(c); !ok {
			return
		}
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
}

func TestRateLimiterWithoutRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/me", NewRateLimiter(nil, 1).Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "").Code)
	}
}

func TestRequestLoggerRecordsErrors(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/me", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})
	assert.Equal(t, http.StatusInternalServerError, get(r, "").Code)
}
