// internal/socket/handler.go
package socket

import (
	"net/http"
	"strings"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenValidator resolves an access token to a user id.
type TokenValidator interface {
	GetUserIDFromToken(token string) (string, error)
}

// Handler upgrades authenticated requests to WebSocket connections.
type Handler struct {
	Hub      *Hub
	tokens   TokenValidator
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler. An empty allowedOrigins accepts any origin.
func NewHandler(hub *Hub, tokens TokenValidator, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		Hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket reads the token from the query string because the browser
// WebSocket API cannot set headers; the Authorization header is a fallback.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	userID, err := h.tokens.GetUserIDFromToken(tokenString)
	if err != nil || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L().Warnw("[WebSocket] Upgrade error", "error", err)
		return
	}

	client := NewClient(h.Hub, userID, conn)
	h.Hub.register <- client
	h.Hub.JoinRoom(client, UserRoom(userID))

	go client.WritePump()
	go client.ReadPump()
}
