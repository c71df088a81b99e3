// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/gorilla/websocket"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageNotification      MessageType = "notification"
	MessageNotificationCount MessageType = "notification_count"

	// Entity change messages. Clients refetch the named collection.
	MessageProjectChanged    MessageType = "project_changed"
	MessageIssueChanged      MessageType = "issue_changed"
	MessageTeamMemberChanged MessageType = "team_member_changed"
	MessageClientChanged     MessageType = "client_changed"
	MessageCompanyChanged    MessageType = "company_changed"
	MessagePricingChanged    MessageType = "pricing_changed"

	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
	MessageAck  MessageType = "ack"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	UserID   string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Rooms    map[string]bool
	mu       sync.Mutex
	lastPing time.Time
}

// RoomPolicy reports whether userID may subscribe to room.
type RoomPolicy func(userID, room string) bool

// Hub maintains the set of active clients and routes messages to users and rooms.
type Hub struct {
	clients     map[*Client]bool
	userClients map[string]map[*Client]bool
	roomClients map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	roomBroadcast chan *RoomMessage
	directMessage chan *DirectMessage

	policy RoomPolicy

	mu sync.RWMutex
}

// RoomMessage represents a message to be sent to a specific room
type RoomMessage struct {
	Room    string
	Message []byte
	Exclude string // User ID to exclude from broadcast
}

// DirectMessage represents a message to be sent to a specific user
type DirectMessage struct {
	UserID  string
	Message []byte
}

// NewHub creates a new Hub. A nil policy only allows a user's own room.
func NewHub(policy RoomPolicy) *Hub {
	if policy == nil {
		policy = func(userID, room string) bool { return room == UserRoom(userID) }
	}
	return &Hub{
		clients:       make(map[*Client]bool),
		userClients:   make(map[string]map[*Client]bool),
		roomClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		roomBroadcast: make(chan *RoomMessage, 256),
		directMessage: make(chan *DirectMessage, 256),
		policy:        policy,
	}
}

func UserRoom(userID string) string       { return "user:" + userID }
func CompanyRoom(companyID string) string { return "company:" + companyID }

// Run routes messages until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	logger.L().Info("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			logger.L().Info("[Hub] WebSocket hub stopped")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)

		case dm := <-h.directMessage:
			h.sendToUser(dm)

		case <-pingTicker.C:
			h.pingClients()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]bool)
	}
	h.userClients[client.UserID][client] = true

	logger.L().Debugw("[Hub] Client registered", "user", client.UserID, "client", client.ID, "total", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	if clients, ok := h.userClients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	client.mu.Lock()
	for room := range client.Rooms {
		if clients, ok := h.roomClients[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.roomClients, room)
			}
		}
	}
	client.mu.Unlock()

	close(client.Send)
	logger.L().Debugw("[Hub] Client disconnected", "user", client.UserID, "client", client.ID, "total", len(h.clients))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]bool)
	h.userClients = make(map[string]map[*Client]bool)
	h.roomClients = make(map[string]map[*Client]bool)
}

// deliver queues data on c, dropping the client when its buffer is full.
func (h *Hub) deliver(c *Client, data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		go func() { h.unregister <- c }()
		return false
	}
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.roomClients[rm.Room] {
		if rm.Exclude != "" && client.UserID == rm.Exclude {
			continue
		}
		h.deliver(client, rm.Message)
	}
}

func (h *Hub) sendToUser(dm *DirectMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userClients[dm.UserID] {
		h.deliver(client, dm.Message)
	}
}

func (h *Hub) pingClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})
	for client := range h.clients {
		h.deliver(client, data)
	}
}

// JoinRoom adds a client to a room if the policy allows it.
func (h *Hub) JoinRoom(client *Client, room string) bool {
	if !h.policy(client.UserID, room) {
		logger.L().Warnw("[Hub] Room join refused", "user", client.UserID, "room", room)
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	client.Rooms[room] = true
	client.mu.Unlock()

	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true
	return true
}

// LeaveRoom removes a client from a room
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.Rooms, room)
	client.mu.Unlock()

	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}
}

// SendToUser queues a message for every connection of userID. It never
// blocks: when the queue is full the message is dropped.
func (h *Hub) SendToUser(userID string, msgType MessageType, payload map[string]interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		logger.L().Errorw("[Hub] Error marshaling message", "error", err)
		return
	}
	select {
	case h.directMessage <- &DirectMessage{UserID: userID, Message: data}:
	default:
		logger.L().Warnw("[Hub] Direct queue full, message dropped", "user", userID, "type", msgType)
	}
}

// SendToRoom queues a message for every client in room except excludeUserID.
func (h *Hub) SendToRoom(room string, msgType MessageType, payload map[string]interface{}, excludeUserID string) {
	data, err := encode(msgType, payload)
	if err != nil {
		logger.L().Errorw("[Hub] Error marshaling message", "error", err)
		return
	}
	select {
	case h.roomBroadcast <- &RoomMessage{Room: room, Message: data, Exclude: excludeUserID}:
	default:
		logger.L().Warnw("[Hub] Room queue full, message dropped", "room", room, "type", msgType)
	}
}

func encode(msgType MessageType, payload map[string]interface{}) ([]byte, error) {
	return json.Marshal(Message{Type: msgType, Payload: payload, Timestamp: time.Now()})
}

func (h *Hub) GetRoomClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.roomClients[room])
}

func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
