package socket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, userID string) *Client {
	return &Client{ID: userID + "-conn", UserID: userID, Hub: h, Send: make(chan []byte, 8), Rooms: map[string]bool{}}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func TestHubDeliversToUserAndRoom(t *testing.T) {
	h := NewHub(func(userID, room string) bool {
		return room == UserRoom(userID) || room == CompanyRoom("co1")
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	alice := newTestClient(h, "alice")
	bob := newTestClient(h, "bob")
	h.register <- alice
	h.register <- bob

	require.True(t, h.JoinRoom(alice, CompanyRoom("co1")))
	require.True(t, h.JoinRoom(bob, CompanyRoom("co1")))
	assert.False(t, h.JoinRoom(bob, CompanyRoom("co2")))

	NewBroadcaster(h).SendNotification("alice", map[string]interface{}{"title": "hi"})
	msg := receive(t, alice)
	assert.Equal(t, MessageNotification, msg.Type)
	assert.Equal(t, "hi", msg.Payload["title"])

	NewBroadcaster(h).SendNotificationCount("alice", 4, 1)
	msg = receive(t, alice)
	assert.Equal(t, MessageNotificationCount, msg.Type)
	assert.Equal(t, float64(1), msg.Payload["unread"])

	NewBroadcaster(h).EntityChanged("co1", MessageProjectChanged, "updated", "p1", "alice")
	msg = receive(t, bob)
	assert.Equal(t, MessageProjectChanged, msg.Type)
	assert.Equal(t, "p1", msg.Payload["id"])

	select {
	case <-alice.Send:
		t.Fatal("actor should be excluded")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDefaultPolicyOnlyOwnRoom(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(h, "u1")
	assert.True(t, h.JoinRoom(c, UserRoom("u1")))
	assert.False(t, h.JoinRoom(c, UserRoom("u2")))
	assert.Equal(t, 1, h.GetRoomClients(UserRoom("u1")))
}
