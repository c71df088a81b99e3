package socket

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// SendNotification pushes a stored notification to its recipient.
func (b *Broadcaster) SendNotification(userID string, notification map[string]interface{}) {
	b.hub.SendToUser(userID, MessageNotification, notification)
}

// SendNotificationCount pushes the user's current notification counters.
func (b *Broadcaster) SendNotificationCount(userID string, total, unread int) {
	b.hub.SendToUser(userID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// EntityChanged tells every client in the company room that an entity was
// created, updated or deleted, so they can refetch. The actor is excluded.
func (b *Broadcaster) EntityChanged(companyID string, msgType MessageType, action, entityID, actorID string) {
	if companyID == "" {
		return
	}
	b.hub.SendToRoom(CompanyRoom(companyID), msgType, map[string]interface{}{
		"action":    action,
		"id":        entityID,
		"changedBy": actorID,
	}, actorID)
}
