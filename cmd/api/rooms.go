package main

import (
	"context"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
)

type profileFinder interface {
	FindByID(ctx context.Context, id string) (*repository.Profile, error)
}

// companyRoomPolicy lets a user join their own room and the room of their
// company. Admins may join any company room.
func companyRoomPolicy(sessions *session.Registry, profiles profileFinder) socket.RoomPolicy {
	return func(userID, room string) bool {
		if room == socket.UserRoom(userID) {
			return true
		}
		companyID, ok := strings.CutPrefix(room, socket.CompanyRoom(""))
		if !ok || companyID == "" {
			return false
		}

		var viewer *repository.Profile
		if sess, ok := sessions.Lookup(userID); ok {
			viewer = sess.Viewer()
		}
		if viewer == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			p, err := profiles.FindByID(ctx, userID)
			if err != nil || p == nil {
				return false
			}
			viewer = p
		}
		if !viewer.IsActive() {
			return false
		}
		return viewer.IsAdmin() || viewer.Company() == companyID
	}
}
