// Package session keeps the per-user working set: the signed-in profile and
// the cached entity collections the services read and patch.
package session

import (
	"sync"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/cache"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
)

type Session struct {
	UserID string

	mu       sync.RWMutex
	viewer   *repository.Profile
	lastSeen time.Time

	Projects      *cache.Collection[*repository.Project]
	TeamMembers   *cache.Collection[*repository.TeamMember]
	Issues        *cache.Collection[*repository.Issue]
	Clients       *cache.Collection[*repository.Client]
	Notifications *cache.Collection[*repository.Notification]
	History       *cache.Collection[*repository.ProjectHistory]
	Companies     *cache.Collection[*repository.Company]
	Pricing       *cache.Collection[*repository.PricingRequest]
	Users         *cache.Collection[*repository.Profile]
}

func New(userID string) *Session {
	return &Session{
		UserID:        userID,
		lastSeen:      time.Now(),
		Projects:      cache.NewCollection(func(p *repository.Project) string { return p.ID }),
		TeamMembers:   cache.NewCollection(func(m *repository.TeamMember) string { return m.ID }),
		Issues:        cache.NewCollection(func(i *repository.Issue) string { return i.ID }),
		Clients:       cache.NewCollection(func(c *repository.Client) string { return c.ID }),
		Notifications: cache.NewCollection(func(n *repository.Notification) string { return n.ID }),
		History:       cache.NewCollection(func(h *repository.ProjectHistory) string { return h.ID }),
		Companies:     cache.NewCollection(func(c *repository.Company) string { return c.ID }),
		Pricing:       cache.NewCollection(func(r *repository.PricingRequest) string { return r.ID }),
		Users:         cache.NewCollection(func(p *repository.Profile) string { return p.ID }),
	}
}

// Viewer returns the signed-in profile, or nil before sign-in completes.
func (s *Session) Viewer() *repository.Profile {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer
}

func (s *Session) SetViewer(p *repository.Profile) {
	s.mu.Lock()
	s.viewer = p
	s.mu.Unlock()
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Reset drops the viewer and every cached collection.
func (s *Session) Reset() {
	s.SetViewer(nil)
	s.Projects.Clear()
	s.TeamMembers.Clear()
	s.Issues.Clear()
	s.Clients.Clear()
	s.Notifications.Clear()
	s.History.Clear()
	s.Companies.Clear()
	s.Pricing.Clear()
	s.Users.Clear()
}

// Registry maps user ids to their sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for userID, creating it on first use.
func (r *Registry) Get(userID string) *Session {
	r.mu.RLock()
	s, ok := r.sessions[userID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.sessions[userID]; ok {
		return s
	}
	s = New(userID)
	r.sessions[userID] = s
	return s
}

// Lookup returns the session for userID without creating one.
func (r *Registry) Lookup(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Drop forgets userID's session and clears its state.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if ok {
		s.Reset()
	}
}

// Prune drops sessions not seen since now-idle and returns how many it dropped.
func (r *Registry) Prune(now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Reset()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
