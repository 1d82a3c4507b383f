package chat

import (
	"time"

	"connect-chat/internal/models"
)

// Session is the live state of one connected, joined user. Sessions
// are owned exclusively by the registry; rooms hold only projections.
type Session struct {
	ConnID     string
	Username   string
	Room       string
	Status     models.Status
	Avatar     models.Avatar
	LastActive time.Time
}

func (s *Session) projection() models.RoomUser {
	return models.RoomUser{Username: s.Username, Avatar: s.Avatar, Status: s.Status}
}

// registry is the single source of truth for presence, keyed by
// connection ID. Not safe for concurrent use; the coordinator
// serializes access.
type registry struct {
	sessions map[string]*Session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*Session)}
}

func (r *registry) byConn(connID string) (*Session, bool) {
	s, ok := r.sessions[connID]
	return s, ok
}

// byUsername finds the session currently holding the username.
// Usernames are not strictly unique; last join wins, so at most one
// session per username is ever tracked.
func (r *registry) byUsername(username string) (*Session, bool) {
	for _, s := range r.sessions {
		if s.Username == username {
			return s, true
		}
	}
	return nil, false
}

func (r *registry) put(s *Session) {
	r.sessions[s.ConnID] = s
}

func (r *registry) remove(connID string) {
	delete(r.sessions, connID)
}

func (r *registry) len() int { return len(r.sessions) }

// idle returns sessions in the given status whose last activity is
// older than the threshold.
func (r *registry) idle(status models.Status, threshold time.Duration, now time.Time) []*Session {
	var out []*Session
	for _, s := range r.sessions {
		if s.Status == status && now.Sub(s.LastActive) > threshold {
			out = append(out, s)
		}
	}
	return out
}
