package chat

import (
	"time"

	"connect-chat/internal/models"
)

// DefaultRoom is created at startup and used when a joiner names no room.
const DefaultRoom = "general"

// Room owns one channel's bounded message log, its pinned subset and
// the projections of currently connected members (keyed by connection ID).
type Room struct {
	name         string
	log          *ring
	pinned       []models.Message
	users        map[string]models.RoomUser
	createdAt    time.Time
	messageCount int
}

func newRoom(name string, historyLimit int) *Room {
	return &Room{
		name:      name,
		log:       newRing(historyLimit),
		users:     make(map[string]models.RoomUser),
		createdAt: time.Now(),
	}
}

// appendMessage adds m to the log. When the log is at capacity the
// oldest entry is evicted, and an evicted entry that was pinned is
// dropped from the pinned set too so no orphan reference survives.
func (r *Room) appendMessage(m models.Message) (evicted models.Message, ok bool) {
	old, wasFull := r.log.append(m)
	r.messageCount++
	if wasFull {
		r.unpin(old.ID)
	}
	return old, wasFull
}

// deleteMessage removes id from the log and the pinned set. The second
// return reports whether the message was pinned at the time.
func (r *Room) deleteMessage(id string) (deleted, wasPinned bool) {
	if !r.log.remove(id) {
		return false, false
	}
	return true, r.unpin(id)
}

func (r *Room) isPinned(id string) bool {
	for _, m := range r.pinned {
		if m.ID == id {
			return true
		}
	}
	return false
}

// pin appends the pinned entry and enforces the pin capacity, dropping
// the oldest pin. The log entry itself is untouched by pin eviction.
func (r *Room) pin(m models.Message, limit int) (dropped models.Message, ok bool) {
	r.pinned = append(r.pinned, m)
	if limit > 0 && len(r.pinned) > limit {
		dropped = r.pinned[0]
		r.pinned = append(r.pinned[:0], r.pinned[1:]...)
		return dropped, true
	}
	return models.Message{}, false
}

func (r *Room) unpin(id string) bool {
	for i, m := range r.pinned {
		if m.ID == id {
			r.pinned = append(r.pinned[:i], r.pinned[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) pinnedMessages() []models.Message {
	out := make([]models.Message, len(r.pinned))
	copy(out, r.pinned)
	return out
}

func (r *Room) members() []models.RoomUser {
	out := make([]models.RoomUser, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

// roomStore maps room names to rooms. Rooms are created lazily on
// first join and never deleted for the life of the process.
type roomStore struct {
	rooms        map[string]*Room
	historyLimit int
}

func newRoomStore(historyLimit int) *roomStore {
	return &roomStore{
		rooms:        make(map[string]*Room),
		historyLimit: historyLimit,
	}
}

func (s *roomStore) get(name string) (*Room, bool) {
	r, ok := s.rooms[name]
	return r, ok
}

// ensure returns the named room, creating it if absent. The second
// return reports whether this call created it.
func (s *roomStore) ensure(name string) (*Room, bool) {
	if r, ok := s.rooms[name]; ok {
		return r, false
	}
	r := newRoom(name, s.historyLimit)
	s.rooms[name] = r
	return r, true
}

func (s *roomStore) infos() []models.RoomInfo {
	out := make([]models.RoomInfo, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, models.RoomInfo{
			Name:         r.name,
			CreatedAt:    r.createdAt,
			UserCount:    len(r.users),
			MessageCount: r.messageCount,
		})
	}
	return out
}
