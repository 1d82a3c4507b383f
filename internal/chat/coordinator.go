package chat

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"connect-chat/internal/metrics"
	"connect-chat/internal/models"
	"connect-chat/pkg/logger"
)

const maxUsernameLen = 20

// Options tunes the coordinator. Zero values fall back to the
// defaults below.
type Options struct {
	HistoryLimit       int
	JoinHistoryLimit   int
	PinLimit           int
	NotifySelfMentions bool
	SendRateRPS        float64
	SendRateBurst      int
}

// Coordinator owns all room and session state behind a single mutex.
// Every client event and every janitor tick is applied as one
// lock-held transition; nothing inside a transition blocks on I/O, so
// acknowledgments are plain return values and fan-out goes through
// non-blocking per-connection buffers.
type Coordinator struct {
	mu       sync.Mutex
	rooms    *roomStore
	sessions *registry
	conns    map[string]Conn
	limiters *limiterPool

	joinHistoryLimit   int
	pinLimit           int
	notifySelfMentions bool
	lastStamp          int64
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 200
	}
	if opts.JoinHistoryLimit <= 0 {
		opts.JoinHistoryLimit = 100
	}
	if opts.PinLimit <= 0 {
		opts.PinLimit = 10
	}

	c := &Coordinator{
		rooms:              newRoomStore(opts.HistoryLimit),
		sessions:           newRegistry(),
		conns:              make(map[string]Conn),
		limiters:           newLimiterPool(opts.SendRateRPS, opts.SendRateBurst),
		joinHistoryLimit:   opts.JoinHistoryLimit,
		pinLimit:           opts.PinLimit,
		notifySelfMentions: opts.NotifySelfMentions,
	}
	c.rooms.ensure(DefaultRoom)
	return c
}

// Join registers conn under username in roomName, creating the room if
// needed. A join under a username that already has a session is a
// reconnection: the old session is replaced, its avatar color is kept,
// and the previous room is told the user is back. The room snapshot
// goes to the joiner only; everyone else sees a join notice and a
// fresh presence list.
func (c *Coordinator) Join(conn Conn, username, roomName string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrUsernameRequired
	}
	if len([]rune(username)) > maxUsernameLen {
		return ErrUsernameTooLong
	}
	if roomName == "" {
		roomName = DefaultRoom
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.conns[conn.ID()] = conn

	room, created := c.rooms.ensure(roomName)
	if created {
		metrics.RoomsCreated.Inc()
		c.broadcastAll(models.EventRoomCreated, models.RoomCreatedPayload{Room: roomName})
	}

	avatar := avatarFor(username)
	reconnected := false
	var prevRoomName string
	if prev, ok := c.sessions.byUsername(username); ok && prev.ConnID != conn.ID() {
		// Last join wins: keep the avatar color, drop the stale session.
		avatar = prev.Avatar
		reconnected = true
		prevRoomName = prev.Room
		c.dropConnection(prev.ConnID)
	}
	if prev, ok := c.sessions.byConn(conn.ID()); ok {
		// Same connection joining again (room switch or rename).
		c.removeMembership(prev)
		c.sessions.remove(conn.ID())
	}

	sess := &Session{
		ConnID:     conn.ID(),
		Username:   username,
		Room:       roomName,
		Status:     models.StatusOnline,
		Avatar:     avatar,
		LastActive: time.Now(),
	}
	c.sessions.put(sess)
	room.users[sess.ConnID] = sess.projection()
	metrics.ConnectedSessions.Set(float64(c.sessions.len()))

	c.sendTo(sess.ConnID, models.EventRoomData, models.RoomData{
		Messages: room.log.last(c.joinHistoryLimit),
		Pinned:   room.pinnedMessages(),
		Users:    room.members(),
		Room:     roomName,
	})

	if reconnected {
		if prevRoom, ok := c.rooms.get(prevRoomName); ok {
			c.announce(prevRoom, fmt.Sprintf("%s has reconnected", username))
			c.broadcastRoomUsers(prevRoom)
		}
	}
	c.announce(room, fmt.Sprintf("%s joined %s", username, roomName))
	c.broadcastRoomUsers(room)

	logger.Info("user %s joined room %s (conn %s)", username, roomName, conn.ID())
	return nil
}

// Leave handles an explicit leave or a closed connection. Idempotent.
// The session record is kept, marked offline, so a later rejoin is
// recognized as a reconnection; the janitor removes it once it has
// idled past the eviction threshold.
func (c *Coordinator) Leave(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.conns, connID)
	c.limiters.drop(connID)

	sess, ok := c.sessions.byConn(connID)
	if !ok {
		return
	}
	sess.Status = models.StatusOffline
	sess.LastActive = time.Now()
	c.removeMembership(sess)

	if room, ok := c.rooms.get(sess.Room); ok {
		c.announce(room, fmt.Sprintf("%s left %s", sess.Username, sess.Room))
		c.broadcastRoomUsers(room)
	}
	logger.Info("user %s left room %s (conn %s)", sess.Username, sess.Room, connID)
}

// SetStatus updates the session status and fans the new presence list
// out to the room.
func (c *Coordinator) SetStatus(connID, status string) error {
	st := models.Status(status)
	if !st.Valid() {
		return ErrUnknownStatus
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions.byConn(connID)
	if !ok {
		return ErrNoSession
	}
	sess.Status = st
	sess.LastActive = time.Now()

	if room, ok := c.rooms.get(sess.Room); ok {
		if _, member := room.users[connID]; member {
			room.users[connID] = sess.projection()
		}
		c.broadcastRoomUsers(room)
	}
	return nil
}

// Send validates, stamps and appends a user message, broadcasts it to
// the room and privately notifies mentioned members.
func (c *Coordinator) Send(connID, body, threadID string) (models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions.byConn(connID)
	if !ok {
		return models.Message{}, ErrNoSession
	}
	if !c.limiters.allow(connID) {
		metrics.SendsRateLimited.Inc()
		return models.Message{}, ErrRateLimited
	}
	body, err := validateBody(body)
	if err != nil {
		return models.Message{}, err
	}
	room, ok := c.rooms.get(sess.Room)
	if !ok {
		return models.Message{}, ErrNoSession
	}

	msg := c.newUserMessage(sess, body, threadID)
	sess.LastActive = time.Now()
	room.appendMessage(msg)
	metrics.MessagesTotal.Inc()

	c.broadcastToRoom(room, models.EventReceiveMessage, msg)
	c.notifyMentions(msg, room)
	return msg, nil
}

// Delete removes a message from the log and, atomically, from the
// pinned set. Unknown ids are an error rather than a silent no-op.
func (c *Coordinator) Delete(connID, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions.byConn(connID)
	if !ok {
		return ErrNoSession
	}
	room, ok := c.rooms.get(sess.Room)
	if !ok {
		return ErrNoSession
	}

	deleted, wasPinned := room.deleteMessage(messageID)
	if !deleted {
		return ErrMessageNotFound
	}
	sess.LastActive = time.Now()

	if wasPinned {
		c.broadcastToRoom(room, models.EventMessageUnpinned, models.MessageDeletedPayload{MessageID: messageID, Room: room.name})
	}
	c.broadcastToRoom(room, models.EventMessageDeleted, models.MessageDeletedPayload{MessageID: messageID, Room: room.name})
	return nil
}

// Pin marks a log message as pinned. The pinned set is bounded; when
// it overflows, the oldest pin is dropped (the log entry stays).
func (c *Coordinator) Pin(connID, messageID string) (models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions.byConn(connID)
	if !ok {
		return models.Message{}, ErrNoSession
	}
	room, ok := c.rooms.get(sess.Room)
	if !ok {
		return models.Message{}, ErrNoSession
	}

	msg, ok := room.log.find(messageID)
	if !ok {
		return models.Message{}, ErrMessageNotFound
	}
	if room.isPinned(messageID) {
		return models.Message{}, ErrAlreadyPinned
	}
	sess.LastActive = time.Now()

	dropped, overflow := room.pin(msg, c.pinLimit)
	c.broadcastToRoom(room, models.EventMessagePinned, msg)
	if overflow {
		c.broadcastToRoom(room, models.EventMessageUnpinned, models.MessageDeletedPayload{MessageID: dropped.ID, Room: room.name})
	}
	return msg, nil
}

// Unpin removes a pin if present. Always succeeds.
func (c *Coordinator) Unpin(connID, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions.byConn(connID)
	if !ok {
		return ErrNoSession
	}
	room, ok := c.rooms.get(sess.Room)
	if !ok {
		return ErrNoSession
	}
	sess.LastActive = time.Now()

	if room.unpin(messageID) {
		c.broadcastToRoom(room, models.EventMessageUnpinned, models.MessageDeletedPayload{MessageID: messageID, Room: room.name})
	}
	return nil
}

// CreateRoom creates a room explicitly, failing on duplicates, and
// announces it process-wide.
func (c *Coordinator) CreateRoom(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrRoomNameRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.rooms.get(name); exists {
		return ErrRoomExists
	}
	c.rooms.ensure(name)
	metrics.RoomsCreated.Inc()
	c.broadcastAll(models.EventRoomCreated, models.RoomCreatedPayload{Room: name})
	logger.Info("room %s created", name)
	return nil
}

// Typing forwards a typing pulse to the other members of the sender's
// room. Nothing is stored and nothing is debounced server-side; the
// receiving client clears the indicator on its own timeout.
func (c *Coordinator) Typing(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions.byConn(connID)
	if !ok {
		return
	}
	room, ok := c.rooms.get(sess.Room)
	if !ok {
		return
	}
	sess.LastActive = time.Now()

	payload := models.TypingPayload{Username: sess.Username, Room: room.name}
	for memberID := range room.users {
		if memberID == connID {
			continue
		}
		c.sendTo(memberID, models.EventTyping, payload)
	}
}

// SweepIdle removes offline sessions idle past the threshold and
// announces each removal to its last room. Runs under the same mutex
// as client events, so a rejoin racing the sweep always wins: either
// it lands first and resets the session, or it recreates a fresh one
// right after the eviction. Returns the number of sessions removed.
func (c *Coordinator) SweepIdle(threshold time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := c.sessions.idle(models.StatusOffline, threshold, time.Now())
	for _, sess := range stale {
		c.dropConnection(sess.ConnID)
		metrics.SessionsEvicted.Inc()
		if room, ok := c.rooms.get(sess.Room); ok {
			c.announce(room, fmt.Sprintf("%s was removed for inactivity", sess.Username))
			c.broadcastRoomUsers(room)
		}
		logger.Info("evicted idle session for %s (conn %s)", sess.Username, sess.ConnID)
	}
	metrics.ConnectedSessions.Set(float64(c.sessions.len()))
	return len(stale)
}

// Rooms lists all rooms for the HTTP surface, sorted by name.
func (c *Coordinator) Rooms() []models.RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	infos := c.rooms.infos()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// SessionCount reports how many sessions the registry tracks,
// including retained offline ones.
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions.len()
}

// removeMembership drops the session's projection from its room.
// Caller must hold the lock.
func (c *Coordinator) removeMembership(sess *Session) {
	if room, ok := c.rooms.get(sess.Room); ok {
		delete(room.users, sess.ConnID)
	}
}

// dropConnection forgets everything tied to a connection: session,
// room membership, transport handle and rate limiter. Caller must
// hold the lock.
func (c *Coordinator) dropConnection(connID string) {
	if sess, ok := c.sessions.byConn(connID); ok {
		c.removeMembership(sess)
		c.sessions.remove(connID)
	}
	delete(c.conns, connID)
	c.limiters.drop(connID)
}
