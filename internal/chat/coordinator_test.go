package chat

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"connect-chat/internal/models"
)

type fakeEvent struct {
	event string
	data  any
}

type fakeConn struct {
	id     string
	events []fakeEvent
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(event string, data any) bool {
	f.events = append(f.events, fakeEvent{event: event, data: data})
	return true
}

func (f *fakeConn) received(event string) []any {
	var out []any
	for _, e := range f.events {
		if e.event == event {
			out = append(out, e.data)
		}
	}
	return out
}

func (f *fakeConn) reset() { f.events = nil }

func newTestCoordinator(opts Options) *Coordinator {
	if opts.SendRateRPS == 0 {
		// Generous enough that only the dedicated rate-limit test trips it.
		opts.SendRateRPS = 10000
		opts.SendRateBurst = 10000
	}
	return NewCoordinator(opts)
}

func join(t *testing.T, c *Coordinator, id, username, room string) *fakeConn {
	t.Helper()
	conn := &fakeConn{id: id}
	require.NoError(t, c.Join(conn, username, room))
	return conn
}

func TestJoinValidatesUsername(t *testing.T) {
	c := newTestCoordinator(Options{})

	err := c.Join(&fakeConn{id: "c1"}, "", "general")
	require.ErrorIs(t, err, ErrUsernameRequired)

	err = c.Join(&fakeConn{id: "c1"}, strings.Repeat("x", 21), "general")
	require.ErrorIs(t, err, ErrUsernameTooLong)

	require.NoError(t, c.Join(&fakeConn{id: "c1"}, strings.Repeat("x", 20), "general"))
}

func TestJoinSendsSnapshotToJoinerOnly(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")
	alice.reset()

	bob := join(t, c, "c2", "bob", "general")

	snaps := bob.received(models.EventRoomData)
	require.Len(t, snaps, 1)
	data := snaps[0].(models.RoomData)
	require.Equal(t, "general", data.Room)
	require.Len(t, data.Users, 2)

	require.Empty(t, alice.received(models.EventRoomData), "snapshot must not be broadcast")
	require.NotEmpty(t, alice.received(models.EventRoomUsers), "existing members get a presence update")
	require.NotEmpty(t, alice.received(models.EventReceiveMessage), "existing members see the join notice")
}

func TestRejoinReplacesSessionExactlyOnce(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")
	bob := join(t, c, "c2", "bob", "general")
	bob.reset()

	join(t, c, "c3", "alice", "general")

	room, ok := c.rooms.get("general")
	require.True(t, ok)
	require.Len(t, room.users, 2, "old membership must be gone")
	_, stale := room.users["c1"]
	require.False(t, stale)
	_, fresh := room.users["c3"]
	require.True(t, fresh)

	sess, ok := c.sessions.byUsername("alice")
	require.True(t, ok)
	require.Equal(t, "c3", sess.ConnID)
	require.Equal(t, avatarFor("alice"), sess.Avatar, "avatar preserved across reconnect")

	var sawReconnect bool
	for _, raw := range bob.received(models.EventReceiveMessage) {
		m := raw.(models.Message)
		if m.IsSystem && strings.Contains(m.Body, "has reconnected") {
			sawReconnect = true
		}
	}
	require.True(t, sawReconnect, "previous room gets a reconnect notice")
}

func TestSendBroadcastsToRoomMembers(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")
	bob := join(t, c, "c2", "bob", "general")
	other := join(t, c, "c3", "carol", "random")
	alice.reset()
	bob.reset()
	other.reset()

	msg, err := c.Send("c1", "hi", "")
	require.NoError(t, err)
	require.Equal(t, "alice", msg.Username)
	require.Equal(t, "hi", msg.Body)
	require.NotEmpty(t, msg.ID)

	require.Len(t, alice.received(models.EventReceiveMessage), 1)
	require.Len(t, bob.received(models.EventReceiveMessage), 1)
	require.Empty(t, other.received(models.EventReceiveMessage), "other rooms stay quiet")
}

func TestSendRejectsInvalidBodies(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")

	room, _ := c.rooms.get("general")
	before := room.log.len()

	_, err := c.Send("c1", "   ", "")
	require.ErrorIs(t, err, ErrEmptyMessage)

	_, err = c.Send("c1", strings.Repeat("a", 501), "")
	require.ErrorIs(t, err, ErrMessageTooLong)

	require.Equal(t, before, room.log.len(), "rejected sends must not touch the log")

	_, err = c.Send("c9", "hello", "")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSendTrimsBody(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")

	msg, err := c.Send("c1", "  hello  ", "")
	require.NoError(t, err)
	require.Equal(t, "hello", msg.Body)
}

func TestMessageIDsAreMonotonic(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")

	var prev string
	for i := 0; i < 5; i++ {
		msg, err := c.Send("c1", fmt.Sprintf("m%d", i), "")
		require.NoError(t, err)
		require.Greater(t, msg.ID, prev)
		prev = msg.ID
	}
}

func TestRetentionEvictsOldest(t *testing.T) {
	c := newTestCoordinator(Options{HistoryLimit: 200})
	join(t, c, "c1", "alice", "general")

	ids := make([]string, 0, 201)
	for i := 0; i < 201; i++ {
		msg, err := c.Send("c1", fmt.Sprintf("m%d", i), "")
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	room, _ := c.rooms.get("general")
	log := room.log.messages()
	require.Equal(t, 200, len(log))
	// The join notice and the first user message have been evicted.
	require.Equal(t, ids[1], log[0].ID)
	_, found := room.log.find(ids[0])
	require.False(t, found, "first message must be evicted")
}

func TestRetentionEvictionDropsPin(t *testing.T) {
	c := newTestCoordinator(Options{HistoryLimit: 3})
	join(t, c, "c1", "alice", "general")

	first, err := c.Send("c1", "pin me", "")
	require.NoError(t, err)
	_, err = c.Pin("c1", first.ID)
	require.NoError(t, err)

	room, _ := c.rooms.get("general")
	require.True(t, room.isPinned(first.ID))

	for i := 0; i < 3; i++ {
		_, err = c.Send("c1", fmt.Sprintf("flood %d", i), "")
		require.NoError(t, err)
	}

	require.False(t, room.isPinned(first.ID), "pin must not outlive its log entry")
	require.LessOrEqual(t, room.log.len(), 3)
}

func TestPinLifecycle(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")

	msg, err := c.Send("c1", "important", "")
	require.NoError(t, err)
	alice.reset()

	pinned, err := c.Pin("c1", msg.ID)
	require.NoError(t, err)
	require.Equal(t, msg.ID, pinned.ID)
	require.Len(t, alice.received(models.EventMessagePinned), 1)

	_, err = c.Pin("c1", msg.ID)
	require.ErrorIs(t, err, ErrAlreadyPinned)

	_, err = c.Pin("c1", "nope")
	require.ErrorIs(t, err, ErrMessageNotFound)

	require.NoError(t, c.Unpin("c1", msg.ID))
	require.NoError(t, c.Unpin("c1", msg.ID), "unpin is idempotent")

	room, _ := c.rooms.get("general")
	require.Empty(t, room.pinnedMessages())
	_, inLog := room.log.find(msg.ID)
	require.True(t, inLog, "unpin leaves the log alone")
}

func TestPinCapacityEvictsOldestPin(t *testing.T) {
	c := newTestCoordinator(Options{PinLimit: 2})
	join(t, c, "c1", "alice", "general")

	var ids []string
	for i := 0; i < 3; i++ {
		msg, err := c.Send("c1", fmt.Sprintf("m%d", i), "")
		require.NoError(t, err)
		_, err = c.Pin("c1", msg.ID)
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	room, _ := c.rooms.get("general")
	require.Len(t, room.pinnedMessages(), 2)
	require.False(t, room.isPinned(ids[0]), "oldest pin evicted")
	_, inLog := room.log.find(ids[0])
	require.True(t, inLog, "pin eviction never touches the log")
}

func TestDeleteRemovesLogAndPinAtomically(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")

	msg, err := c.Send("c1", "short lived", "")
	require.NoError(t, err)
	_, err = c.Pin("c1", msg.ID)
	require.NoError(t, err)
	alice.reset()

	require.NoError(t, c.Delete("c1", msg.ID))

	room, _ := c.rooms.get("general")
	_, inLog := room.log.find(msg.ID)
	require.False(t, inLog)
	require.False(t, room.isPinned(msg.ID))

	require.Len(t, alice.received(models.EventMessageDeleted), 1)
	require.Len(t, alice.received(models.EventMessageUnpinned), 1)

	require.ErrorIs(t, c.Delete("c1", msg.ID), ErrMessageNotFound)
}

func TestMentionsNotifyTargetsOnly(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")
	bob := join(t, c, "c2", "bob", "general")
	carol := join(t, c, "c3", "carol", "general")
	alice.reset()
	bob.reset()
	carol.reset()

	_, err := c.Send("c1", "hello @bob!", "")
	require.NoError(t, err)

	mentions := bob.received(models.EventUserMentioned)
	require.Len(t, mentions, 1)
	payload := mentions[0].(models.MentionPayload)
	require.Equal(t, "alice", payload.From)
	require.Equal(t, "general", payload.Room)

	require.Empty(t, carol.received(models.EventUserMentioned))
	require.Empty(t, alice.received(models.EventUserMentioned))
}

func TestMentionUnknownUserIsIgnored(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")

	_, err := c.Send("c1", "hi @nobody", "")
	require.NoError(t, err)
}

func TestSelfMentionPolicy(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")
	alice.reset()
	_, err := c.Send("c1", "note to @alice", "")
	require.NoError(t, err)
	require.Empty(t, alice.received(models.EventUserMentioned), "self mentions excluded by default")

	c = newTestCoordinator(Options{NotifySelfMentions: true})
	alice = join(t, c, "c1", "alice", "general")
	alice.reset()
	_, err = c.Send("c1", "note to @alice", "")
	require.NoError(t, err)
	require.Len(t, alice.received(models.EventUserMentioned), 1)
}

func TestSetStatus(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")
	bob := join(t, c, "c2", "bob", "general")
	bob.reset()

	require.ErrorIs(t, c.SetStatus("c1", "sleeping"), ErrUnknownStatus)
	require.ErrorIs(t, c.SetStatus("c9", "away"), ErrNoSession)
	require.NoError(t, c.SetStatus("c1", "away"))

	updates := bob.received(models.EventRoomUsers)
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1].(models.RoomUsersPayload)
	var found bool
	for _, u := range last.Users {
		if u.Username == "alice" {
			found = true
			require.Equal(t, models.StatusAway, u.Status)
		}
	}
	require.True(t, found)
}

func TestTypingForwardedToPeersOnly(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")
	bob := join(t, c, "c2", "bob", "general")
	alice.reset()
	bob.reset()

	c.Typing("c1")

	pulses := bob.received(models.EventTyping)
	require.Len(t, pulses, 1)
	require.Equal(t, "alice", pulses[0].(models.TypingPayload).Username)
	require.Empty(t, alice.received(models.EventTyping), "no echo to the typist")
}

func TestCreateRoom(t *testing.T) {
	c := newTestCoordinator(Options{})
	alice := join(t, c, "c1", "alice", "general")
	alice.reset()

	require.NoError(t, c.CreateRoom("random"))
	require.ErrorIs(t, c.CreateRoom("random"), ErrRoomExists)
	require.ErrorIs(t, c.CreateRoom("  "), ErrRoomNameRequired)

	created := alice.received(models.EventRoomCreated)
	require.Len(t, created, 1, "room creation is announced process-wide")
	require.Equal(t, "random", created[0].(models.RoomCreatedPayload).Room)
}

func TestLeaveIsIdempotentAndRetainsSession(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")
	bob := join(t, c, "c2", "bob", "general")
	bob.reset()

	c.Leave("c1")
	c.Leave("c1") // no-op
	c.Leave("unknown")

	room, _ := c.rooms.get("general")
	require.Len(t, room.users, 1, "departed member leaves the projection")

	sess, ok := c.sessions.byUsername("alice")
	require.True(t, ok, "session retained offline for reconnect continuity")
	require.Equal(t, models.StatusOffline, sess.Status)

	var sawDeparture bool
	for _, raw := range bob.received(models.EventReceiveMessage) {
		if m := raw.(models.Message); m.IsSystem && strings.Contains(m.Body, "left") {
			sawDeparture = true
		}
	}
	require.True(t, sawDeparture)
}

func TestSweepIdleEvictsOnlyStaleOfflineSessions(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")
	bob := join(t, c, "c2", "bob", "general")
	c.Leave("c1")
	bob.reset()

	threshold := 24 * time.Hour

	// Idle for T-1: untouched.
	c.sessions.sessions["c1"].LastActive = time.Now().Add(-threshold + time.Hour)
	require.Equal(t, 0, c.SweepIdle(threshold))
	require.Equal(t, 2, c.SessionCount())

	// Idle for T+1: removed, one removal notice.
	c.sessions.sessions["c1"].LastActive = time.Now().Add(-threshold - time.Hour)
	require.Equal(t, 1, c.SweepIdle(threshold))
	require.Equal(t, 1, c.SessionCount())

	var notices int
	for _, raw := range bob.received(models.EventReceiveMessage) {
		if m := raw.(models.Message); m.IsSystem && strings.Contains(m.Body, "removed for inactivity") {
			notices++
		}
	}
	require.Equal(t, 1, notices)

	// Online sessions are never swept regardless of idle time.
	c.sessions.sessions["c2"].LastActive = time.Now().Add(-threshold - time.Hour)
	require.Equal(t, 0, c.SweepIdle(threshold))
}

func TestRejoinAfterSweepCreatesFreshSession(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "general")
	c.Leave("c1")
	c.sessions.sessions["c1"].LastActive = time.Now().Add(-48 * time.Hour)
	require.Equal(t, 1, c.SweepIdle(24*time.Hour))

	conn := join(t, c, "c2", "alice", "general")
	require.Len(t, conn.received(models.EventRoomData), 1)

	sess, ok := c.sessions.byUsername("alice")
	require.True(t, ok)
	require.Equal(t, models.StatusOnline, sess.Status)
}

func TestSendRateLimit(t *testing.T) {
	c := newTestCoordinator(Options{SendRateRPS: 1, SendRateBurst: 1})
	join(t, c, "c1", "alice", "general")

	_, err := c.Send("c1", "first", "")
	require.NoError(t, err)

	_, err = c.Send("c1", "second", "")
	require.True(t, errors.Is(err, ErrRateLimited))
}

func TestRoomsListing(t *testing.T) {
	c := newTestCoordinator(Options{})
	join(t, c, "c1", "alice", "random")

	infos := c.Rooms()
	require.Len(t, infos, 2)
	require.Equal(t, "general", infos[0].Name)
	require.Equal(t, "random", infos[1].Name)
	require.Equal(t, 1, infos[1].UserCount)
}
