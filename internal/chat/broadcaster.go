package chat

import (
	"connect-chat/internal/metrics"
	"connect-chat/internal/models"
	"connect-chat/pkg/logger"
)

// Conn is the transport-side handle the coordinator fans out to. Send
// must never block; it reports false when the payload was dropped
// (slow or closed peer). Drops are absorbed here, not surfaced to the
// acting client.
type Conn interface {
	ID() string
	Send(event string, data any) bool
}

// Caller must hold the coordinator lock for all methods below.

func (c *Coordinator) sendTo(connID, event string, data any) {
	conn, ok := c.conns[connID]
	if !ok {
		return
	}
	if !conn.Send(event, data) {
		metrics.BroadcastsDropped.Inc()
		logger.Debug("dropped %s for slow connection %s", event, connID)
	}
}

// broadcastToRoom emits the event to every connection joined to the room.
func (c *Coordinator) broadcastToRoom(room *Room, event string, data any) {
	for connID := range room.users {
		c.sendTo(connID, event, data)
	}
}

// broadcastAll emits the event process-wide, to every tracked connection.
func (c *Coordinator) broadcastAll(event string, data any) {
	for connID := range c.conns {
		c.sendTo(connID, event, data)
	}
}

// broadcastRoomUsers recomputes the member projection list and pushes
// it to the whole room. Triggered on join, leave, status change and
// reconnection.
func (c *Coordinator) broadcastRoomUsers(room *Room) {
	c.broadcastToRoom(room, models.EventRoomUsers, models.RoomUsersPayload{
		Users: room.members(),
		Room:  room.name,
	})
}

// announce appends a system message to the room log and broadcasts it.
func (c *Coordinator) announce(room *Room, text string) {
	msg := c.newSystemMessage(room.name, text)
	room.appendMessage(msg)
	c.broadcastToRoom(room, models.EventReceiveMessage, msg)
}

// notifyMentions delivers a private user-mentioned payload to each
// member of the room whose username exactly matches a mention token.
// Unmatched tokens are silently ignored.
func (c *Coordinator) notifyMentions(msg models.Message, room *Room) {
	for _, name := range msg.Mentions {
		if name == msg.Username && !c.notifySelfMentions {
			continue
		}
		for connID, user := range room.users {
			if user.Username != name {
				continue
			}
			c.sendTo(connID, models.EventUserMentioned, models.MentionPayload{
				Message: msg.Body,
				From:    msg.Username,
				Room:    room.name,
			})
		}
	}
}
