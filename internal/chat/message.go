package chat

import (
	"strconv"
	"strings"
	"time"

	"connect-chat/internal/models"
)

const maxMessageLen = 500

// nextMessageID returns a creation-order millisecond stamp, bumped by
// one when two messages land in the same millisecond so ids stay
// process-unique and monotonic. Caller must hold the coordinator lock.
func (c *Coordinator) nextMessageID() string {
	now := time.Now().UnixMilli()
	if now <= c.lastStamp {
		now = c.lastStamp + 1
	}
	c.lastStamp = now
	return strconv.FormatInt(now, 10)
}

// validateBody trims and length-checks user message bodies. System
// messages do not pass through here.
func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyMessage
	}
	if len([]rune(body)) > maxMessageLen {
		return "", ErrMessageTooLong
	}
	return body, nil
}

func (c *Coordinator) newUserMessage(sess *Session, body, threadID string) models.Message {
	return models.Message{
		ID:        c.nextMessageID(),
		Username:  sess.Username,
		Body:      body,
		Timestamp: time.Now(),
		Room:      sess.Room,
		ThreadID:  threadID,
		Mentions:  extractMentions(body),
	}
}

func (c *Coordinator) newSystemMessage(room, text string) models.Message {
	return models.Message{
		ID:        c.nextMessageID(),
		Username:  "System",
		Body:      text,
		Timestamp: time.Now(),
		Room:      room,
		IsSystem:  true,
	}
}
