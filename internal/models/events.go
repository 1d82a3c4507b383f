package models

import "encoding/json"

// Client-originated events.
const (
	EventJoin          = "join"
	EventSendMessage   = "send-message"
	EventDeleteMessage = "delete-message"
	EventPinMessage    = "pin-message"
	EventUnpinMessage  = "unpin-message"
	EventCreateRoom    = "create-room"
	EventUpdateStatus  = "update-status"
	EventTyping        = "typing"
)

// Server-originated events.
const (
	EventAck             = "ack"
	EventRoomData        = "room-data"
	EventReceiveMessage  = "receive-message"
	EventMessageDeleted  = "message-deleted"
	EventMessagePinned   = "message-pinned"
	EventMessageUnpinned = "message-unpinned"
	EventRoomUsers       = "room-users"
	EventRoomCreated     = "room-created"
	EventUserMentioned   = "user-mentioned"
)

// Envelope frames every event in either direction. Seq is a
// client-chosen correlation number echoed back in the ack.
type Envelope struct {
	Event string          `json:"event"`
	Seq   int64           `json:"seq,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Ack is the synchronous result of a client event.
type Ack struct {
	Seq     int64  `json:"seq,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type JoinPayload struct {
	Username string `json:"username"`
	RoomName string `json:"roomName"`
}

type SendMessagePayload struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId,omitempty"`
}

type MessageRefPayload struct {
	MessageID string `json:"messageId"`
}

type CreateRoomPayload struct {
	RoomName string `json:"roomName"`
}

type UpdateStatusPayload struct {
	Status string `json:"status"`
}

// RoomData is the snapshot pushed to a joiner only.
type RoomData struct {
	Messages []Message  `json:"messages"`
	Pinned   []Message  `json:"pinned"`
	Users    []RoomUser `json:"users"`
	Room     string     `json:"room"`
}

type RoomUsersPayload struct {
	Users []RoomUser `json:"users"`
	Room  string     `json:"room"`
}

type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
	Room      string `json:"room"`
}

type RoomCreatedPayload struct {
	Room string `json:"room"`
}

// MentionPayload is delivered privately to each mentioned user.
type MentionPayload struct {
	Message string `json:"message"`
	From    string `json:"from"`
	Room    string `json:"room"`
}

type TypingPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}
