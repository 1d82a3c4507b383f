package models

import "time"

// Message is a single chat log entry. System messages are generated
// server-side for join/leave/eviction announcements and carry no mentions.
type Message struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Room      string    `json:"room,omitempty"`
	ThreadID  string    `json:"threadId,omitempty"`
	IsSystem  bool      `json:"isSystem,omitempty"`
	Mentions  []string  `json:"mentions,omitempty"`
}
