package models

import "time"

type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusOffline Status = "offline"
)

// Valid reports whether s is one of the three recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusAway, StatusOffline:
		return true
	}
	return false
}

// Avatar is derived deterministically from the username, so the same
// user keeps the same color across reconnects.
type Avatar struct {
	Initial string `json:"initial"`
	Color   string `json:"color"`
}

// RoomUser is the denormalized member projection broadcast with
// presence updates.
type RoomUser struct {
	Username string `json:"username"`
	Avatar   Avatar `json:"avatar"`
	Status   Status `json:"status"`
}

// RoomInfo is the summary returned by the rooms listing endpoint.
type RoomInfo struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UserCount    int       `json:"user_count"`
	MessageCount int       `json:"message_count"`
}
