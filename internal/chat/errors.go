package chat

import "errors"

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must be 20 characters or fewer")
	ErrNoSession        = errors.New("no active session for this connection")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageTooLong   = errors.New("message must be 500 characters or fewer")
	ErrUnknownStatus    = errors.New("status must be online, away or offline")
	ErrMessageNotFound  = errors.New("message not found")
	ErrRoomNameRequired = errors.New("room name is required")
	ErrRoomExists       = errors.New("room already exists")
	ErrAlreadyPinned    = errors.New("message already pinned")
	ErrRateLimited      = errors.New("sending too fast, slow down")
)
