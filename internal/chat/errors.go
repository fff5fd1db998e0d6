package chat

import "errors"

var (
	// ErrSessionNotFound is returned when no chat session matches.
	ErrSessionNotFound = errors.New("chat: session not found")

	// ErrEmptyMessage is returned when a message has no text.
	ErrEmptyMessage = errors.New("chat: message text is required")
)
