package errors

import "errors"

var (
	ErrEmptyMessage         = errors.New("chat message is empty")
	ErrSessionNotFound      = errors.New("chat session not found")
	ErrAssistantUnavailable = errors.New("assistant is unavailable")
)
