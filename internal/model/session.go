package model

import (
	"time"
)

// SessionState is the visibility state of a chat widget.
type SessionState string

const (
	SessionClosed    SessionState = "closed"
	SessionOpen      SessionState = "open"
	SessionMinimized SessionState = "minimized"
)

// SessionSnapshot is a read-only view of a chat widget session.
type SessionSnapshot struct {
	ID          string       `json:"id"`
	State       SessionState `json:"state"`
	Typing      bool         `json:"typing"`
	Messages    []Message    `json:"messages"`
	Suggestions []string     `json:"suggestions"`
	Draft       string       `json:"draft"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
