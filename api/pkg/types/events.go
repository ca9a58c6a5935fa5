package types

import "time"

type SessionActivityEventType string

const (
	SessionActivityConnected    SessionActivityEventType = "connected"
	SessionActivityDisconnected SessionActivityEventType = "disconnected"
	SessionActivityPing         SessionActivityEventType = "ping"
)

// SessionActivityEvent is published by the gateway (or the websocket
// endpoint acting for it) whenever a user connection to a session opens,
// closes or pings.
type SessionActivityEvent struct {
	SessionID string                   `json:"session_id"`
	UserID    string                   `json:"user_id"`
	Type      SessionActivityEventType `json:"type"`
	At        time.Time                `json:"at"`
}

// SessionStatusEvent is published on every status transition so connected
// clients can follow a session through creation and teardown.
type SessionStatusEvent struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	IsReady   bool          `json:"is_ready"`
	Error     string        `json:"error,omitempty"`
	At        time.Time     `json:"at"`
}
