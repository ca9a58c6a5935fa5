package pubsub

import (
	"context"
)

type Publisher interface {
	// Publish topic to message broker with payload.
	Publish(ctx context.Context, topic string, payload []byte) error
}

// PubSub carries session events between the lifecycle manager and
// whoever is watching a session (the websocket endpoint, sweeps).
// Durable work never goes through here; cleanup jobs live in the store.
type PubSub interface {
	Publisher
	Subscribe(ctx context.Context, topic string, handler func(payload []byte) error) (Subscription, error)
}

type Subscription interface {
	Unsubscribe() error
}

// SessionActivityWildcard matches the activity subjects of all sessions.
const SessionActivityWildcard = "workspace.session.activity.*"

// SessionActivitySubject is where connect/disconnect/ping events for one
// session are published.
func SessionActivitySubject(sessionID string) string {
	return "workspace.session.activity." + sessionID
}

// SessionStatusSubject is where lifecycle status transitions for one
// session are published.
func SessionStatusSubject(sessionID string) string {
	return "workspace.session.status." + sessionID
}
