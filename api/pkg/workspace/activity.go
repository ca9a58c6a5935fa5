package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/pubsub"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// HandleConnected records a new user connection. Any pending cleanup for
// the session is cancelled, the user came back.
func (m *Manager) HandleConnected(ctx context.Context, sessionID string) error {
	session, err := m.store.IncrementSessionConnections(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := m.cleanup.CancelSessionCleanup(ctx, sessionID); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to cancel pending cleanup job")
	}

	log.Debug().
		Str("session_id", sessionID).
		Int("connections", session.ActiveConnectionCount).
		Msg("session connection opened")
	return nil
}

// HandleDisconnected records a dropped connection. When the last one
// goes the session turns idle and a cleanup job is scheduled for the end
// of the grace period. Reconnecting within the grace period cancels it.
func (m *Manager) HandleDisconnected(ctx context.Context, sessionID string) error {
	session, err := m.store.DecrementSessionConnections(ctx, sessionID)
	if err != nil {
		return err
	}

	log.Debug().
		Str("session_id", sessionID).
		Int("connections", session.ActiveConnectionCount).
		Msg("session connection closed")

	if session.ActiveConnectionCount > 0 || session.Status.IsTerminal() {
		return nil
	}

	grace := m.cfg.GracePeriod
	endsAt := time.Now().Add(grace)
	if err := m.store.SetSessionActivityLevel(ctx, sessionID, types.ActivityLevelIdle, &endsAt); err != nil {
		return fmt.Errorf("failed to mark session idle: %w", err)
	}
	if err := m.cleanup.ScheduleSessionCleanup(ctx, sessionID, session.UserID, grace, types.CleanupReasonDisconnected); err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	log.Info().
		Str("session_id", sessionID).
		Dur("grace_period", grace).
		Msg("session idle, cleanup scheduled")
	return nil
}

// SetActivityLevel applies an explicit level reported by the client.
// Backgrounded sessions get the longer background timeout before
// cleanup, active cancels any pending cleanup. Idle is derived from the
// connection count and cannot be set directly.
func (m *Manager) SetActivityLevel(ctx context.Context, userID, sessionID string, level types.ActivityLevel) error {
	session, err := m.GetSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if session.Status.IsTerminal() {
		return types.ErrSessionNotReady
	}

	switch level {
	case types.ActivityLevelActive:
		if err := m.store.SetSessionActivityLevel(ctx, sessionID, level, nil); err != nil {
			return fmt.Errorf("failed to set activity level: %w", err)
		}
		if err := m.cleanup.CancelSessionCleanup(ctx, sessionID); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", sessionID).
				Msg("failed to cancel pending cleanup job")
		}
	case types.ActivityLevelBackground:
		endsAt := time.Now().Add(m.cfg.BackgroundTimeout)
		if err := m.store.SetSessionActivityLevel(ctx, sessionID, level, &endsAt); err != nil {
			return fmt.Errorf("failed to set activity level: %w", err)
		}
		if err := m.cleanup.ScheduleSessionCleanup(ctx, sessionID, session.UserID, m.cfg.BackgroundTimeout, types.CleanupReasonBackgroundTimeout); err != nil {
			return fmt.Errorf("failed to schedule background cleanup: %w", err)
		}
	default:
		return fmt.Errorf("activity level %q cannot be set directly", level)
	}

	log.Debug().
		Str("session_id", sessionID).
		Str("level", string(level)).
		Msg("session activity level set")
	return nil
}

// TouchActivity bumps the session's last activity timestamp.
func (m *Manager) TouchActivity(ctx context.Context, sessionID string) error {
	return m.store.TouchSessionActivity(ctx, sessionID)
}

// StartActivityListener applies gateway-published activity events to
// sessions. The websocket endpoint publishes through the same subjects a
// headless gateway would, so both paths land here.
func (m *Manager) StartActivityListener(ctx context.Context) (pubsub.Subscription, error) {
	return m.pubsub.Subscribe(ctx, pubsub.SessionActivityWildcard, func(payload []byte) error {
		var event types.SessionActivityEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to parse activity event: %w", err)
		}
		if event.SessionID == "" {
			return fmt.Errorf("activity event missing session id")
		}
		return m.applyActivityEvent(ctx, &event)
	})
}

func (m *Manager) applyActivityEvent(ctx context.Context, event *types.SessionActivityEvent) error {
	switch event.Type {
	case types.SessionActivityConnected:
		return m.HandleConnected(ctx, event.SessionID)
	case types.SessionActivityDisconnected:
		return m.HandleDisconnected(ctx, event.SessionID)
	case types.SessionActivityPing:
		return m.TouchActivity(ctx, event.SessionID)
	default:
		log.Warn().
			Str("session_id", event.SessionID).
			Str("type", string(event.Type)).
			Msg("ignoring unknown activity event type")
		return nil
	}
}
