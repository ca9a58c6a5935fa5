package workspace

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/types"
)

// StopSession tears one session down: stop the container, remove it,
// drop the registry entry and mark the record stopped. Stop failures are
// tolerated because removal is forced, removal failures leave the
// session in error state for a retry.
func (m *Manager) StopSession(ctx context.Context, sessionID string, reason types.CleanupReason) error {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.Status.IsTerminal() {
		m.registry.Unregister(sessionID)
		return nil
	}

	log.Info().
		Str("session_id", sessionID).
		Str("container_id", session.ContainerID).
		Str("reason", string(reason)).
		Msg("stopping session")

	if session.ContainerID != "" {
		if err := m.runtime.StopContainer(ctx, session.ContainerID, m.cfg.StopTimeout); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", sessionID).
				Str("container_id", session.ContainerID).
				Msg("failed to stop container, removing anyway")
		}

		removeCtx, cancel := context.WithTimeout(ctx, m.cfg.RemoveTimeout)
		err := m.runtime.RemoveContainer(removeCtx, session.ContainerID, true)
		cancel()
		if err != nil {
			m.registry.Unregister(sessionID)
			msg := fmt.Sprintf("container removal failed: %v", err)
			if uerr := m.store.UpdateSessionStatus(ctx, sessionID, types.SessionStatusError, msg); uerr != nil {
				log.Warn().
					Err(uerr).
					Str("session_id", sessionID).
					Msg("failed to record removal failure")
			}
			m.publishStatus(ctx, sessionID, types.SessionStatusError, false, msg)
			return fmt.Errorf("%w: session %s: %v", types.ErrContainerRemoveFailed, sessionID, err)
		}
	}

	m.registry.Unregister(sessionID)

	if err := m.cleanup.CancelSessionCleanup(ctx, sessionID); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to cancel pending cleanup job")
	}

	if err := m.store.UpdateSessionStatus(ctx, sessionID, types.SessionStatusStopped, ""); err != nil {
		return fmt.Errorf("failed to mark session stopped: %w", err)
	}
	m.publishStatus(ctx, sessionID, types.SessionStatusStopped, false, "")
	m.releaseCreationLock(creationLockKey(session.UserID, session.WorkspaceID))

	log.Info().
		Str("session_id", sessionID).
		Str("reason", string(reason)).
		Msg("session stopped")

	return nil
}
