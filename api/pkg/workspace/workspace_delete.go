package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// DeleteWorkspace removes a workspace and everything hanging off it, in
// a fixed order with no rollback: per-session teardown first, then the
// storage archive, then context data, the workspace record strictly
// last. Every step is resumable, a re-run skips what is already gone.
//
// Without force, sessions still running or initializing make the call
// fail with ErrWorkspaceBusy. With force they are torn down like the
// rest.
func (m *Manager) DeleteWorkspace(ctx context.Context, userID, workspaceID string, force bool) (*types.DeleteWorkspaceResult, error) {
	workspace, err := m.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.UserID != userID {
		return nil, types.ErrPermissionDenied
	}

	sessions, err := m.store.ListSessions(ctx, &store.ListSessionsQuery{WorkspaceID: workspaceID})
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace sessions: %w", err)
	}

	if !force {
		for _, session := range sessions {
			if session.Status == types.SessionStatusRunning || session.Status == types.SessionStatusInitializing {
				return nil, types.ErrWorkspaceBusy
			}
		}
	}

	log.Info().
		Str("workspace_id", workspaceID).
		Str("user_id", userID).
		Int("sessions", len(sessions)).
		Bool("force", force).
		Msg("deleting workspace")

	result := &types.DeleteWorkspaceResult{WorkspaceID: workspaceID}

	for _, session := range sessions {
		if m.deleteSessionForWorkspace(ctx, session, result) != nil {
			// session record deletion is the one hard step per session
			return result, fmt.Errorf("failed to delete session record %s", session.ID)
		}
	}

	// A session whose container would not go stays in the database, so
	// the workspace record has to stay too for the re-run to find it.
	if len(result.Skipped) > 0 {
		return result, fmt.Errorf("%w: %d sessions could not be removed, retry deletion", types.ErrContainerRemoveFailed, len(result.Skipped))
	}

	if err := m.filestore.Delete(ctx, filestore.WorkspaceArchivePath(workspaceID)); err != nil {
		log.Warn().
			Err(err).
			Str("workspace_id", workspaceID).
			Msg("failed to delete workspace archive")
	} else {
		result.ArchiveDeleted = true
	}

	if err := m.filestore.Delete(ctx, filestore.WorkspaceContextPrefix(workspaceID)); err != nil {
		log.Warn().
			Err(err).
			Str("workspace_id", workspaceID).
			Msg("failed to delete workspace context data")
	} else {
		result.ContextDeleted = true
	}

	if err := m.store.DeleteWorkspace(ctx, workspaceID); err != nil {
		return result, fmt.Errorf("failed to delete workspace record: %w", err)
	}
	result.CompletedAt = time.Now()

	log.Info().
		Str("workspace_id", workspaceID).
		Int("deleted_sessions", len(result.DeletedSessions)).
		Msg("workspace deleted")

	return result, nil
}

// deleteSessionForWorkspace tears down one session during workspace
// deletion. Container removal failures are recorded as skipped and the
// deletion moves on, only a session record that will not delete aborts.
func (m *Manager) deleteSessionForWorkspace(ctx context.Context, session *types.WorkspaceSession, result *types.DeleteWorkspaceResult) error {
	if session.ContainerID != "" {
		if err := m.runtime.StopContainer(ctx, session.ContainerID, m.cfg.StopTimeout); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", session.ID).
				Str("container_id", session.ContainerID).
				Msg("failed to stop container during workspace deletion, removing anyway")
		}

		removeCtx, cancel := context.WithTimeout(ctx, m.cfg.RemoveTimeout)
		err := m.runtime.RemoveContainer(removeCtx, session.ContainerID, true)
		cancel()
		if err != nil {
			log.Error().
				Err(err).
				Str("session_id", session.ID).
				Str("container_id", session.ContainerID).
				Msg("failed to remove container during workspace deletion, skipping session")
			result.Skipped = append(result.Skipped, session.ID)
			return nil
		}
	}

	m.registry.Unregister(session.ID)

	if err := m.cleanup.CancelSessionCleanup(ctx, session.ID); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", session.ID).
			Msg("failed to cancel pending cleanup job")
	}

	if err := m.store.DeleteSession(ctx, session.ID); err != nil {
		log.Error().
			Err(err).
			Str("session_id", session.ID).
			Msg("failed to delete session record")
		return err
	}

	m.releaseCreationLock(creationLockKey(session.UserID, session.WorkspaceID))
	result.DeletedSessions = append(result.DeletedSessions, session.ID)
	return nil
}
