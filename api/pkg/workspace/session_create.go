package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/docker"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

const healthPollInterval = time.Second

// CreateSession provisions a container-backed session for the user. An
// existing non-terminal session for the same (user, workspace) pair is
// returned as-is rather than creating a duplicate.
func (m *Manager) CreateSession(ctx context.Context, userID string, req *types.CreateSessionRequest) (*types.WorkspaceSession, error) {
	lockKey := creationLockKey(userID, req.WorkspaceID)
	lock := m.creationLock(lockKey)
	lock.Lock()
	defer lock.Unlock()

	if req.WorkspaceID != "" {
		workspace, err := m.store.GetWorkspace(ctx, req.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if workspace.UserID != userID {
			return nil, types.ErrPermissionDenied
		}
	}

	existing, err := m.store.ListSessions(ctx, &store.ListSessionsQuery{
		UserID:      userID,
		WorkspaceID: req.WorkspaceID,
		Statuses:    types.ActiveSessionStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list existing sessions: %w", err)
	}
	if len(existing) > 0 {
		log.Info().
			Str("session_id", existing[0].ID).
			Str("user_id", userID).
			Str("workspace_id", req.WorkspaceID).
			Msg("returning existing session")
		return existing[0], nil
	}

	appPort, toolPort, releasePorts, err := m.allocateSessionPorts(ctx)
	if err != nil {
		return nil, err
	}
	// Once the session row exists its ports are covered by AllocatedPorts,
	// on failure the row leaves the active set. Either way the in-process
	// reservation can go when we return.
	defer releasePorts()

	sessionID := system.GenerateSessionID()
	session := &types.WorkspaceSession{
		ID:             sessionID,
		UserID:         userID,
		WorkspaceID:    req.WorkspaceID,
		ContainerName:  docker.SessionContainerName(sessionID),
		Port:           appPort,
		ToolServerPort: toolPort,
		Status:         types.SessionStatusCreating,
		ActivityLevel:  types.ActivityLevelActive,
	}
	session, err = m.store.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	m.publishStatus(ctx, session.ID, types.SessionStatusCreating, false, "")

	log.Info().
		Str("session_id", session.ID).
		Str("user_id", userID).
		Str("workspace_id", req.WorkspaceID).
		Int("port", appPort).
		Int("tool_server_port", toolPort).
		Msg("creating session container")

	image := req.Image
	if image == "" {
		image = m.cfg.SessionImage
	}

	containerID, err := m.runtime.CreateContainer(ctx, docker.CreateContainerRequest{
		SessionID:      session.ID,
		UserID:         userID,
		WorkspaceID:    req.WorkspaceID,
		ContainerName:  session.ContainerName,
		Image:          image,
		Port:           appPort,
		ToolServerPort: toolPort,
	})
	if err != nil {
		return nil, m.failCreate(session, "", fmt.Errorf("failed to create container: %w", err))
	}
	session.ContainerID = containerID

	if err := m.store.SetSessionContainer(ctx, session.ID, containerID); err != nil {
		return nil, m.failCreate(session, containerID, fmt.Errorf("failed to record container id: %w", err))
	}

	if err := m.runtime.StartContainer(ctx, containerID); err != nil {
		return nil, m.failCreate(session, containerID, fmt.Errorf("failed to start container: %w", err))
	}

	if err := m.store.UpdateSessionStatus(ctx, session.ID, types.SessionStatusInitializing, ""); err != nil {
		return nil, m.failCreate(session, containerID, fmt.Errorf("failed to mark session initializing: %w", err))
	}
	m.publishStatus(ctx, session.ID, types.SessionStatusInitializing, false, "")

	if err := m.waitForToolServer(ctx, session); err != nil {
		return nil, m.failCreate(session, containerID, fmt.Errorf("tool server did not become ready: %w", err))
	}

	// Restore is best-effort: a session with nothing saved yet, or a
	// transient storage error, still gets a usable blank workspace.
	if req.WorkspaceID != "" {
		if err := m.restoreArchive(ctx, session); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", session.ID).
				Str("workspace_id", req.WorkspaceID).
				Msg("failed to restore workspace archive")
		}
	}

	previewURL := fmt.Sprintf("http://%s:%d", m.cfg.PreviewHost, appPort)
	if err := m.store.MarkSessionReady(ctx, session.ID, previewURL); err != nil {
		return nil, m.failCreate(session, containerID, fmt.Errorf("failed to mark session ready: %w", err))
	}
	m.registry.Register(session.ID, session.Connection())
	m.publishStatus(ctx, session.ID, types.SessionStatusRunning, true, "")

	log.Info().
		Str("session_id", session.ID).
		Str("container_id", containerID).
		Str("preview_url", previewURL).
		Msg("session ready")

	return m.store.GetSession(ctx, session.ID)
}

// waitForToolServer polls the in-container tool server until it reports
// healthy or the initialize deadline passes.
func (m *Manager) waitForToolServer(ctx context.Context, session *types.WorkspaceSession) error {
	waitCtx, cancel := context.WithTimeout(ctx, m.cfg.InitializeTimeout)
	defer cancel()

	conn := session.Connection()

	return retry.Do(func() error {
		probeCtx, cancel := context.WithTimeout(waitCtx, m.cfg.HealthProbeTimeout)
		defer cancel()

		health, err := m.toolServer.Health(probeCtx, conn)
		if err != nil {
			return err
		}
		if !health.Healthy() {
			return fmt.Errorf("tool server reported status %q", health.Status)
		}
		return nil
	},
		retry.Context(waitCtx),
		retry.Attempts(0), // bounded by the context deadline, not a count
		retry.Delay(healthPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// failCreate records the failure and removes whatever container the
// attempt left behind. Cleanup runs on a fresh context so it still works
// when the creation context is already dead.
func (m *Manager) failCreate(session *types.WorkspaceSession, containerID string, cause error) error {
	log.Error().
		Err(cause).
		Str("session_id", session.ID).
		Str("user_id", session.UserID).
		Msg("session creation failed")

	cleanupCtx, cancel := context.WithTimeout(context.Background(), m.cfg.RemoveTimeout)
	defer cancel()

	if containerID != "" {
		if err := m.runtime.RemoveContainer(cleanupCtx, containerID, true); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", session.ID).
				Str("container_id", containerID).
				Msg("failed to remove container after failed creation")
		}
	}
	m.registry.Unregister(session.ID)

	if err := m.store.UpdateSessionStatus(cleanupCtx, session.ID, types.SessionStatusError, cause.Error()); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", session.ID).
			Msg("failed to record session error status")
	}
	m.publishStatus(cleanupCtx, session.ID, types.SessionStatusError, false, cause.Error())

	return cause
}
