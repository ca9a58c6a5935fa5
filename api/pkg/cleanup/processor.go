package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/docker"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// SessionManager is the slice of the session lifecycle the processor
// drives. Implemented by workspace.Manager.
type SessionManager interface {
	StopSession(ctx context.Context, sessionID string, reason types.CleanupReason) error
}

// ContainerRuntime lists and removes session containers directly, for
// containers that no longer have a session row to go through.
type ContainerRuntime interface {
	ListSessionContainers(ctx context.Context) ([]*docker.SessionContainer, error)
	RemoveContainer(ctx context.Context, containerID string, force bool) error
}

// HealthProber re-probes a session's tool server before a health-check
// job stops it.
type HealthProber interface {
	Health(ctx context.Context, conn *types.ContainerConnection) (*toolserver.HealthResponse, error)
}

// Processor executes claimed cleanup jobs. Handlers return a
// CleanupResult; a session that vanished before its job ran is recorded
// as SESSION_NOT_FOUND and never fails the job.
type Processor struct {
	store        store.Store
	sessions     SessionManager
	runtime      ContainerRuntime
	prober       HealthProber
	probeTimeout time.Duration
}

type ProcessorConfig struct {
	Store        store.Store
	Sessions     SessionManager
	Runtime      ContainerRuntime
	Prober       HealthProber
	ProbeTimeout time.Duration
}

func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		store:        cfg.Store,
		sessions:     cfg.Sessions,
		runtime:      cfg.Runtime,
		prober:       cfg.Prober,
		probeTimeout: cfg.ProbeTimeout,
	}
}

func (p *Processor) Execute(ctx context.Context, job *types.CleanupJob) (*types.CleanupResult, error) {
	log.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Int("attempt", job.Attempts).
		Msg("executing cleanup job")

	switch job.Kind {
	case types.CleanupJobSessionCleanup:
		return p.sessionCleanup(ctx, job)
	case types.CleanupJobHealthCheck:
		return p.healthCheckCleanup(ctx, job)
	case types.CleanupJobOrphanedSessions:
		return p.orphanedCleanup(ctx, job)
	case types.CleanupJobManual:
		return p.manualCleanup(ctx, job)
	default:
		return nil, fmt.Errorf("unknown cleanup job kind %q", job.Kind)
	}
}

func (p *Processor) sessionCleanup(ctx context.Context, job *types.CleanupJob) (*types.CleanupResult, error) {
	start := time.Now()
	var payload types.SessionCleanupPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode session cleanup payload: %w", err)
	}

	result := &types.CleanupResult{Success: true, ProcessedCount: 1}

	session, err := p.store.GetSession(ctx, payload.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			result.Errors = append(result.Errors, types.CleanupError{
				SessionID: payload.SessionID,
				Code:      types.CleanupErrorSessionNotFound,
				Message:   "session vanished before cleanup ran",
			})
			return finishResult(result, start), nil
		}
		return nil, err
	}

	if payload.UserID != "" && session.UserID != payload.UserID {
		return nil, fmt.Errorf("%w: session %s does not belong to %s",
			types.ErrPermissionDenied, payload.SessionID, payload.UserID)
	}

	if session.Status.IsTerminal() {
		return finishResult(result, start), nil
	}

	// the user may have come back since this job was scheduled
	if session.ActiveConnectionCount > 0 || session.ActivityLevel == types.ActivityLevelActive {
		log.Info().
			Str("session_id", session.ID).
			Int("connections", session.ActiveConnectionCount).
			Str("activity_level", string(session.ActivityLevel)).
			Msg("session active again, skipping cleanup")
		return finishResult(result, start), nil
	}
	if session.GracePeriodEndsAt != nil && session.GracePeriodEndsAt.After(time.Now()) {
		log.Info().
			Str("session_id", session.ID).
			Time("grace_ends_at", *session.GracePeriodEndsAt).
			Msg("grace period extended, skipping cleanup")
		return finishResult(result, start), nil
	}

	if err := p.sessions.StopSession(ctx, session.ID, payload.Reason); err != nil {
		result.Success = false
		result.Errors = append(result.Errors, cleanupError(session.ID, err))
		return finishResult(result, start), nil
	}

	result.CleanedCount = 1
	result.CleanedSessionIDs = []string{session.ID}
	return finishResult(result, start), nil
}

func (p *Processor) healthCheckCleanup(ctx context.Context, job *types.CleanupJob) (*types.CleanupResult, error) {
	start := time.Now()
	var payload types.HealthCheckCleanupPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode health check payload: %w", err)
	}
	reason := payload.Reason
	if reason == "" {
		reason = types.CleanupReasonHealthCheckFailure
	}

	result := &types.CleanupResult{Success: true}
	for _, sessionID := range payload.SessionIDs {
		result.ProcessedCount++

		session, err := p.store.GetSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				result.Errors = append(result.Errors, types.CleanupError{
					SessionID: sessionID,
					Code:      types.CleanupErrorSessionNotFound,
					Message:   "session vanished before health check cleanup",
				})
				continue
			}
			return nil, err
		}
		if session.Status != types.SessionStatusRunning {
			continue
		}
		// a second failed probe confirms the sweep's finding
		if p.probeHealthy(ctx, session) {
			log.Info().Str("session_id", session.ID).Msg("session recovered, skipping cleanup")
			continue
		}
		if err := p.sessions.StopSession(ctx, session.ID, reason); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, cleanupError(session.ID, err))
			continue
		}
		result.CleanedCount++
		result.CleanedSessionIDs = append(result.CleanedSessionIDs, session.ID)
	}
	return finishResult(result, start), nil
}

func (p *Processor) orphanedCleanup(ctx context.Context, job *types.CleanupJob) (*types.CleanupResult, error) {
	start := time.Now()
	var payload types.OrphanedCleanupPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode orphaned cleanup payload: %w", err)
	}
	maxAge := time.Duration(payload.MaxAgeSeconds) * time.Second

	result := &types.CleanupResult{Success: true}

	stale, err := p.store.ListStaleSessions(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	for _, session := range stale {
		result.ProcessedCount++
		log.Warn().
			Str("session_id", session.ID).
			Time("last_activity_at", session.LastActivityAt).
			Msg("stopping session with no recent activity")
		if err := p.sessions.StopSession(ctx, session.ID, types.CleanupReasonOrphaned); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, cleanupError(session.ID, err))
			continue
		}
		result.CleanedCount++
		result.CleanedSessionIDs = append(result.CleanedSessionIDs, session.ID)
	}

	// containers whose session row is gone entirely
	containers, err := p.runtime.ListSessionContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list session containers: %w", err)
	}
	for _, container := range containers {
		if container.SessionID == "" {
			continue
		}
		_, err := p.store.GetSession(ctx, container.SessionID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		result.ProcessedCount++
		log.Warn().
			Str("container_id", container.ContainerID).
			Str("session_id", container.SessionID).
			Msg("removing container with no session record")
		if err := p.runtime.RemoveContainer(ctx, container.ContainerID, true); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, types.CleanupError{
				SessionID: container.SessionID,
				Code:      types.CleanupErrorContainerRemoveFailed,
				Message:   err.Error(),
			})
			continue
		}
		result.CleanedCount++
	}

	return finishResult(result, start), nil
}

func (p *Processor) manualCleanup(ctx context.Context, job *types.CleanupJob) (*types.CleanupResult, error) {
	start := time.Now()
	var payload types.ManualCleanupPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode manual cleanup payload: %w", err)
	}

	result := &types.CleanupResult{Success: true}
	for _, sessionID := range payload.SessionIDs {
		result.ProcessedCount++

		session, err := p.store.GetSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				result.Errors = append(result.Errors, types.CleanupError{
					SessionID: sessionID,
					Code:      types.CleanupErrorSessionNotFound,
					Message:   "session not found",
				})
				continue
			}
			return nil, err
		}
		if session.UserID != payload.UserID {
			result.Success = false
			result.Errors = append(result.Errors, types.CleanupError{
				SessionID: sessionID,
				Code:      types.CleanupErrorPermissionDenied,
				Message:   fmt.Sprintf("session %s does not belong to %s", sessionID, payload.UserID),
			})
			continue
		}
		if session.Status.IsTerminal() {
			continue
		}
		if err := p.sessions.StopSession(ctx, sessionID, types.CleanupReasonManual); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, cleanupError(sessionID, err))
			continue
		}
		result.CleanedCount++
		result.CleanedSessionIDs = append(result.CleanedSessionIDs, sessionID)
	}
	return finishResult(result, start), nil
}

func (p *Processor) probeHealthy(ctx context.Context, session *types.WorkspaceSession) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	health, err := p.prober.Health(probeCtx, session.Connection())
	return err == nil && health.Healthy()
}

func finishResult(result *types.CleanupResult, start time.Time) *types.CleanupResult {
	result.CompletedAt = time.Now()
	result.DurationMS = time.Since(start).Milliseconds()
	return result
}

func cleanupError(sessionID string, err error) types.CleanupError {
	return types.CleanupError{
		SessionID: sessionID,
		Code:      classifyError(err),
		Message:   err.Error(),
	}
}

func classifyError(err error) types.CleanupErrorCode {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return types.CleanupErrorSessionNotFound
	case errors.Is(err, types.ErrPermissionDenied) || docker.IsPermissionDenied(err):
		return types.CleanupErrorPermissionDenied
	case errors.Is(err, types.ErrContainerRemoveFailed):
		return types.CleanupErrorContainerRemoveFailed
	case errors.Is(err, context.DeadlineExceeded) || docker.IsTimeout(err) || errors.Is(err, toolserver.ErrTimeout):
		return types.CleanupErrorTimeout
	default:
		// store writes are the remaining failure source on this path
		return types.CleanupErrorDatabaseUpdateFailed
	}
}
