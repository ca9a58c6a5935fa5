// Package cleanup runs the durable teardown queue. The session lifecycle
// schedules jobs here, a polling dispatcher claims and executes them with
// bounded concurrency, failed jobs retry with exponential backoff, and
// terminal jobs are retained for inspection until their retention window
// lapses.
package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// Lower number dispatches first.
const (
	prioritySession     = 1
	priorityHealthCheck = 2
	priorityOrphaned    = 3
)

// orphanedDedupKey keeps at most one orphan sweep waiting at a time.
const orphanedDedupKey = "orphaned-sessions-cleanup"

// Queue schedules cleanup jobs. All state lives in the store, so queued
// work survives process restarts.
type Queue struct {
	cfg   config.Cleanup
	store store.Store
}

func NewQueue(cfg config.Cleanup, store store.Store) *Queue {
	return &Queue{
		cfg:   cfg,
		store: store,
	}
}

// ScheduleSessionCleanup queues teardown of a single session after delay.
// At most one waiting job exists per session: scheduling again moves the
// existing job's due time instead of adding a second one, so a
// disconnect-reconnect-disconnect series ends up with one job at the
// latest deadline.
func (q *Queue) ScheduleSessionCleanup(ctx context.Context, sessionID, userID string, delay time.Duration, reason types.CleanupReason) error {
	payload, err := json.Marshal(&types.SessionCleanupPayload{
		SessionID: sessionID,
		UserID:    userID,
		Reason:    reason,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session cleanup payload: %w", err)
	}

	scheduledFor := time.Now().Add(delay)
	dedupKey := types.SessionCleanupDedupKey(sessionID)

	existing, err := q.store.GetWaitingCleanupJob(ctx, dedupKey)
	if err == nil {
		existing.ScheduledFor = scheduledFor
		existing.Payload = payload
		existing.Priority = prioritySession
		if _, err := q.store.UpdateCleanupJob(ctx, existing); err != nil {
			return fmt.Errorf("failed to reschedule cleanup job %s: %w", existing.ID, err)
		}
		log.Debug().
			Str("job_id", existing.ID).
			Str("session_id", sessionID).
			Time("scheduled_for", scheduledFor).
			Str("reason", string(reason)).
			Msg("session cleanup rescheduled")
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up cleanup job for session %s: %w", sessionID, err)
	}

	job := &types.CleanupJob{
		ID:           system.GenerateCleanupJobID(),
		Kind:         types.CleanupJobSessionCleanup,
		DedupKey:     dedupKey,
		Priority:     prioritySession,
		Payload:      payload,
		MaxAttempts:  q.cfg.MaxAttempts,
		ScheduledFor: scheduledFor,
	}
	if _, err := q.store.CreateCleanupJob(ctx, job); err != nil {
		return fmt.Errorf("failed to create cleanup job for session %s: %w", sessionID, err)
	}
	log.Info().
		Str("job_id", job.ID).
		Str("session_id", sessionID).
		Time("scheduled_for", scheduledFor).
		Str("reason", string(reason)).
		Msg("session cleanup scheduled")
	return nil
}

// CancelSessionCleanup removes the waiting cleanup job for a session, if
// there is one. A job already claimed by the dispatcher is left alone;
// its handler re-checks the session's connection count before acting.
func (q *Queue) CancelSessionCleanup(ctx context.Context, sessionID string) error {
	job, err := q.store.GetWaitingCleanupJob(ctx, types.SessionCleanupDedupKey(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up cleanup job for session %s: %w", sessionID, err)
	}
	if err := q.store.DeleteCleanupJob(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to delete cleanup job %s: %w", job.ID, err)
	}
	log.Debug().
		Str("job_id", job.ID).
		Str("session_id", sessionID).
		Msg("session cleanup cancelled")
	return nil
}

// ScheduleHealthCheckCleanup queues teardown of sessions that failed a
// health sweep. Each batch is its own job; the handler re-probes every
// session before stopping it, so a transient failure costs nothing.
func (q *Queue) ScheduleHealthCheckCleanup(ctx context.Context, sessionIDs []string, reason types.CleanupReason) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	if reason == "" {
		reason = types.CleanupReasonHealthCheckFailure
	}
	payload, err := json.Marshal(&types.HealthCheckCleanupPayload{
		SessionIDs: sessionIDs,
		Reason:     reason,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal health check payload: %w", err)
	}

	job := &types.CleanupJob{
		ID:           system.GenerateCleanupJobID(),
		Kind:         types.CleanupJobHealthCheck,
		Priority:     priorityHealthCheck,
		Payload:      payload,
		MaxAttempts:  q.cfg.MaxAttempts,
		ScheduledFor: time.Now(),
	}
	if _, err := q.store.CreateCleanupJob(ctx, job); err != nil {
		return fmt.Errorf("failed to create health check cleanup job: %w", err)
	}
	log.Info().
		Str("job_id", job.ID).
		Strs("session_ids", sessionIDs).
		Msg("health check cleanup scheduled")
	return nil
}

// ScheduleOrphanedCleanup queues a sweep for sessions and containers
// nothing references anymore. maxAge <= 0 means the configured default.
// If a sweep is already waiting the call is a no-op: the queued one will
// cover the same ground.
func (q *Queue) ScheduleOrphanedCleanup(ctx context.Context, maxAge time.Duration) error {
	if maxAge <= 0 {
		maxAge = q.cfg.OrphanMaxAge
	}

	_, err := q.store.GetWaitingCleanupJob(ctx, orphanedDedupKey)
	if err == nil {
		log.Debug().Msg("orphaned session sweep already queued")
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up orphaned cleanup job: %w", err)
	}

	payload, err := json.Marshal(&types.OrphanedCleanupPayload{
		MaxAgeSeconds: int64(maxAge.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal orphaned cleanup payload: %w", err)
	}

	job := &types.CleanupJob{
		ID:           system.GenerateCleanupJobID(),
		Kind:         types.CleanupJobOrphanedSessions,
		DedupKey:     orphanedDedupKey,
		Priority:     priorityOrphaned,
		Payload:      payload,
		MaxAttempts:  q.cfg.MaxAttempts,
		ScheduledFor: time.Now(),
	}
	if _, err := q.store.CreateCleanupJob(ctx, job); err != nil {
		return fmt.Errorf("failed to create orphaned cleanup job: %w", err)
	}
	log.Info().
		Str("job_id", job.ID).
		Dur("max_age", maxAge).
		Msg("orphaned session cleanup scheduled")
	return nil
}

// ScheduleManualCleanup queues an operator-requested teardown of specific
// sessions and returns the job so the caller can report its ID. Manual
// jobs run once: a failed manual cleanup is reported, not retried.
func (q *Queue) ScheduleManualCleanup(ctx context.Context, userID string, sessionIDs []string) (*types.CleanupJob, error) {
	if len(sessionIDs) == 0 {
		return nil, fmt.Errorf("no session ids specified")
	}
	payload, err := json.Marshal(&types.ManualCleanupPayload{
		UserID:     userID,
		SessionIDs: sessionIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manual cleanup payload: %w", err)
	}

	job := &types.CleanupJob{
		ID:           system.GenerateCleanupJobID(),
		Kind:         types.CleanupJobManual,
		Priority:     prioritySession,
		Payload:      payload,
		MaxAttempts:  1,
		ScheduledFor: time.Now(),
	}
	created, err := q.store.CreateCleanupJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create manual cleanup job: %w", err)
	}
	log.Info().
		Str("job_id", created.ID).
		Str("user_id", userID).
		Strs("session_ids", sessionIDs).
		Msg("manual cleanup scheduled")
	return created, nil
}

// Stats reports queue counts for the status endpoint. DispatcherOK is
// left false; the caller fills it in from the running dispatcher.
func (q *Queue) Stats(ctx context.Context) (*types.CleanupQueueStats, error) {
	return q.store.GetCleanupQueueStats(ctx)
}

// PurgeExpired deletes terminal jobs whose retention window has passed.
func (q *Queue) PurgeExpired(ctx context.Context) (int64, error) {
	return q.store.PurgeExpiredCleanupJobs(ctx, time.Now())
}
