package workspace

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/docker"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// RecoverSessions reconciles session records with the containers Docker
// actually has after a process restart. Sessions whose container is
// still running are re-registered, sessions whose container is gone are
// marked stopped, containers with no matching session record get an
// orphan cleanup enqueued.
func (m *Manager) RecoverSessions(ctx context.Context) error {
	containers, err := m.runtime.ListSessionContainers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list session containers: %w", err)
	}

	alive := make(map[string]*docker.SessionContainer, len(containers))
	for _, c := range containers {
		if c.SessionID != "" {
			alive[c.SessionID] = c
		}
	}

	sessions, err := m.store.ListSessions(ctx, &store.ListSessionsQuery{
		Statuses: types.ActiveSessionStatuses,
	})
	if err != nil {
		return fmt.Errorf("failed to list active sessions: %w", err)
	}

	known := make(map[string]struct{}, len(sessions))
	recovered, lost := 0, 0
	for _, session := range sessions {
		known[session.ID] = struct{}{}

		if c, ok := alive[session.ID]; ok && c.Running {
			m.registry.Register(session.ID, session.Connection())
			recovered++
			continue
		}

		lost++
		log.Warn().
			Str("session_id", session.ID).
			Str("status", string(session.Status)).
			Msg("session container gone, marking stopped")
		if err := m.store.UpdateSessionStatus(ctx, session.ID, types.SessionStatusStopped, "container not found after restart"); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", session.ID).
				Msg("failed to mark lost session stopped")
		}
	}

	orphans := 0
	for sessionID := range alive {
		if _, ok := known[sessionID]; !ok {
			orphans++
		}
	}
	if orphans > 0 {
		if err := m.cleanup.ScheduleOrphanedCleanup(ctx, 0); err != nil {
			log.Warn().
				Err(err).
				Msg("failed to schedule orphaned container cleanup")
		}
	}

	log.Info().
		Int("recovered", recovered).
		Int("lost", lost).
		Int("orphaned_containers", orphans).
		Msg("session recovery complete")
	return nil
}
