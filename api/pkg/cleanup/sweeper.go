package cleanup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// Sweeper owns the periodic jobs around the queue: probing running
// sessions for dead tool servers, kicking off orphan sweeps and purging
// terminal jobs past retention. Findings turn into queued cleanup jobs;
// the sweeper itself never stops a session.
type Sweeper struct {
	cfg          config.Cleanup
	store        store.Store
	queue        *Queue
	prober       HealthProber
	probeTimeout time.Duration

	scheduler gocron.Scheduler
}

type SweeperConfig struct {
	Config       config.Cleanup
	Store        store.Store
	Queue        *Queue
	Prober       HealthProber
	ProbeTimeout time.Duration
}

func NewSweeper(cfg SweeperConfig) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep scheduler: %w", err)
	}
	return &Sweeper{
		cfg:          cfg.Config,
		store:        cfg.Store,
		queue:        cfg.Queue,
		prober:       cfg.Prober,
		probeTimeout: cfg.ProbeTimeout,
		scheduler:    scheduler,
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.HealthCheckInterval),
		gocron.NewTask(func() { s.healthSweep(ctx) }),
		gocron.WithName("session-health-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule health sweep: %w", err)
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.OrphanSweepInterval),
		gocron.NewTask(func() { s.orphanSweep(ctx) }),
		gocron.WithName("orphaned-session-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule orphan sweep: %w", err)
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.RetentionSweepInterval),
		gocron.NewTask(func() { s.retentionSweep(ctx) }),
		gocron.WithName("cleanup-job-retention-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	s.scheduler.Start()
	log.Info().
		Dur("health_check_interval", s.cfg.HealthCheckInterval).
		Dur("orphan_sweep_interval", s.cfg.OrphanSweepInterval).
		Dur("retention_sweep_interval", s.cfg.RetentionSweepInterval).
		Msg("cleanup sweeper started")
	return nil
}

func (s *Sweeper) Stop() error {
	err := s.scheduler.Shutdown()
	if err != nil {
		return fmt.Errorf("failed to shutdown sweep scheduler: %w", err)
	}
	return nil
}

// healthSweep probes every running session's tool server. Unresponsive
// sessions are handed to the queue, where the job handler probes once
// more before stopping anything.
func (s *Sweeper) healthSweep(ctx context.Context) {
	sessions, err := s.store.ListSessions(ctx, &store.ListSessionsQuery{
		Statuses: []types.SessionStatus{types.SessionStatusRunning},
	})
	if err != nil {
		log.Error().Err(err).Msg("health sweep failed to list sessions")
		return
	}
	if len(sessions) == 0 {
		return
	}

	var mu sync.Mutex
	var failed []string

	workers := pool.New().WithMaxGoroutines(s.cfg.GlobalConcurrency)
	for _, session := range sessions {
		workers.Go(func() {
			probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
			defer cancel()

			health, err := s.prober.Health(probeCtx, session.Connection())
			if err == nil && health.Healthy() {
				return
			}
			log.Warn().
				Str("session_id", session.ID).
				Err(err).
				Msg("session failed health probe")

			mu.Lock()
			failed = append(failed, session.ID)
			mu.Unlock()
		})
	}
	workers.Wait()

	if len(failed) == 0 {
		log.Debug().Int("sessions", len(sessions)).Msg("health sweep passed")
		return
	}
	if err := s.queue.ScheduleHealthCheckCleanup(ctx, failed, types.CleanupReasonHealthCheckFailure); err != nil {
		log.Error().Err(err).Msg("failed to schedule health check cleanup")
	}
}

func (s *Sweeper) orphanSweep(ctx context.Context) {
	if err := s.queue.ScheduleOrphanedCleanup(ctx, s.cfg.OrphanMaxAge); err != nil {
		log.Error().Err(err).Msg("failed to schedule orphaned session cleanup")
	}
}

func (s *Sweeper) retentionSweep(ctx context.Context) {
	purged, err := s.queue.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to purge expired cleanup jobs")
		return
	}
	if purged > 0 {
		log.Info().Int64("purged", purged).Msg("purged expired cleanup jobs")
	}
}
