package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/semaphore"

	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// persistTimeout bounds the final job-state write so a shutdown does not
// lose the outcome of a job that already ran.
const persistTimeout = 10 * time.Second

// Dispatcher polls the store for due jobs and runs them. Claims go
// through MarkCleanupJobActive's waiting-status guard, so two
// dispatchers never execute the same job. Per-poll work is bounded by
// Concurrency, the whole subsystem by GlobalConcurrency.
type Dispatcher struct {
	cfg       config.Cleanup
	store     store.Store
	processor *Processor

	sem      *semaphore.Weighted
	lastPoll atomic.Int64
}

func NewDispatcher(cfg config.Cleanup, store store.Store, processor *Processor) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		store:     store,
		processor: processor,
		sem:       semaphore.NewWeighted(int64(cfg.GlobalConcurrency)),
	}
}

// Run polls until ctx is cancelled. It blocks, start it on its own
// goroutine. In-flight jobs left active by a cancelled run are returned
// to waiting on the next start.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Info().
		Dur("poll_interval", d.cfg.PollInterval).
		Int("concurrency", d.cfg.Concurrency).
		Int("global_concurrency", d.cfg.GlobalConcurrency).
		Msg("starting cleanup dispatcher")

	workers := pool.New().WithMaxGoroutines(d.cfg.Concurrency)
	defer workers.Wait()

	d.recoverInterruptedJobs(ctx)
	d.dispatchDue(ctx, workers)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping cleanup dispatcher")
			return
		case <-ticker.C:
			d.dispatchDue(ctx, workers)
		}
	}
}

// Healthy reports whether the poll loop ran recently. Three missed polls
// counts as stuck.
func (d *Dispatcher) Healthy() bool {
	last := d.lastPoll.Load()
	if last == 0 {
		return false
	}
	return time.Since(time.Unix(0, last)) < 3*d.cfg.PollInterval
}

func (d *Dispatcher) dispatchDue(ctx context.Context, workers *pool.Pool) {
	d.lastPoll.Store(time.Now().UnixNano())

	jobs, err := d.store.GetDueCleanupJobs(ctx, time.Now(), d.cfg.Concurrency)
	if err != nil {
		log.Error().Err(err).Msg("failed to list due cleanup jobs")
		return
	}

	for _, job := range jobs {
		claimed, err := d.store.MarkCleanupJobActive(ctx, job.ID)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to claim cleanup job")
			continue
		}
		if !claimed {
			// another dispatcher got there first
			continue
		}
		// mirror the claim's increment so retry accounting matches the row
		job.Attempts++
		job.Status = types.CleanupJobStatusActive

		workers.Go(func() {
			d.execute(ctx, job)
		})
	}
}

func (d *Dispatcher) execute(ctx context.Context, job *types.CleanupJob) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		// shutting down before the job ran; restart recovery requeues it
		return
	}
	defer d.sem.Release(1)

	result, err := d.processor.Execute(ctx, job)
	if err == nil && result != nil && !result.Success {
		err = resultError(result)
	}

	now := time.Now()
	if err == nil {
		job.Status = types.CleanupJobStatusCompleted
		job.CompletedAt = &now
		job.LastError = ""
		retain := now.Add(d.retention(job.Kind))
		job.RetainUntil = &retain

		d.persist(job)
		log.Info().
			Str("job_id", job.ID).
			Str("kind", string(job.Kind)).
			Int("processed", result.ProcessedCount).
			Int("cleaned", result.CleanedCount).
			Int64("duration_ms", result.DurationMS).
			Msg("cleanup job completed")
		return
	}

	job.LastError = err.Error()
	if job.Attempts >= job.MaxAttempts {
		job.Status = types.CleanupJobStatusFailed
		job.CompletedAt = &now
		retain := now.Add(d.cfg.FailedRetention)
		job.RetainUntil = &retain

		d.persist(job)
		log.Error().
			Err(err).
			Str("job_id", job.ID).
			Str("kind", string(job.Kind)).
			Int("attempts", job.Attempts).
			Msg("cleanup job failed permanently")
		return
	}

	delay := d.backoff(job.Attempts)
	job.Status = types.CleanupJobStatusWaiting
	job.ScheduledFor = now.Add(delay)

	d.persist(job)
	log.Warn().
		Err(err).
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Int("attempt", job.Attempts).
		Int("max_attempts", job.MaxAttempts).
		Dur("retry_in", delay).
		Msg("cleanup job failed, will retry")
}

// persist writes the job's final state with a fresh context so shutdown
// cannot lose a finished job's outcome.
func (d *Dispatcher) persist(job *types.CleanupJob) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if _, err := d.store.UpdateCleanupJob(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to persist cleanup job state")
	}
}

// recoverInterruptedJobs returns jobs left active by a previous process
// to waiting. The claim already counted their attempt, so a job that
// keeps killing the process still runs out of attempts.
func (d *Dispatcher) recoverInterruptedJobs(ctx context.Context) {
	jobs, err := d.store.ListCleanupJobs(ctx, &store.ListCleanupJobsQuery{
		Status: types.CleanupJobStatusActive,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list interrupted cleanup jobs")
		return
	}

	for _, job := range jobs {
		now := time.Now()
		if job.Attempts >= job.MaxAttempts {
			job.Status = types.CleanupJobStatusFailed
			job.LastError = "interrupted with no attempts left"
			job.CompletedAt = &now
			retain := now.Add(d.cfg.FailedRetention)
			job.RetainUntil = &retain
		} else {
			job.Status = types.CleanupJobStatusWaiting
			job.ScheduledFor = now
		}
		if _, err := d.store.UpdateCleanupJob(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to requeue interrupted cleanup job")
			continue
		}
		log.Warn().
			Str("job_id", job.ID).
			Str("status", string(job.Status)).
			Msg("recovered cleanup job interrupted by restart")
	}
}

// backoff doubles per attempt: base, 2x base, 4x base.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return d.cfg.BackoffBase << (attempt - 1)
}

func (d *Dispatcher) retention(kind types.CleanupJobKind) time.Duration {
	if kind == types.CleanupJobOrphanedSessions {
		return d.cfg.OrphanRetention
	}
	return d.cfg.CompletedRetention
}

func resultError(result *types.CleanupResult) error {
	if len(result.Errors) > 0 {
		first := result.Errors[0]
		return fmt.Errorf("%s: %s", first.Code, first.Message)
	}
	return errors.New("cleanup reported failure")
}
