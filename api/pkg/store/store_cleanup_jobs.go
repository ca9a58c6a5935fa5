package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhq/atelier/api/pkg/types"
)

func (s *PostgresStore) CreateCleanupJob(ctx context.Context, job *types.CleanupJob) (*types.CleanupJob, error) {
	if job.ID == "" {
		return nil, fmt.Errorf("cleanup job id not specified")
	}
	if job.Kind == "" {
		return nil, fmt.Errorf("cleanup job kind not specified")
	}

	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	if job.Status == "" {
		job.Status = types.CleanupJobStatusWaiting
	}
	if job.ScheduledFor.IsZero() {
		job.ScheduledFor = job.CreatedAt
	}

	err := s.gdb.WithContext(ctx).Create(job).Error
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *PostgresStore) GetCleanupJob(ctx context.Context, id string) (*types.CleanupJob, error) {
	var job types.CleanupJob
	err := s.gdb.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetWaitingCleanupJob finds the waiting job for a dedup key, if any.
// The queue uses this to replace rather than duplicate scheduled work.
func (s *PostgresStore) GetWaitingCleanupJob(ctx context.Context, dedupKey string) (*types.CleanupJob, error) {
	var job types.CleanupJob
	err := s.gdb.WithContext(ctx).
		Where("dedup_key = ? AND status = ?", dedupKey, types.CleanupJobStatusWaiting).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (s *PostgresStore) UpdateCleanupJob(ctx context.Context, job *types.CleanupJob) (*types.CleanupJob, error) {
	if job.ID == "" {
		return nil, fmt.Errorf("id not specified")
	}

	job.UpdatedAt = time.Now()
	err := s.gdb.WithContext(ctx).Save(job).Error
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *PostgresStore) DeleteCleanupJob(ctx context.Context, id string) error {
	return s.gdb.WithContext(ctx).Where("id = ?", id).Delete(&types.CleanupJob{}).Error
}

func (s *PostgresStore) ListCleanupJobs(ctx context.Context, q *ListCleanupJobsQuery) ([]*types.CleanupJob, error) {
	db := s.gdb.WithContext(ctx).Model(&types.CleanupJob{})
	if q.Kind != "" {
		db = db.Where("kind = ?", q.Kind)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var jobs []*types.CleanupJob
	err := db.Order("created_at DESC").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *PostgresStore) GetDueCleanupJobs(ctx context.Context, now time.Time, limit int) ([]*types.CleanupJob, error) {
	var jobs []*types.CleanupJob
	err := s.gdb.WithContext(ctx).
		Where("status = ?", types.CleanupJobStatusWaiting).
		Where("scheduled_for <= ?", now).
		Order("priority ASC, created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkCleanupJobActive claims a waiting job. The waiting guard in the
// WHERE clause makes the claim safe against a concurrent dispatcher.
func (s *PostgresStore) MarkCleanupJobActive(ctx context.Context, id string) (bool, error) {
	result := s.gdb.WithContext(ctx).
		Model(&types.CleanupJob{}).
		Where("id = ? AND status = ?", id, types.CleanupJobStatusWaiting).
		Updates(map[string]interface{}{
			"status":     types.CleanupJobStatusActive,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *PostgresStore) GetCleanupQueueStats(ctx context.Context) (*types.CleanupQueueStats, error) {
	stats := &types.CleanupQueueStats{
		ByKind: map[string]int64{},
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	err := s.gdb.WithContext(ctx).
		Model(&types.CleanupJob{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		switch types.CleanupJobStatus(row.Status) {
		case types.CleanupJobStatusWaiting:
			stats.Waiting = row.Count
		case types.CleanupJobStatusActive:
			stats.Active = row.Count
		case types.CleanupJobStatusCompleted:
			stats.Completed = row.Count
		case types.CleanupJobStatusFailed:
			stats.Failed = row.Count
		}
	}

	type kindCount struct {
		Kind  string
		Count int64
	}
	var byKind []kindCount
	err = s.gdb.WithContext(ctx).
		Model(&types.CleanupJob{}).
		Select("kind, count(*) as count").
		Group("kind").
		Find(&byKind).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byKind {
		stats.ByKind[row.Kind] = row.Count
	}

	var oldest types.CleanupJob
	err = s.gdb.WithContext(ctx).
		Where("status = ?", types.CleanupJobStatusWaiting).
		Order("scheduled_for ASC").
		First(&oldest).Error
	if err == nil {
		stats.OldestDue = &oldest.ScheduledFor
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return stats, nil
}

// PurgeExpiredCleanupJobs removes terminal jobs whose retention window
// has passed.
func (s *PostgresStore) PurgeExpiredCleanupJobs(ctx context.Context, now time.Time) (int64, error) {
	result := s.gdb.WithContext(ctx).
		Where("status IN ?", []types.CleanupJobStatus{
			types.CleanupJobStatusCompleted,
			types.CleanupJobStatusFailed,
		}).
		Where("retain_until IS NOT NULL AND retain_until < ?", now).
		Delete(&types.CleanupJob{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
