package store

import (
	"encoding/json"
	"time"

	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

func (suite *PostgresStoreTestSuite) newTestCleanupJob(kind types.CleanupJobKind, priority int, scheduledFor time.Time) *types.CleanupJob {
	payload, err := json.Marshal(types.SessionCleanupPayload{
		SessionID: system.GenerateSessionID(),
		UserID:    "test-" + system.GenerateUUID(),
		Reason:    types.CleanupReasonDisconnected,
	})
	suite.Require().NoError(err)

	job := &types.CleanupJob{
		ID:           system.GenerateCleanupJobID(),
		Kind:         kind,
		DedupKey:     "test-" + system.GenerateUUID(),
		Priority:     priority,
		Payload:      payload,
		MaxAttempts:  3,
		ScheduledFor: scheduledFor,
	}
	created, err := suite.db.CreateCleanupJob(suite.ctx, job)
	suite.Require().NoError(err)
	return created
}

func (suite *PostgresStoreTestSuite) TestCreateAndGetCleanupJob() {
	job := suite.newTestCleanupJob(types.CleanupJobSessionCleanup, 1, time.Now())

	fetched, err := suite.db.GetCleanupJob(suite.ctx, job.ID)
	suite.NoError(err)
	suite.Equal(job.ID, fetched.ID)
	suite.Equal(types.CleanupJobSessionCleanup, fetched.Kind)
	suite.Equal(types.CleanupJobStatusWaiting, fetched.Status)
	suite.Equal(0, fetched.Attempts)

	var payload types.SessionCleanupPayload
	suite.NoError(json.Unmarshal(fetched.Payload, &payload))
	suite.Equal(types.CleanupReasonDisconnected, payload.Reason)
}

func (suite *PostgresStoreTestSuite) TestGetWaitingCleanupJobByDedupKey() {
	job := suite.newTestCleanupJob(types.CleanupJobSessionCleanup, 1, time.Now().Add(time.Minute))

	found, err := suite.db.GetWaitingCleanupJob(suite.ctx, job.DedupKey)
	suite.NoError(err)
	suite.Equal(job.ID, found.ID)

	// once the job leaves the waiting state the key no longer matches
	claimed, err := suite.db.MarkCleanupJobActive(suite.ctx, job.ID)
	suite.NoError(err)
	suite.True(claimed)

	_, err = suite.db.GetWaitingCleanupJob(suite.ctx, job.DedupKey)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *PostgresStoreTestSuite) TestMarkCleanupJobActiveClaimsOnce() {
	job := suite.newTestCleanupJob(types.CleanupJobSessionCleanup, 1, time.Now())

	claimed, err := suite.db.MarkCleanupJobActive(suite.ctx, job.ID)
	suite.NoError(err)
	suite.True(claimed)

	// a second claim loses
	claimed, err = suite.db.MarkCleanupJobActive(suite.ctx, job.ID)
	suite.NoError(err)
	suite.False(claimed)

	fetched, err := suite.db.GetCleanupJob(suite.ctx, job.ID)
	suite.NoError(err)
	suite.Equal(types.CleanupJobStatusActive, fetched.Status)
	suite.Equal(1, fetched.Attempts)
}

func (suite *PostgresStoreTestSuite) TestGetDueCleanupJobsOrderingAndDueness() {
	now := time.Now()

	low := suite.newTestCleanupJob(types.CleanupJobOrphanedSessions, 3, now.Add(-time.Minute))
	high := suite.newTestCleanupJob(types.CleanupJobSessionCleanup, 1, now.Add(-time.Minute))
	future := suite.newTestCleanupJob(types.CleanupJobSessionCleanup, 1, now.Add(time.Hour))

	jobs, err := suite.db.GetDueCleanupJobs(suite.ctx, now, 10)
	suite.NoError(err)

	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	suite.Contains(ids, high.ID)
	suite.Contains(ids, low.ID)
	suite.NotContains(ids, future.ID)

	// priority 1 sorts ahead of priority 3
	highIdx, lowIdx := -1, -1
	for i, id := range ids {
		if id == high.ID {
			highIdx = i
		}
		if id == low.ID {
			lowIdx = i
		}
	}
	suite.Less(highIdx, lowIdx)
}

func (suite *PostgresStoreTestSuite) TestPurgeExpiredCleanupJobs() {
	expired := suite.newTestCleanupJob(types.CleanupJobManual, 1, time.Now())
	kept := suite.newTestCleanupJob(types.CleanupJobManual, 1, time.Now())

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	done := time.Now()

	expired.Status = types.CleanupJobStatusCompleted
	expired.CompletedAt = &done
	expired.RetainUntil = &past
	_, err := suite.db.UpdateCleanupJob(suite.ctx, expired)
	suite.Require().NoError(err)

	kept.Status = types.CleanupJobStatusCompleted
	kept.CompletedAt = &done
	kept.RetainUntil = &future
	_, err = suite.db.UpdateCleanupJob(suite.ctx, kept)
	suite.Require().NoError(err)

	purged, err := suite.db.PurgeExpiredCleanupJobs(suite.ctx, time.Now())
	suite.NoError(err)
	suite.GreaterOrEqual(purged, int64(1))

	_, err = suite.db.GetCleanupJob(suite.ctx, expired.ID)
	suite.ErrorIs(err, ErrNotFound)

	_, err = suite.db.GetCleanupJob(suite.ctx, kept.ID)
	suite.NoError(err)
}

func (suite *PostgresStoreTestSuite) TestGetCleanupQueueStats() {
	waiting := suite.newTestCleanupJob(types.CleanupJobSessionCleanup, 1, time.Now())
	active := suite.newTestCleanupJob(types.CleanupJobHealthCheck, 2, time.Now())

	claimed, err := suite.db.MarkCleanupJobActive(suite.ctx, active.ID)
	suite.Require().NoError(err)
	suite.Require().True(claimed)

	stats, err := suite.db.GetCleanupQueueStats(suite.ctx)
	suite.NoError(err)
	suite.GreaterOrEqual(stats.Waiting, int64(1))
	suite.GreaterOrEqual(stats.Active, int64(1))
	suite.GreaterOrEqual(stats.ByKind[string(types.CleanupJobSessionCleanup)], int64(1))
	suite.NotNil(stats.OldestDue)
	suite.False(stats.OldestDue.After(waiting.ScheduledFor.Add(time.Second)))
}
