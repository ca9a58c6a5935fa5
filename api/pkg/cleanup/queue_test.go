package cleanup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/types"
)

func newTestQueue(t *testing.T) (*Queue, *store.MockStore) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	return NewQueue(testCleanupConfig(), mockStore), mockStore
}

func TestScheduleSessionCleanupCreatesJob(t *testing.T) {
	queue, mockStore := newTestQueue(t)
	ctx := context.Background()

	mockStore.EXPECT().
		GetWaitingCleanupJob(gomock.Any(), types.SessionCleanupDedupKey("ses_1")).
		Return(nil, store.ErrNotFound)
	mockStore.EXPECT().
		CreateCleanupJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *types.CleanupJob) (*types.CleanupJob, error) {
			require.Equal(t, types.CleanupJobSessionCleanup, job.Kind)
			require.Equal(t, "session-cleanup-ses_1", job.DedupKey)
			require.Equal(t, prioritySession, job.Priority)
			require.Equal(t, 3, job.MaxAttempts)
			require.WithinDuration(t, time.Now().Add(time.Minute), job.ScheduledFor, 2*time.Second)

			var payload types.SessionCleanupPayload
			require.NoError(t, json.Unmarshal(job.Payload, &payload))
			require.Equal(t, "ses_1", payload.SessionID)
			require.Equal(t, "usr_1", payload.UserID)
			require.Equal(t, types.CleanupReasonDisconnected, payload.Reason)
			return job, nil
		})

	err := queue.ScheduleSessionCleanup(ctx, "ses_1", "usr_1", time.Minute, types.CleanupReasonDisconnected)
	require.NoError(t, err)
}

func TestScheduleSessionCleanupReplacesWaitingJob(t *testing.T) {
	queue, mockStore := newTestQueue(t)
	ctx := context.Background()

	existing := &types.CleanupJob{
		ID:           "clj_existing",
		Kind:         types.CleanupJobSessionCleanup,
		DedupKey:     types.SessionCleanupDedupKey("ses_1"),
		Status:       types.CleanupJobStatusWaiting,
		ScheduledFor: time.Now().Add(time.Minute),
	}
	mockStore.EXPECT().
		GetWaitingCleanupJob(gomock.Any(), types.SessionCleanupDedupKey("ses_1")).
		Return(existing, nil)
	// no CreateCleanupJob expectation: a second job would fail the test
	mockStore.EXPECT().
		UpdateCleanupJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *types.CleanupJob) (*types.CleanupJob, error) {
			require.Equal(t, "clj_existing", job.ID)
			require.WithinDuration(t, time.Now().Add(30*time.Minute), job.ScheduledFor, 2*time.Second)
			return job, nil
		})

	err := queue.ScheduleSessionCleanup(ctx, "ses_1", "usr_1", 30*time.Minute, types.CleanupReasonBackgroundTimeout)
	require.NoError(t, err)
}

func TestCancelSessionCleanup(t *testing.T) {
	queue, mockStore := newTestQueue(t)
	ctx := context.Background()

	mockStore.EXPECT().
		GetWaitingCleanupJob(gomock.Any(), types.SessionCleanupDedupKey("ses_1")).
		Return(&types.CleanupJob{ID: "clj_waiting"}, nil)
	mockStore.EXPECT().DeleteCleanupJob(gomock.Any(), "clj_waiting").Return(nil)

	require.NoError(t, queue.CancelSessionCleanup(ctx, "ses_1"))
}

func TestCancelSessionCleanupWithNothingWaiting(t *testing.T) {
	queue, mockStore := newTestQueue(t)
	ctx := context.Background()

	mockStore.EXPECT().
		GetWaitingCleanupJob(gomock.Any(), gomock.Any()).
		Return(nil, store.ErrNotFound)

	require.NoError(t, queue.CancelSessionCleanup(ctx, "ses_1"))
}

func TestScheduleHealthCheckCleanupSkipsEmptyBatch(t *testing.T) {
	queue, _ := newTestQueue(t)

	// no store expectations: any call would fail the test
	require.NoError(t, queue.ScheduleHealthCheckCleanup(context.Background(), nil, types.CleanupReasonHealthCheckFailure))
}

func TestScheduleOrphanedCleanupDefaultsMaxAge(t *testing.T) {
	queue, mockStore := newTestQueue(t)
	ctx := context.Background()

	mockStore.EXPECT().
		GetWaitingCleanupJob(gomock.Any(), "orphaned-sessions-cleanup").
		Return(nil, store.ErrNotFound)
	mockStore.EXPECT().
		CreateCleanupJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *types.CleanupJob) (*types.CleanupJob, error) {
			require.Equal(t, types.CleanupJobOrphanedSessions, job.Kind)
			require.Equal(t, priorityOrphaned, job.Priority)

			var payload types.OrphanedCleanupPayload
			require.NoError(t, json.Unmarshal(job.Payload, &payload))
			require.Equal(t, int64((24*time.Hour).Seconds()), payload.MaxAgeSeconds)
			return job, nil
		})

	require.NoError(t, queue.ScheduleOrphanedCleanup(ctx, 0))
}

func TestScheduleOrphanedCleanupSkipsWhenAlreadyQueued(t *testing.T) {
	queue, mockStore := newTestQueue(t)
	ctx := context.Background()

	mockStore.EXPECT().
		GetWaitingCleanupJob(gomock.Any(), "orphaned-sessions-cleanup").
		Return(&types.CleanupJob{ID: "clj_queued"}, nil)

	require.NoError(t, queue.ScheduleOrphanedCleanup(ctx, time.Hour))
}

func TestScheduleManualCleanupRunsOnce(t *testing.T) {
	queue, mockStore := newTestQueue(t)
	ctx := context.Background()

	mockStore.EXPECT().
		CreateCleanupJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *types.CleanupJob) (*types.CleanupJob, error) {
			require.Equal(t, types.CleanupJobManual, job.Kind)
			require.Equal(t, 1, job.MaxAttempts)
			return job, nil
		})

	job, err := queue.ScheduleManualCleanup(ctx, "usr_1", []string{"ses_1", "ses_2"})
	require.NoError(t, err)
	require.NotNil(t, job)
}

func TestScheduleManualCleanupRequiresSessions(t *testing.T) {
	queue, _ := newTestQueue(t)

	_, err := queue.ScheduleManualCleanup(context.Background(), "usr_1", nil)
	require.Error(t, err)
}
