package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierhq/atelier/api/pkg/docker"
	"github.com/atelierhq/atelier/api/pkg/types"
)

func TestStopSession(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:          "ses_1",
		UserID:      "usr_1",
		Status:      types.SessionStatusRunning,
		ContainerID: "ctr_1",
	}
	tm.registry.Register("ses_1", session.Connection())

	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil)
	tm.runtime.On("StopContainer", mock.Anything, "ctr_1", time.Second).Return(nil)
	tm.runtime.On("RemoveContainer", mock.Anything, "ctr_1", true).Return(nil)
	tm.cleanup.On("CancelSessionCleanup", mock.Anything, "ses_1").Return(nil)
	tm.store.EXPECT().UpdateSessionStatus(gomock.Any(), "ses_1", types.SessionStatusStopped, "").Return(nil)

	err := tm.manager.StopSession(ctx, "ses_1", types.CleanupReasonDisconnected)
	require.NoError(t, err)

	_, ok := tm.registry.Lookup("ses_1")
	require.False(t, ok)
	tm.runtime.AssertExpectations(t)
}

func TestStopSessionToleratesStopFailure(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:          "ses_1",
		UserID:      "usr_1",
		Status:      types.SessionStatusRunning,
		ContainerID: "ctr_1",
	}
	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil)
	tm.runtime.On("StopContainer", mock.Anything, "ctr_1", mock.Anything).Return(errors.New("stop timed out"))
	tm.runtime.On("RemoveContainer", mock.Anything, "ctr_1", true).Return(nil)
	tm.cleanup.On("CancelSessionCleanup", mock.Anything, "ses_1").Return(nil)
	tm.store.EXPECT().UpdateSessionStatus(gomock.Any(), "ses_1", types.SessionStatusStopped, "").Return(nil)

	err := tm.manager.StopSession(ctx, "ses_1", types.CleanupReasonHealthCheckFailure)
	require.NoError(t, err)
}

func TestStopSessionRemoveFailureLeavesErrorState(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:          "ses_1",
		UserID:      "usr_1",
		Status:      types.SessionStatusRunning,
		ContainerID: "ctr_1",
	}
	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil)
	tm.runtime.On("StopContainer", mock.Anything, "ctr_1", mock.Anything).Return(nil)
	tm.runtime.On("RemoveContainer", mock.Anything, "ctr_1", true).Return(errors.New("device busy"))
	tm.store.EXPECT().UpdateSessionStatus(gomock.Any(), "ses_1", types.SessionStatusError, gomock.Any()).Return(nil)

	err := tm.manager.StopSession(ctx, "ses_1", types.CleanupReasonDisconnected)
	require.ErrorIs(t, err, types.ErrContainerRemoveFailed)
}

func TestStopSessionAlreadyStopped(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(&types.WorkspaceSession{
		ID:     "ses_1",
		Status: types.SessionStatusStopped,
	}, nil)

	err := tm.manager.StopSession(ctx, "ses_1", types.CleanupReasonManual)
	require.NoError(t, err)

	tm.runtime.AssertNotCalled(t, "StopContainer", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteWorkspaceConflictsWithActiveSessions(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.store.EXPECT().GetWorkspace(gomock.Any(), "ws_1").Return(&types.Workspace{ID: "ws_1", UserID: "usr_1"}, nil)
	tm.store.EXPECT().ListSessions(gomock.Any(), gomock.Any()).Return([]*types.WorkspaceSession{
		{ID: "ses_1", Status: types.SessionStatusRunning},
	}, nil)

	_, err := tm.manager.DeleteWorkspace(ctx, "usr_1", "ws_1", false)
	require.ErrorIs(t, err, types.ErrWorkspaceBusy)
}

func TestDeleteWorkspaceWrongUser(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.store.EXPECT().GetWorkspace(gomock.Any(), "ws_1").Return(&types.Workspace{ID: "ws_1", UserID: "usr_owner"}, nil)

	_, err := tm.manager.DeleteWorkspace(ctx, "usr_other", "ws_1", false)
	require.ErrorIs(t, err, types.ErrPermissionDenied)
}

func TestDeleteWorkspaceForceDeletesRecordLast(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.store.EXPECT().GetWorkspace(gomock.Any(), "ws_1").Return(&types.Workspace{ID: "ws_1", UserID: "usr_1"}, nil)
	tm.store.EXPECT().ListSessions(gomock.Any(), gomock.Any()).Return([]*types.WorkspaceSession{
		{ID: "ses_a", UserID: "usr_1", WorkspaceID: "ws_1", Status: types.SessionStatusRunning, ContainerID: "ctr_a"},
		{ID: "ses_b", UserID: "usr_1", WorkspaceID: "ws_1", Status: types.SessionStatusStopped},
	}, nil)

	tm.runtime.On("StopContainer", mock.Anything, "ctr_a", mock.Anything).Return(nil)
	tm.runtime.On("RemoveContainer", mock.Anything, "ctr_a", true).Return(nil)
	tm.cleanup.On("CancelSessionCleanup", mock.Anything, mock.Anything).Return(nil)

	gomock.InOrder(
		tm.store.EXPECT().DeleteSession(gomock.Any(), "ses_a").Return(nil),
		tm.store.EXPECT().DeleteSession(gomock.Any(), "ses_b").Return(nil),
		tm.store.EXPECT().DeleteWorkspace(gomock.Any(), "ws_1").Return(nil),
	)

	result, err := tm.manager.DeleteWorkspace(ctx, "usr_1", "ws_1", true)
	require.NoError(t, err)
	require.Equal(t, []string{"ses_a", "ses_b"}, result.DeletedSessions)
	require.Empty(t, result.Skipped)
	require.True(t, result.ArchiveDeleted)
	require.True(t, result.ContextDeleted)
}

func TestDeleteWorkspaceSkipsSessionOnRemoveFailure(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.store.EXPECT().GetWorkspace(gomock.Any(), "ws_1").Return(&types.Workspace{ID: "ws_1", UserID: "usr_1"}, nil)
	tm.store.EXPECT().ListSessions(gomock.Any(), gomock.Any()).Return([]*types.WorkspaceSession{
		{ID: "ses_stuck", UserID: "usr_1", WorkspaceID: "ws_1", Status: types.SessionStatusStopped, ContainerID: "ctr_stuck"},
	}, nil)

	tm.runtime.On("StopContainer", mock.Anything, "ctr_stuck", mock.Anything).Return(nil)
	tm.runtime.On("RemoveContainer", mock.Anything, "ctr_stuck", true).Return(errors.New("device busy"))

	// the workspace record must survive so a re-run can retry the session
	result, err := tm.manager.DeleteWorkspace(ctx, "usr_1", "ws_1", false)
	require.Error(t, err)
	require.Equal(t, []string{"ses_stuck"}, result.Skipped)
	require.Empty(t, result.DeletedSessions)
}

func TestRecoverSessions(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.runtime.On("ListSessionContainers", mock.Anything).Return([]*docker.SessionContainer{
		{ContainerID: "ctr_a", ContainerName: "atelier-session-a", SessionID: "ses_a", Running: true},
		{ContainerID: "ctr_orphan", ContainerName: "atelier-session-gone", SessionID: "ses_gone", Running: true},
	}, nil)

	tm.store.EXPECT().ListSessions(gomock.Any(), gomock.Any()).Return([]*types.WorkspaceSession{
		{ID: "ses_a", UserID: "usr_1", Status: types.SessionStatusRunning, ContainerID: "ctr_a", ContainerName: "atelier-session-a", ToolServerPort: 10001},
		{ID: "ses_b", UserID: "usr_1", Status: types.SessionStatusInitializing},
	}, nil)
	tm.store.EXPECT().UpdateSessionStatus(gomock.Any(), "ses_b", types.SessionStatusStopped, gomock.Any()).Return(nil)
	tm.cleanup.On("ScheduleOrphanedCleanup", mock.Anything, time.Duration(0)).Return(nil)

	err := tm.manager.RecoverSessions(ctx)
	require.NoError(t, err)

	conn, ok := tm.registry.Lookup("ses_a")
	require.True(t, ok)
	require.Equal(t, "ctr_a", conn.ContainerID)

	_, ok = tm.registry.Lookup("ses_b")
	require.False(t, ok)

	tm.cleanup.AssertExpectations(t)
}
