package workspace

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

func TestSaveSession(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:             "ses_1",
		UserID:         "usr_1",
		WorkspaceID:    "ws_1",
		Status:         types.SessionStatusRunning,
		IsReady:        true,
		ContainerID:    "ctr_1",
		ContainerName:  "atelier-session-1",
		ToolServerPort: 10002,
	}
	tm.registry.Register("ses_1", session.Connection())

	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil).Times(2)

	tm.tools.On("CreateArchive", mock.Anything, mock.Anything, mock.MatchedBy(func(req *toolserver.CreateArchiveRequest) bool {
		return req.SourcePath == "/workspace" && len(req.Exclude) > 0
	})).Return(&toolserver.ArchiveResponse{Path: "/tmp/export.tar.gz", SizeBytes: 8, FileCount: 3}, nil)

	// docker copy hands back a tar stream wrapping the archive file
	wrapped, err := tarWrapFile("export.tar.gz", []byte("gz-bytes"))
	require.NoError(t, err)
	tm.runtime.On("CopyFromContainer", mock.Anything, "ctr_1", "/tmp/export.tar.gz").Return(io.NopCloser(wrapped), nil)

	tm.store.EXPECT().MarkSessionSaved(gomock.Any(), "ses_1", gomock.Any()).Return(nil)

	_, err = tm.manager.SaveSession(ctx, "usr_1", "ses_1")
	require.NoError(t, err)

	rc, err := tm.manager.filestore.DownloadFile(ctx, filestore.WorkspaceArchivePath("ws_1"))
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "gz-bytes", string(stored))
}

func TestSaveSessionRequiresWorkspace(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(&types.WorkspaceSession{
		ID:      "ses_1",
		UserID:  "usr_1",
		Status:  types.SessionStatusRunning,
		IsReady: true,
	}, nil)

	_, err := tm.manager.SaveSession(ctx, "usr_1", "ses_1")
	require.ErrorContains(t, err, "no workspace")
}

func TestSaveSessionRequiresReadySession(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(&types.WorkspaceSession{
		ID:          "ses_1",
		UserID:      "usr_1",
		WorkspaceID: "ws_1",
		Status:      types.SessionStatusRunning,
		IsReady:     false,
	}, nil)

	_, err := tm.manager.SaveSession(ctx, "usr_1", "ses_1")
	require.ErrorIs(t, err, types.ErrSessionNotReady)

	tm.tools.AssertNotCalled(t, "CreateArchive", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestoreArchiveNothingSaved(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:             "ses_1",
		UserID:         "usr_1",
		WorkspaceID:    "ws_empty",
		ContainerID:    "ctr_1",
		ContainerName:  "atelier-session-1",
		ToolServerPort: 10002,
	}

	err := tm.manager.restoreArchive(ctx, session)
	require.NoError(t, err)

	tm.runtime.AssertNotCalled(t, "CopyToContainer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tm.tools.AssertNotCalled(t, "ExtractArchive", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadToSession(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:             "ses_1",
		UserID:         "usr_1",
		Status:         types.SessionStatusRunning,
		IsReady:        true,
		ContainerID:    "ctr_1",
		ContainerName:  "atelier-session-1",
		ToolServerPort: 10002,
	}
	tm.registry.Register("ses_1", session.Connection())

	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil)
	tm.tools.On("UploadArchive", mock.Anything, mock.Anything, []byte("payload"), "/workspace").
		Return(&toolserver.ArchiveResponse{Path: "/workspace", FileCount: 2}, nil)

	resp, err := tm.manager.UploadToSession(ctx, "usr_1", "ses_1", []byte("payload"), "")
	require.NoError(t, err)
	require.Equal(t, 2, resp.FileCount)
}
