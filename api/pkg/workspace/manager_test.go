package workspace

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/docker"
	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/pubsub"
	"github.com/atelierhq/atelier/api/pkg/registry"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

type mockRuntime struct {
	mock.Mock
}

func (m *mockRuntime) CreateContainer(ctx context.Context, req docker.CreateContainerRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockRuntime) StartContainer(ctx context.Context, containerID string) error {
	args := m.Called(ctx, containerID)
	return args.Error(0)
}

func (m *mockRuntime) StopContainer(ctx context.Context, containerID string, timeout time.Duration) error {
	args := m.Called(ctx, containerID, timeout)
	return args.Error(0)
}

func (m *mockRuntime) RemoveContainer(ctx context.Context, containerID string, force bool) error {
	args := m.Called(ctx, containerID, force)
	return args.Error(0)
}

func (m *mockRuntime) ListSessionContainers(ctx context.Context) ([]*docker.SessionContainer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*docker.SessionContainer), args.Error(1)
}

func (m *mockRuntime) CopyToContainer(ctx context.Context, containerID, destPath string, content io.Reader) error {
	args := m.Called(ctx, containerID, destPath, content)
	return args.Error(0)
}

func (m *mockRuntime) CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, error) {
	args := m.Called(ctx, containerID, srcPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

type mockToolServer struct {
	mock.Mock
}

func (m *mockToolServer) Health(ctx context.Context, conn *types.ContainerConnection) (*toolserver.HealthResponse, error) {
	args := m.Called(ctx, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*toolserver.HealthResponse), args.Error(1)
}

func (m *mockToolServer) CreateArchive(ctx context.Context, conn *types.ContainerConnection, req *toolserver.CreateArchiveRequest) (*toolserver.ArchiveResponse, error) {
	args := m.Called(ctx, conn, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*toolserver.ArchiveResponse), args.Error(1)
}

func (m *mockToolServer) ExtractArchive(ctx context.Context, conn *types.ContainerConnection, req *toolserver.ExtractArchiveRequest) (*toolserver.ArchiveResponse, error) {
	args := m.Called(ctx, conn, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*toolserver.ArchiveResponse), args.Error(1)
}

func (m *mockToolServer) UploadArchive(ctx context.Context, conn *types.ContainerConnection, data []byte, destPath string) (*toolserver.ArchiveResponse, error) {
	args := m.Called(ctx, conn, data, destPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*toolserver.ArchiveResponse), args.Error(1)
}

type mockCleanup struct {
	mock.Mock
}

func (m *mockCleanup) ScheduleSessionCleanup(ctx context.Context, sessionID, userID string, delay time.Duration, reason types.CleanupReason) error {
	args := m.Called(ctx, sessionID, userID, delay, reason)
	return args.Error(0)
}

func (m *mockCleanup) CancelSessionCleanup(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockCleanup) ScheduleOrphanedCleanup(ctx context.Context, maxAge time.Duration) error {
	args := m.Called(ctx, maxAge)
	return args.Error(0)
}

type testManager struct {
	manager  *Manager
	store    *store.MockStore
	runtime  *mockRuntime
	tools    *mockToolServer
	cleanup  *mockCleanup
	registry *registry.Registry
}

func testWorkspacesConfig() config.Workspaces {
	return config.Workspaces{
		SessionImage:       "atelierhq/workspace-base:latest",
		NetworkName:        "atelier_default",
		AppPort:            3000,
		ToolServerPort:     4321,
		PortRangeStart:     10000,
		PortRangeEnd:       10100,
		PreviewHost:        "localhost",
		InitializeTimeout:  5 * time.Second,
		HealthProbeTimeout: time.Second,
		StopTimeout:        time.Second,
		RemoveTimeout:      time.Second,
		GracePeriod:        time.Minute,
		BackgroundTimeout:  30 * time.Minute,
	}
}

func newTestManager(t *testing.T) *testManager {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	runtime := new(mockRuntime)
	tools := new(mockToolServer)
	cleanupQueue := new(mockCleanup)
	reg := registry.New()

	fs, err := filestore.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	manager := NewManager(ManagerConfig{
		Config:     testWorkspacesConfig(),
		Store:      mockStore,
		Runtime:    runtime,
		ToolServer: tools,
		Registry:   reg,
		FileStore:  fs,
		PubSub:     pubsub.NewNoop(),
		Cleanup:    cleanupQueue,
	})

	return &testManager{
		manager:  manager,
		store:    mockStore,
		runtime:  runtime,
		tools:    tools,
		cleanup:  cleanupQueue,
		registry: reg,
	}
}

func TestGetSessionEnforcesOwnership(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{ID: "ses_1", UserID: "usr_owner"}
	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil).Times(2)

	got, err := tm.manager.GetSession(ctx, "usr_owner", "ses_1")
	require.NoError(t, err)
	require.Equal(t, "ses_1", got.ID)

	_, err = tm.manager.GetSession(ctx, "usr_other", "ses_1")
	require.ErrorIs(t, err, types.ErrPermissionDenied)
}

func TestConnectionRequiresReadySession(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:     "ses_1",
		UserID: "usr_1",
		Status: types.SessionStatusInitializing,
	}
	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil)

	_, err := tm.manager.Connection(ctx, "usr_1", "ses_1")
	require.ErrorIs(t, err, types.ErrSessionNotReady)
}

func TestConnectionRequiresRegistryEntry(t *testing.T) {
	tm := newTestManager(t)
	ctx := context.Background()

	session := &types.WorkspaceSession{
		ID:      "ses_1",
		UserID:  "usr_1",
		Status:  types.SessionStatusRunning,
		IsReady: true,
	}
	tm.store.EXPECT().GetSession(gomock.Any(), "ses_1").Return(session, nil).Times(2)

	_, err := tm.manager.Connection(ctx, "usr_1", "ses_1")
	require.ErrorIs(t, err, types.ErrSessionNotReady)

	tm.registry.Register("ses_1", session.Connection())
	conn, err := tm.manager.Connection(ctx, "usr_1", "ses_1")
	require.NoError(t, err)
	require.Equal(t, session.ContainerName, conn.ContainerName)
}
