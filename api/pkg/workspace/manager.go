// Package workspace drives the session lifecycle: creating session
// containers, tracking user activity, archiving workspace files and
// tearing sessions down again when nobody is left using them.
package workspace

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/docker"
	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/pubsub"
	"github.com/atelierhq/atelier/api/pkg/registry"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// ContainerRuntime is the slice of the Docker runtime the manager needs.
type ContainerRuntime interface {
	CreateContainer(ctx context.Context, req docker.CreateContainerRequest) (string, error)
	StartContainer(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string, timeout time.Duration) error
	RemoveContainer(ctx context.Context, containerID string, force bool) error
	ListSessionContainers(ctx context.Context) ([]*docker.SessionContainer, error)
	CopyToContainer(ctx context.Context, containerID, destPath string, content io.Reader) error
	CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, error)
}

// ToolServer is the slice of the in-container tool server client the
// manager needs.
type ToolServer interface {
	Health(ctx context.Context, conn *types.ContainerConnection) (*toolserver.HealthResponse, error)
	CreateArchive(ctx context.Context, conn *types.ContainerConnection, req *toolserver.CreateArchiveRequest) (*toolserver.ArchiveResponse, error)
	ExtractArchive(ctx context.Context, conn *types.ContainerConnection, req *toolserver.ExtractArchiveRequest) (*toolserver.ArchiveResponse, error)
	UploadArchive(ctx context.Context, conn *types.ContainerConnection, data []byte, destPath string) (*toolserver.ArchiveResponse, error)
}

// CleanupScheduler hands teardown work to the durable cleanup queue.
type CleanupScheduler interface {
	ScheduleSessionCleanup(ctx context.Context, sessionID, userID string, delay time.Duration, reason types.CleanupReason) error
	CancelSessionCleanup(ctx context.Context, sessionID string) error
	ScheduleOrphanedCleanup(ctx context.Context, maxAge time.Duration) error
}

// Manager owns every session state transition. The database is the source
// of truth for session records, the registry is the in-memory view of
// which container currently serves each live session.
type Manager struct {
	cfg        config.Workspaces
	store      store.Store
	runtime    ContainerRuntime
	toolServer ToolServer
	registry   *registry.Registry
	filestore  filestore.FileStore
	pubsub     pubsub.PubSub
	cleanup    CleanupScheduler

	// Per (user, workspace) creation locks so concurrent create requests
	// collapse onto one session instead of racing containers into life.
	creationLocks      map[string]*sync.Mutex
	creationLocksMutex sync.Mutex

	ports *portAllocator
}

type ManagerConfig struct {
	Config     config.Workspaces
	Store      store.Store
	Runtime    ContainerRuntime
	ToolServer ToolServer
	Registry   *registry.Registry
	FileStore  filestore.FileStore
	PubSub     pubsub.PubSub
	Cleanup    CleanupScheduler
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:           cfg.Config,
		store:         cfg.Store,
		runtime:       cfg.Runtime,
		toolServer:    cfg.ToolServer,
		registry:      cfg.Registry,
		filestore:     cfg.FileStore,
		pubsub:        cfg.PubSub,
		cleanup:       cfg.Cleanup,
		creationLocks: make(map[string]*sync.Mutex),
		ports:         newPortAllocator(cfg.Config.PortRangeStart, cfg.Config.PortRangeEnd),
	}
}

// GetSession loads a session and enforces ownership.
func (m *Manager) GetSession(ctx context.Context, userID, sessionID string) (*types.WorkspaceSession, error) {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, types.ErrPermissionDenied
	}
	return session, nil
}

func (m *Manager) ListSessions(ctx context.Context, userID string) ([]*types.WorkspaceSession, error) {
	return m.store.ListSessions(ctx, &store.ListSessionsQuery{UserID: userID})
}

func (m *Manager) ListWorkspaceSessions(ctx context.Context, userID, workspaceID string) ([]*types.WorkspaceSession, error) {
	workspace, err := m.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.UserID != userID {
		return nil, types.ErrPermissionDenied
	}
	return m.store.ListSessions(ctx, &store.ListSessionsQuery{WorkspaceID: workspaceID})
}

// Connection returns the live tool server connection for a ready session.
// Tool calls go through here so they always hit the registered container.
func (m *Manager) Connection(ctx context.Context, userID, sessionID string) (*types.ContainerConnection, error) {
	session, err := m.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != types.SessionStatusRunning || !session.IsReady {
		return nil, types.ErrSessionNotReady
	}
	conn, ok := m.registry.Lookup(sessionID)
	if !ok {
		return nil, types.ErrSessionNotReady
	}
	return conn, nil
}

func (m *Manager) creationLock(key string) *sync.Mutex {
	m.creationLocksMutex.Lock()
	defer m.creationLocksMutex.Unlock()

	lock, ok := m.creationLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.creationLocks[key] = lock
	}
	return lock
}

func (m *Manager) releaseCreationLock(key string) {
	m.creationLocksMutex.Lock()
	delete(m.creationLocks, key)
	m.creationLocksMutex.Unlock()
}

func creationLockKey(userID, workspaceID string) string {
	return userID + "/" + workspaceID
}

// publishStatus emits a status transition event. Delivery is best-effort,
// session state never depends on it.
func (m *Manager) publishStatus(ctx context.Context, sessionID string, status types.SessionStatus, isReady bool, errMsg string) {
	event := types.SessionStatusEvent{
		SessionID: sessionID,
		Status:    status,
		IsReady:   isReady,
		Error:     errMsg,
		At:        time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := m.pubsub.Publish(ctx, pubsub.SessionStatusSubject(sessionID), payload); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", sessionID).
			Str("status", string(status)).
			Msg("failed to publish session status event")
	}
}
