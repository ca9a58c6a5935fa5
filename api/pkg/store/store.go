package store

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/atelier/api/pkg/types"
)

type ListSessionsQuery struct {
	UserID      string                `json:"user_id"`
	WorkspaceID string                `json:"workspace_id"`
	Statuses    []types.SessionStatus `json:"statuses"`
	Offset      int                   `json:"offset"`
	Limit       int                   `json:"limit"`
}

type ListCleanupJobsQuery struct {
	Kind   types.CleanupJobKind   `json:"kind"`
	Status types.CleanupJobStatus `json:"status"`
	Limit  int                    `json:"limit"`
}

//go:generate mockgen -source $GOFILE -destination store_mocks.go -package $GOPACKAGE

type Store interface {
	// workspaces
	CreateWorkspace(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*types.Workspace, error)
	ListWorkspaces(ctx context.Context, userID string) ([]*types.Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error

	// sessions
	CreateSession(ctx context.Context, session *types.WorkspaceSession) (*types.WorkspaceSession, error)
	GetSession(ctx context.Context, id string) (*types.WorkspaceSession, error)
	UpdateSession(ctx context.Context, session *types.WorkspaceSession) (*types.WorkspaceSession, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context, q *ListSessionsQuery) ([]*types.WorkspaceSession, error)

	// AllocatedPorts returns every host port held by a session in an
	// active status, preview and tool server ports alike.
	AllocatedPorts(ctx context.Context) ([]int, error)

	UpdateSessionStatus(ctx context.Context, id string, status types.SessionStatus, sessionError string) error
	SetSessionContainer(ctx context.Context, id string, containerID string) error
	MarkSessionReady(ctx context.Context, id string, previewURL string) error
	MarkSessionSaved(ctx context.Context, id string, savedAt time.Time) error

	IncrementSessionConnections(ctx context.Context, id string) (*types.WorkspaceSession, error)
	DecrementSessionConnections(ctx context.Context, id string) (*types.WorkspaceSession, error)
	SetSessionActivityLevel(ctx context.Context, id string, level types.ActivityLevel, graceEndsAt *time.Time) error
	TouchSessionActivity(ctx context.Context, id string) error

	// ListStaleSessions returns sessions still in an active status whose
	// last activity is older than cutoff.
	ListStaleSessions(ctx context.Context, cutoff time.Time) ([]*types.WorkspaceSession, error)

	// cleanup jobs
	CreateCleanupJob(ctx context.Context, job *types.CleanupJob) (*types.CleanupJob, error)
	GetCleanupJob(ctx context.Context, id string) (*types.CleanupJob, error)
	GetWaitingCleanupJob(ctx context.Context, dedupKey string) (*types.CleanupJob, error)
	UpdateCleanupJob(ctx context.Context, job *types.CleanupJob) (*types.CleanupJob, error)
	DeleteCleanupJob(ctx context.Context, id string) error
	ListCleanupJobs(ctx context.Context, q *ListCleanupJobsQuery) ([]*types.CleanupJob, error)

	// GetDueCleanupJobs returns waiting jobs whose scheduled_for has
	// passed, highest priority first. MarkCleanupJobActive claims one,
	// reporting false when another worker got there first.
	GetDueCleanupJobs(ctx context.Context, now time.Time, limit int) ([]*types.CleanupJob, error)
	MarkCleanupJobActive(ctx context.Context, id string) (bool, error)

	GetCleanupQueueStats(ctx context.Context) (*types.CleanupQueueStats, error)
	PurgeExpiredCleanupJobs(ctx context.Context, now time.Time) (int64, error)

	Close() error
}

var ErrNotFound = errors.New("not found")
