package types

import "errors"

var (
	// ErrPermissionDenied is returned when a caller touches a workspace or
	// session owned by someone else.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWorkspaceBusy is returned when a workspace deletion is attempted
	// while sessions are still running or initializing.
	ErrWorkspaceBusy = errors.New("workspace has active sessions")

	// ErrSessionNotReady is returned when a tool call targets a session
	// whose tool server has not come up yet.
	ErrSessionNotReady = errors.New("session is not ready")

	// ErrNoWorkspace is returned when a save targets a session that was
	// created without a workspace.
	ErrNoWorkspace = errors.New("session has no workspace")

	// ErrNoFreePorts is returned when the configured host port range is
	// exhausted.
	ErrNoFreePorts = errors.New("no free ports in configured range")

	// ErrContainerRemoveFailed marks a teardown that could not remove the
	// session container. Cleanup jobs treat it as retryable.
	ErrContainerRemoveFailed = errors.New("container removal failed")
)
