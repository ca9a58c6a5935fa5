package docker

import (
	"context"
	"errors"
	"net"
	"os"

	"github.com/docker/docker/errdefs"
)

var (
	// ErrRuntimeUnavailable means the Docker daemon cannot be reached.
	ErrRuntimeUnavailable = errors.New("container runtime unavailable")

	// ErrContainerNotFound means the referenced container does not exist.
	ErrContainerNotFound = errors.New("container not found")
)

// IsNotFound reports whether err means the container (or image) does not
// exist, from either our sentinel or the daemon's own error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContainerNotFound) || errdefs.IsNotFound(err)
}

// IsPermissionDenied reports whether err is an authorization failure,
// either from the daemon or from the local socket.
func IsPermissionDenied(err error) bool {
	return errdefs.IsUnauthorized(err) || errdefs.IsForbidden(err) || errors.Is(err, os.ErrPermission)
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsUnavailable reports whether err means the daemon itself is gone
// rather than the operation failing.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrRuntimeUnavailable)
}
