package toolserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Transport failures map onto distinct sentinels because the cleanup
// layer classifies them differently: a timeout on a running container is
// a health problem, connection refused usually means the tool server
// process died, and a DNS failure means the container is off the network
// entirely.
var (
	ErrTimeout           = errors.New("tool server request timed out")
	ErrConnectionRefused = errors.New("tool server connection refused")
	ErrDNSFailure        = errors.New("tool server host not resolvable")
)

// StatusError is a response the tool server did produce, just not a
// happy one.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tool server returned status %d: %s", e.StatusCode, e.Body)
}

// classifyTransportError maps a request error onto one of the sentinel
// errors, keeping the container name and cause in the message.
func classifyTransportError(containerName string, err error) error {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, containerName, err)
	case errors.As(err, &dnsErr):
		return fmt.Errorf("%w: %s: %v", ErrDNSFailure, containerName, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %s: %v", ErrConnectionRefused, containerName, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, containerName, err)
	}

	return fmt.Errorf("tool server request to %s failed: %w", containerName, err)
}
