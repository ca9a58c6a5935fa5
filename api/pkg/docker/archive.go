package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
)

// CopyToContainer streams a tar archive into the container, extracted at
// destPath.
func (r *Runtime) CopyToContainer(ctx context.Context, containerID, destPath string, content io.Reader) error {
	err := r.cli.CopyToContainer(ctx, containerID, destPath, content, types.CopyToContainerOptions{})
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrContainerNotFound, shortID(containerID))
		}
		return fmt.Errorf("failed to copy into container: %w", err)
	}
	return nil
}

// CopyFromContainer returns a tar archive of srcPath inside the
// container. The caller owns the returned reader.
func (r *Runtime) CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, error) {
	reader, _, err := r.cli.CopyFromContainer(ctx, containerID, srcPath)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, shortID(containerID))
		}
		return nil, fmt.Errorf("failed to copy from container: %w", err)
	}
	return reader, nil
}
