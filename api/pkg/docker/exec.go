package docker

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog/log"
)

// ExecRequest describes a command to run inside a session container.
type ExecRequest struct {
	Cmd        []string
	WorkingDir string
	Env        []string
	// Timeout bounds the whole exec. Zero means the caller's ctx rules.
	Timeout time.Duration
}

// ExecResult carries the demultiplexed output of a finished exec.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecCommand runs a command in the container and waits for it to finish.
// The attached stream multiplexes stdout and stderr into one connection
// with framing headers, so the output has to be split with stdcopy.
//
// When the exec outlives its deadline the stream is torn down and the
// partial output is returned with ExitCode -1 alongside an error that
// satisfies IsTimeout. When the exit code cannot be read back after the
// stream ends it is guessed from whether stderr produced anything.
func (r *Runtime) ExecCommand(ctx context.Context, containerID string, req ExecRequest) (*ExecResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	execConfig := types.ExecConfig{
		Cmd:          req.Cmd,
		WorkingDir:   req.WorkingDir,
		Env:          req.Env,
		AttachStdout: true,
		AttachStderr: true,
	}

	idResp, err := r.cli.ContainerExecCreate(ctx, containerID, execConfig)
	if err != nil {
		return nil, r.wrapExecError(containerID, "failed to create exec", err)
	}

	attach, err := r.cli.ContainerExecAttach(ctx, idResp.ID, types.ExecStartCheck{})
	if err != nil {
		return nil, r.wrapExecError(containerID, "failed to attach exec", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	copyDone := make(chan error, 1)
	go func() {
		_, copyErr := stdcopy.StdCopy(&stdout, &stderr, attach.Reader)
		copyDone <- copyErr
	}()

	select {
	case err = <-copyDone:
		if err != nil {
			return nil, r.wrapExecError(containerID, "failed to read exec output", err)
		}
	case <-ctx.Done():
		// Tear the stream down and wait for the copier so the buffers
		// are safe to read.
		attach.Close()
		<-copyDone
		result := &ExecResult{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: -1,
		}
		return result, fmt.Errorf("exec timed out in container %s: %w", shortID(containerID), ctx.Err())
	}

	result := &ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	inspect, err := r.cli.ContainerExecInspect(ctx, idResp.ID)
	if err != nil {
		// The command already ran, so don't fail the exec over a lost
		// exit code. Guess it from stderr.
		log.Warn().
			Err(err).
			Str("container_id", shortID(containerID)).
			Msg("Could not inspect exec result, guessing exit code from stderr")
		if result.Stderr != "" {
			result.ExitCode = 1
		}
		return result, nil
	}
	result.ExitCode = inspect.ExitCode

	return result, nil
}

// wrapExecError distinguishes "the exec failed" from "the container died
// under it", which callers treat very differently.
func (r *Runtime) wrapExecError(containerID, msg string, err error) error {
	inspectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	state, inspectErr := r.InspectContainer(inspectCtx, containerID)
	if inspectErr == nil && !state.Running {
		return fmt.Errorf("%s: container %s exited with code %d: %w", msg, shortID(containerID), state.ExitCode, err)
	}
	if IsNotFound(inspectErr) {
		return fmt.Errorf("%s: %w", msg, ErrContainerNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// shortID truncates full container IDs for log and error messages while
// leaving container names untouched.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return id
		}
	}
	return id[:12]
}
