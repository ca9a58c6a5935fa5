// Package docker wraps the Docker Engine API for workspace session
// containers. Containers are labelled so the orchestrator can find them
// again after a restart.
package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/go-connections/nat"
	units "github.com/docker/go-units"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/system"
)

// Labels stamped on every container we create. ListSessionContainers
// filters on LabelManaged, so recovery and the orphan sweep only ever
// see our own containers.
const (
	LabelManaged     = "atelier.managed"
	LabelSessionID   = "atelier.session_id"
	LabelUserID      = "atelier.user_id"
	LabelWorkspaceID = "atelier.workspace_id"
)

const containerNamePrefix = "atelier-session-"

// SessionContainerName derives the stable container name for a session.
// The name doubles as the container's DNS name on the shared network.
func SessionContainerName(sessionID string) string {
	return containerNamePrefix + strings.TrimPrefix(sessionID, system.SessionPrefix)
}

// Runtime manages session containers through the Docker Engine API.
type Runtime struct {
	cfg config.Workspaces
	cli *client.Client
}

// NewRuntime creates a Docker client from the environment (DOCKER_HOST
// et al) and verifies the daemon is reachable.
func NewRuntime(cfg config.Workspaces) (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	r := &Runtime{cfg: cfg, cli: cli}
	if err := r.IsAvailable(context.Background()); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}

// IsAvailable pings the daemon. Returns ErrRuntimeUnavailable when the
// daemon cannot be reached.
func (r *Runtime) IsAvailable(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}
	return nil
}

// PullImage pulls an image, draining the progress stream.
func (r *Runtime) PullImage(ctx context.Context, imageName string) error {
	log.Info().Str("image", imageName).Msg("Pulling image")

	reader, err := r.cli.ImagePull(ctx, imageName, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to read pull output for %s: %w", imageName, err)
	}

	return nil
}

// ensureImage pulls the image only when it is not already present.
func (r *Runtime) ensureImage(ctx context.Context, imageName string) error {
	_, _, err := r.cli.ImageInspectWithRaw(ctx, imageName)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to inspect image %s: %w", imageName, err)
	}
	return r.PullImage(ctx, imageName)
}

// CreateContainerRequest describes the container for one session.
type CreateContainerRequest struct {
	SessionID     string
	UserID        string
	WorkspaceID   string
	ContainerName string
	Image         string

	// Host ports. The in-container ports they map to are fixed by the
	// session image and come from config.
	Port           int
	ToolServerPort int
}

// CreateContainer creates (but does not start) a session container. A
// stale container already holding the requested name is removed first.
func (r *Runtime) CreateContainer(ctx context.Context, req CreateContainerRequest) (string, error) {
	imageName := req.Image
	if imageName == "" {
		imageName = r.cfg.SessionImage
	}

	if err := r.ensureImage(ctx, imageName); err != nil {
		return "", err
	}

	appPort := nat.Port(fmt.Sprintf("%d/tcp", r.cfg.AppPort))
	toolPort := nat.Port(fmt.Sprintf("%d/tcp", r.cfg.ToolServerPort))

	containerConfig := &container.Config{
		Image:    imageName,
		Hostname: req.ContainerName,
		Env: []string{
			"ATELIER_SESSION_ID=" + req.SessionID,
			"ATELIER_USER_ID=" + req.UserID,
			"ATELIER_WORKSPACE_ID=" + req.WorkspaceID,
			"ATELIER_APP_PORT=" + strconv.Itoa(r.cfg.AppPort),
			"ATELIER_TOOL_SERVER_PORT=" + strconv.Itoa(r.cfg.ToolServerPort),
		},
		ExposedPorts: nat.PortSet{
			appPort:  struct{}{},
			toolPort: struct{}{},
		},
		Labels: map[string]string{
			LabelManaged:     "true",
			LabelSessionID:   req.SessionID,
			LabelUserID:      req.UserID,
			LabelWorkspaceID: req.WorkspaceID,
		},
	}

	hostConfig, err := r.buildHostConfig(req, appPort, toolPort)
	if err != nil {
		return "", err
	}

	networkConfig := r.resolveNetwork(ctx, hostConfig)

	resp, err := r.cli.ContainerCreate(ctx, containerConfig, hostConfig, networkConfig, nil, req.ContainerName)
	if errdefs.IsConflict(err) {
		// A previous session left a container behind under this name.
		log.Warn().
			Str("session_id", req.SessionID).
			Str("container_name", req.ContainerName).
			Msg("Removing stale container occupying session name")
		if rmErr := r.RemoveContainer(ctx, req.ContainerName, true); rmErr != nil {
			return "", fmt.Errorf("failed to remove stale container %s: %w", req.ContainerName, rmErr)
		}
		resp, err = r.cli.ContainerCreate(ctx, containerConfig, hostConfig, networkConfig, nil, req.ContainerName)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	log.Info().
		Str("session_id", req.SessionID).
		Str("container_id", resp.ID[:12]).
		Str("container_name", req.ContainerName).
		Int("port", req.Port).
		Int("tool_server_port", req.ToolServerPort).
		Msg("Created session container")

	return resp.ID, nil
}

func (r *Runtime) buildHostConfig(req CreateContainerRequest, appPort, toolPort nat.Port) (*container.HostConfig, error) {
	memory, err := units.RAMInBytes(r.cfg.MemoryLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid memory limit %q: %w", r.cfg.MemoryLimit, err)
	}
	pids := r.cfg.PidsLimit

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			appPort: []nat.PortBinding{
				{HostIP: "0.0.0.0", HostPort: strconv.Itoa(req.Port)},
			},
			toolPort: []nat.PortBinding{
				{HostIP: "0.0.0.0", HostPort: strconv.Itoa(req.ToolServerPort)},
			},
		},
		// Sessions are resumed by the orchestrator, never by the daemon.
		RestartPolicy: container.RestartPolicy{Name: "no"},
		CapDrop:       []string{"ALL"},
		CapAdd:        []string{"CHOWN", "SETUID", "SETGID", "DAC_OVERRIDE", "FOWNER", "KILL"},
		SecurityOpt:   []string{"no-new-privileges:true"},
		Resources: container.Resources{
			NanoCPUs:  int64(r.cfg.CPULimit * 1e9),
			Memory:    memory,
			PidsLimit: &pids,
		},
	}

	if req.WorkspaceID != "" {
		hostConfig.Mounts = []mount.Mount{
			{
				Type:   mount.TypeVolume,
				Source: workspaceVolumeName(req.WorkspaceID),
				Target: "/workspace",
			},
		}
	}

	return hostConfig, nil
}

// workspaceVolumeName names the named volume holding a workspace's files.
// The volume outlives individual sessions of the workspace.
func workspaceVolumeName(workspaceID string) string {
	return "atelier-" + workspaceID
}

// resolveNetwork attaches the container to the configured network when it
// exists. Container names only resolve over DNS on a user-defined
// network, so falling back to bridge degrades tool server addressing.
func (r *Runtime) resolveNetwork(ctx context.Context, hostConfig *container.HostConfig) *network.NetworkingConfig {
	if r.cfg.NetworkName == "" {
		return nil
	}

	nets, err := r.cli.NetworkList(ctx, types.NetworkListOptions{
		Filters: filters.NewArgs(filters.Arg("name", r.cfg.NetworkName)),
	})
	if err != nil || len(nets) == 0 {
		log.Warn().
			Err(err).
			Str("network", r.cfg.NetworkName).
			Msg("Configured Docker network not found, falling back to bridge")
		return nil
	}

	hostConfig.NetworkMode = container.NetworkMode(r.cfg.NetworkName)
	return &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			r.cfg.NetworkName: {},
		},
	}
}

// StartContainer starts a created container. On failure the container is
// force-removed so a failed creation never leaves an orphan behind.
func (r *Runtime) StartContainer(ctx context.Context, containerID string) error {
	if err := r.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		log.Error().
			Err(err).
			Str("container_id", containerID[:12]).
			Msg("Failed to start container, removing it")
		if rmErr := r.RemoveContainer(ctx, containerID, true); rmErr != nil {
			log.Warn().Err(rmErr).Str("container_id", containerID[:12]).Msg("Failed to remove container after failed start")
		}
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

// StopContainer stops a container, giving it the timeout to exit before
// the daemon kills it. Stopping an already-stopped or missing container
// is not an error.
func (r *Runtime) StopContainer(ctx context.Context, containerID string, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	err := r.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &seconds})
	if err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// RemoveContainer removes a container. A container that is already gone
// counts as removed.
func (r *Runtime) RemoveContainer(ctx context.Context, containerID string, force bool) error {
	err := r.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: force})
	if err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// ContainerState is the subset of inspect output the orchestrator acts on.
type ContainerState struct {
	ContainerID string
	Name        string
	Running     bool
	Status      string
	ExitCode    int
	Health      string
}

// InspectContainer returns the container's current state. Returns
// ErrContainerNotFound when the container does not exist.
func (r *Runtime) InspectContainer(ctx context.Context, containerID string) (*ContainerState, error) {
	info, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, containerID)
		}
		return nil, fmt.Errorf("failed to inspect container: %w", err)
	}

	state := &ContainerState{
		ContainerID: info.ID,
		Name:        strings.TrimPrefix(info.Name, "/"),
	}
	if info.State != nil {
		state.Running = info.State.Running
		state.Status = info.State.Status
		state.ExitCode = info.State.ExitCode
		if info.State.Health != nil {
			state.Health = info.State.Health.Status
		}
	}

	return state, nil
}

// SessionContainer is one entry from ListSessionContainers, identified by
// the labels stamped at creation time.
type SessionContainer struct {
	ContainerID   string
	ContainerName string
	SessionID     string
	UserID        string
	WorkspaceID   string
	Running       bool
	CreatedAt     time.Time
}

// ListSessionContainers lists every container this orchestrator created,
// running or not. Used on startup recovery and by the orphan sweep.
func (r *Runtime) ListSessionContainers(ctx context.Context) ([]*SessionContainer, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelManaged+"=true")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list session containers: %w", err)
	}

	result := make([]*SessionContainer, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		result = append(result, &SessionContainer{
			ContainerID:   c.ID,
			ContainerName: name,
			SessionID:     c.Labels[LabelSessionID],
			UserID:        c.Labels[LabelUserID],
			WorkspaceID:   c.Labels[LabelWorkspaceID],
			Running:       c.State == "running",
			CreatedAt:     time.Unix(c.Created, 0),
		})
	}

	return result, nil
}
