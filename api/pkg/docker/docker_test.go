package docker

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/docker/go-connections/nat"

	"github.com/atelierhq/atelier/api/pkg/config"
)

func TestSessionContainerName(t *testing.T) {
	tests := []struct {
		sessionID string
		want      string
	}{
		{"ses_01jtswh5rfe2bt90bcw3kep8mq", "atelier-session-01jtswh5rfe2bt90bcw3kep8mq"},
		{"01jtswh5rfe2bt90bcw3kep8mq", "atelier-session-01jtswh5rfe2bt90bcw3kep8mq"},
	}
	for _, tt := range tests {
		t.Run(tt.sessionID, func(t *testing.T) {
			got := SessionContainerName(tt.sessionID)
			if got != tt.want {
				t.Errorf("SessionContainerName(%q) = %q, want %q", tt.sessionID, got, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	fullID := "8f2e1c9b4a6d8f2e1c9b4a6d8f2e1c9b4a6d8f2e1c9b4a6d8f2e1c9b4a6d8f2e"
	tests := []struct {
		id   string
		want string
	}{
		{fullID, fullID[:12]},
		{"atelier-session-01jtswh5rfe2", "atelier-session-01jtswh5rfe2"},
		{"abc123", "abc123"},
	}
	for _, tt := range tests {
		got := shortID(tt.id)
		if got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func testWorkspacesConfig() config.Workspaces {
	return config.Workspaces{
		SessionImage:   "atelierhq/workspace-base:latest",
		NetworkName:    "atelier_default",
		AppPort:        3000,
		ToolServerPort: 4321,
		CPULimit:       2,
		MemoryLimit:    "2GB",
		PidsLimit:      512,
	}
}

func TestBuildHostConfig(t *testing.T) {
	r := &Runtime{cfg: testWorkspacesConfig()}
	req := CreateContainerRequest{
		SessionID:      "ses_test",
		WorkspaceID:    "ws_test",
		Port:           10042,
		ToolServerPort: 10043,
	}

	hostConfig, err := r.buildHostConfig(req, nat.Port("3000/tcp"), nat.Port("4321/tcp"))
	if err != nil {
		t.Fatalf("buildHostConfig returned error: %v", err)
	}

	appBindings := hostConfig.PortBindings["3000/tcp"]
	if len(appBindings) != 1 || appBindings[0].HostPort != strconv.Itoa(req.Port) {
		t.Errorf("app port bindings = %+v, want host port %d", appBindings, req.Port)
	}
	toolBindings := hostConfig.PortBindings["4321/tcp"]
	if len(toolBindings) != 1 || toolBindings[0].HostPort != strconv.Itoa(req.ToolServerPort) {
		t.Errorf("tool server port bindings = %+v, want host port %d", toolBindings, req.ToolServerPort)
	}

	if hostConfig.Resources.NanoCPUs != 2e9 {
		t.Errorf("NanoCPUs = %d, want %d", hostConfig.Resources.NanoCPUs, int64(2e9))
	}
	if hostConfig.Resources.Memory != 2*1024*1024*1024 {
		t.Errorf("Memory = %d, want 2GiB", hostConfig.Resources.Memory)
	}
	if hostConfig.Resources.PidsLimit == nil || *hostConfig.Resources.PidsLimit != 512 {
		t.Errorf("PidsLimit = %v, want 512", hostConfig.Resources.PidsLimit)
	}

	if string(hostConfig.RestartPolicy.Name) != "no" {
		t.Errorf("RestartPolicy = %q, want no", hostConfig.RestartPolicy.Name)
	}
	if len(hostConfig.CapDrop) != 1 || hostConfig.CapDrop[0] != "ALL" {
		t.Errorf("CapDrop = %v, want [ALL]", hostConfig.CapDrop)
	}

	if len(hostConfig.Mounts) != 1 {
		t.Fatalf("Mounts = %+v, want one workspace volume", hostConfig.Mounts)
	}
	if hostConfig.Mounts[0].Source != "atelier-ws_test" || hostConfig.Mounts[0].Target != "/workspace" {
		t.Errorf("workspace mount = %+v", hostConfig.Mounts[0])
	}
}

func TestBuildHostConfigNoWorkspaceVolume(t *testing.T) {
	r := &Runtime{cfg: testWorkspacesConfig()}
	req := CreateContainerRequest{SessionID: "ses_test", Port: 10042, ToolServerPort: 10043}

	hostConfig, err := r.buildHostConfig(req, nat.Port("3000/tcp"), nat.Port("4321/tcp"))
	if err != nil {
		t.Fatalf("buildHostConfig returned error: %v", err)
	}
	if len(hostConfig.Mounts) != 0 {
		t.Errorf("Mounts = %+v, want none without a workspace", hostConfig.Mounts)
	}
}

func TestBuildHostConfigInvalidMemoryLimit(t *testing.T) {
	cfg := testWorkspacesConfig()
	cfg.MemoryLimit = "lots"
	r := &Runtime{cfg: cfg}

	_, err := r.buildHostConfig(CreateContainerRequest{}, nat.Port("3000/tcp"), nat.Port("4321/tcp"))
	if err == nil {
		t.Fatal("expected error for unparseable memory limit")
	}
}

func TestErrorClassification(t *testing.T) {
	wrappedTimeout := fmt.Errorf("exec timed out: %w", context.DeadlineExceeded)
	if !IsTimeout(wrappedTimeout) {
		t.Error("wrapped DeadlineExceeded should classify as timeout")
	}
	if IsTimeout(fmt.Errorf("some other error")) {
		t.Error("plain error should not classify as timeout")
	}

	wrappedNotFound := fmt.Errorf("%w: abc123", ErrContainerNotFound)
	if !IsNotFound(wrappedNotFound) {
		t.Error("wrapped ErrContainerNotFound should classify as not found")
	}

	wrappedPerm := fmt.Errorf("dial unix /var/run/docker.sock: %w", os.ErrPermission)
	if !IsPermissionDenied(wrappedPerm) {
		t.Error("wrapped ErrPermission should classify as permission denied")
	}
	if IsPermissionDenied(wrappedNotFound) {
		t.Error("not-found error should not classify as permission denied")
	}

	unavailable := fmt.Errorf("%w: daemon down", ErrRuntimeUnavailable)
	if !IsUnavailable(unavailable) {
		t.Error("wrapped ErrRuntimeUnavailable should classify as unavailable")
	}
}
