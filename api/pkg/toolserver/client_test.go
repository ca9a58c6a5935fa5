package toolserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/api/pkg/types"
)

// testClientFor points a client at an httptest server by treating the
// server's host as the container name.
func testClientFor(t *testing.T, srv *httptest.Server) (*Client, *types.ContainerConnection) {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	conn := &types.ContainerConnection{
		ContainerID:    "0123456789abcdef",
		ContainerName:  u.Hostname(),
		ToolServerPort: port,
	}
	return NewClient(port), conn
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&HealthResponse{Status: "ok", Version: "1.4.2"})
	}))
	defer srv.Close()

	client, conn := testClientFor(t, srv)
	health, err := client.Health(t.Context(), conn)
	require.NoError(t, err)
	assert.True(t, health.Healthy())
	assert.Equal(t, "1.4.2", health.Version)
}

func TestExecuteCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tools/command", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CommandRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "npm run build", req.Command)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&CommandResponse{Stdout: "built", ExitCode: 0})
	}))
	defer srv.Close()

	client, conn := testClientFor(t, srv)
	resp, err := client.ExecuteCommand(t.Context(), conn, &CommandRequest{Command: "npm run build"})
	require.NoError(t, err)
	assert.Equal(t, "built", resp.Stdout)
	assert.Equal(t, 0, resp.ExitCode)
}

func TestStatusErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "file not found: /workspace/nope.ts", http.StatusNotFound)
	}))
	defer srv.Close()

	client, conn := testClientFor(t, srv)
	_, err := client.ExecuteRead(t.Context(), conn, &ReadRequest{Path: "/workspace/nope.ts"})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "file not found")
}

func TestMislabelledJSONFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, `{"port": 3456}`)
	}))
	defer srv.Close()

	client, conn := testClientFor(t, srv)
	resp, err := client.AllocatePort(t.Context(), conn, &PortAllocateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3456, resp.Port)
}

func TestEmptyBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, conn := testClientFor(t, srv)
	_, err := client.StopDevServer(t.Context(), conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestTimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client, conn := testClientFor(t, srv)
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.Health(t.Context(), conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrConnectionRefused)
}

func TestConnectionRefusedClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, conn := testClientFor(t, srv)
	srv.Close()

	_, err := client.Health(t.Context(), conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionRefused)
}

func TestDNSFailureClassification(t *testing.T) {
	client := NewClient(4321)
	conn := &types.ContainerConnection{ContainerName: "atelier-session-gone.invalid"}

	_, err := client.Health(t.Context(), conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDNSFailure)
}

func TestUploadArchive(t *testing.T) {
	payload := []byte("tar bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/archive/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "/workspace", r.FormValue("dest_path"))

		file, _, err := r.FormFile("archive")
		require.NoError(t, err)
		defer file.Close()
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, payload, got)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&ArchiveResponse{Path: "/workspace", SizeBytes: int64(len(payload))})
	}))
	defer srv.Close()

	client, conn := testClientFor(t, srv)
	resp, err := client.UploadArchive(t.Context(), conn, payload, "/workspace")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), resp.SizeBytes)
}
