// Package toolserver is the HTTP client for the agent that runs inside
// every session container. Containers are reached by name over the
// shared Docker network on the fixed agent port, never through their
// published host ports.
package toolserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/atelierhq/atelier/api/pkg/types"
)

const requestTimeout = 30 * time.Second

const maxErrorBodyBytes = 512

// Client talks to session tool servers. One client serves all sessions;
// the target container comes from the ContainerConnection per call.
// There are no retries at this layer.
type Client struct {
	httpClient *http.Client
	port       int
}

// NewClient creates a tool server client dialing the given in-container
// port.
func NewClient(port int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		port: port,
	}
}

func (c *Client) baseURL(conn *types.ContainerConnection) string {
	return fmt.Sprintf("http://%s:%d", conn.ContainerName, c.port)
}

// Health checks whether the tool server is up and ready.
func (c *Client) Health(ctx context.Context, conn *types.ContainerConnection) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, conn, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteSearch searches file contents in the workspace.
func (c *Client) ExecuteSearch(ctx context.Context, conn *types.ContainerConnection, req *SearchRequest) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.post(ctx, conn, "/tools/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteRead reads a file, optionally a line range of it.
func (c *Client) ExecuteRead(ctx context.Context, conn *types.ContainerConnection, req *ReadRequest) (*ReadResponse, error) {
	var out ReadResponse
	if err := c.post(ctx, conn, "/tools/read", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteCommand runs a shell command in the workspace.
func (c *Client) ExecuteCommand(ctx context.Context, conn *types.ContainerConnection, req *CommandRequest) (*CommandResponse, error) {
	var out CommandResponse
	if err := c.post(ctx, conn, "/tools/command", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteEdit applies a text replacement to a file.
func (c *Client) ExecuteEdit(ctx context.Context, conn *types.ContainerConnection, req *EditRequest) (*EditResponse, error) {
	var out EditResponse
	if err := c.post(ctx, conn, "/tools/edit", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractArchive unpacks an archive already inside the container.
func (c *Client) ExtractArchive(ctx context.Context, conn *types.ContainerConnection, req *ExtractArchiveRequest) (*ArchiveResponse, error) {
	var out ArchiveResponse
	if err := c.post(ctx, conn, "/api/archive/extract", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateArchive packs a workspace directory into an archive inside the
// container and reports where it landed.
func (c *Client) CreateArchive(ctx context.Context, conn *types.ContainerConnection, req *CreateArchiveRequest) (*ArchiveResponse, error) {
	var out ArchiveResponse
	if err := c.post(ctx, conn, "/api/archive/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadArchive streams an archive into the container and extracts it at
// destPath in one request.
func (c *Client) UploadArchive(ctx context.Context, conn *types.ContainerConnection, data []byte, destPath string) (*ArchiveResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("archive", "archive.tar.gz")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.WriteField("dest_path", destPath); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	var out ArchiveResponse
	if err := c.do(ctx, conn, http.MethodPost, "/api/archive/upload", writer.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InstallPackages runs an npm install in the workspace.
func (c *Client) InstallPackages(ctx context.Context, conn *types.ContainerConnection, req *NpmInstallRequest) (*CommandResponse, error) {
	var out CommandResponse
	if err := c.post(ctx, conn, "/api/npm/install", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartDevServer starts the workspace dev server on the preview port.
func (c *Client) StartDevServer(ctx context.Context, conn *types.ContainerConnection, req *StartDevServerRequest) (*DevServerResponse, error) {
	var out DevServerResponse
	if err := c.post(ctx, conn, "/api/dev-server/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopDevServer stops the workspace dev server if it is running.
func (c *Client) StopDevServer(ctx context.Context, conn *types.ContainerConnection) (*DevServerResponse, error) {
	var out DevServerResponse
	if err := c.post(ctx, conn, "/api/dev-server/stop", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllocatePort asks the tool server for a free in-container port.
func (c *Client) AllocatePort(ctx context.Context, conn *types.ContainerConnection, req *PortAllocateRequest) (*PortAllocateResponse, error) {
	var out PortAllocateResponse
	if err := c.post(ctx, conn, "/api/ports/allocate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, conn *types.ContainerConnection, path string, out any) error {
	return c.do(ctx, conn, http.MethodGet, path, "", nil, out)
}

func (c *Client) post(ctx context.Context, conn *types.ContainerConnection, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, conn, http.MethodPost, path, "application/json", bytes.NewReader(body), out)
}

func (c *Client) do(ctx context.Context, conn *types.ContainerConnection, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL(conn)+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(conn.ContainerName, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse reads the body and decodes it into out. JSON is decoded
// directly; text bodies get a fallback JSON parse since some tool server
// builds mislabel their content type. An empty success body is an error.
func decodeResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	if out == nil {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty response from tool server")
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("unexpected non-JSON response (content-type %q): %s", contentType, truncateBody(trimmed))
	}
	return nil
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes]) + "..."
	}
	return string(body)
}
