package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

func toolProxyTestServer(t *testing.T) (*AtelierAPIServer, *MockSessionLifecycle, *MockToolServerClient) {
	t.Helper()
	ctrl := gomock.NewController(t)

	sessions := NewMockSessionLifecycle(ctrl)
	tools := NewMockToolServerClient(ctrl)

	server := &AtelierAPIServer{
		Sessions: sessions,
		Tools:    tools,
	}
	return server, sessions, tools
}

func sessionRequest(method, target, sessionID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = req.WithContext(setRequestUser(req.Context(), "user_id_test"))
	return mux.SetURLVars(req, map[string]string{"id": sessionID})
}

func TestToolCommand(t *testing.T) {
	server, sessions, tools := toolProxyTestServer(t)

	conn := &types.ContainerConnection{
		ContainerID:    "abc123",
		ContainerName:  "atelier-session-ses_test",
		ToolServerPort: 8700,
	}
	sessions.EXPECT().Connection(gomock.Any(), "user_id_test", "ses_test").Return(conn, nil)
	tools.EXPECT().ExecuteCommand(gomock.Any(), conn, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *types.ContainerConnection, req *toolserver.CommandRequest) (*toolserver.CommandResponse, error) {
			assert.Equal(t, "npm test", req.Command)
			return &toolserver.CommandResponse{ExitCode: 0, Stdout: "ok"}, nil
		})

	req := sessionRequest("POST", "/api/v1/sessions/ses_test/tools/command", "ses_test", []byte(`{"command": "npm test"}`))
	rec := httptest.NewRecorder()

	resp, httpErr := server.toolCommand(rec, req)

	require.Nil(t, httpErr)
	assert.Equal(t, 0, resp.ExitCode)
	assert.Equal(t, "ok", resp.Stdout)
}

func TestToolCommand_SessionNotReady(t *testing.T) {
	server, sessions, _ := toolProxyTestServer(t)

	sessions.EXPECT().Connection(gomock.Any(), "user_id_test", "ses_test").Return(nil, types.ErrSessionNotReady)

	req := sessionRequest("POST", "/api/v1/sessions/ses_test/tools/command", "ses_test", []byte(`{"command": "ls"}`))
	rec := httptest.NewRecorder()

	_, httpErr := server.toolCommand(rec, req)

	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.StatusCode)
}

func TestToolSearch_BadBody(t *testing.T) {
	server, sessions, _ := toolProxyTestServer(t)

	sessions.EXPECT().Connection(gomock.Any(), "user_id_test", "ses_test").Return(&types.ContainerConnection{}, nil)

	req := sessionRequest("POST", "/api/v1/sessions/ses_test/tools/search", "ses_test", []byte(`not json`))
	rec := httptest.NewRecorder()

	_, httpErr := server.toolSearch(rec, req)

	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestToolProxyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "tool server error status passes through",
			err:        &toolserver.StatusError{StatusCode: http.StatusUnprocessableEntity, Body: "bad edit"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "timeout maps to gateway timeout",
			err:        toolserver.ErrTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "connection refused maps to bad gateway",
			err:        toolserver.ErrConnectionRefused,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "dns failure maps to bad gateway",
			err:        toolserver.ErrDNSFailure,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "wrapped sentinel still matches",
			err:        fmt.Errorf("%w: atelier-session-x: context deadline exceeded", toolserver.ErrTimeout),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unknown errors map to internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := toolProxyError(tt.err)
			require.NotNil(t, httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
		})
	}
}

func TestUploadSessionArchive(t *testing.T) {
	server, sessions, _ := toolProxyTestServer(t)

	archive := []byte("gzip-bytes")
	sessions.EXPECT().UploadToSession(gomock.Any(), "user_id_test", "ses_test", archive, "/workspace/vendor").Return(&toolserver.ArchiveResponse{
		Path:      "/workspace/vendor",
		FileCount: 12,
	}, nil)

	req := sessionRequest("POST", "/api/v1/sessions/ses_test/archive/upload?dest=/workspace/vendor", "ses_test", archive)
	rec := httptest.NewRecorder()

	resp, httpErr := server.uploadSessionArchive(rec, req)

	require.Nil(t, httpErr)
	assert.Equal(t, "/workspace/vendor", resp.Path)
	assert.Equal(t, 12, resp.FileCount)
}

func TestUploadSessionArchive_EmptyBody(t *testing.T) {
	server, _, _ := toolProxyTestServer(t)

	req := sessionRequest("POST", "/api/v1/sessions/ses_test/archive/upload", "ses_test", nil)
	rec := httptest.NewRecorder()

	_, httpErr := server.uploadSessionArchive(rec, req)

	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "empty")
}

func TestCreateSessionArchive_MissingSource(t *testing.T) {
	server, sessions, _ := toolProxyTestServer(t)

	sessions.EXPECT().Connection(gomock.Any(), "user_id_test", "ses_test").Return(&types.ContainerConnection{}, nil)

	req := sessionRequest("POST", "/api/v1/sessions/ses_test/archive/create", "ses_test", []byte(`{}`))
	rec := httptest.NewRecorder()

	_, httpErr := server.createSessionArchive(rec, req)

	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "source_path")
}

func TestStopDevServer(t *testing.T) {
	server, sessions, tools := toolProxyTestServer(t)

	conn := &types.ContainerConnection{ContainerName: "atelier-session-ses_test"}
	sessions.EXPECT().Connection(gomock.Any(), "user_id_test", "ses_test").Return(conn, nil)
	tools.EXPECT().StopDevServer(gomock.Any(), conn).Return(&toolserver.DevServerResponse{Running: false}, nil)

	req := sessionRequest("POST", "/api/v1/sessions/ses_test/dev-server/stop", "ses_test", nil)
	rec := httptest.NewRecorder()

	resp, httpErr := server.stopDevServer(rec, req)

	require.Nil(t, httpErr)
	assert.False(t, resp.Running)
}
