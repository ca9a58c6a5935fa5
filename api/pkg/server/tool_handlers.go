package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// The tool proxy forwards agent requests to the tool server inside the
// session's container. Every handler resolves the live connection first,
// so calls against a stopped or still-initializing session fail with a
// conflict instead of a dangling dial.

func (apiServer *AtelierAPIServer) sessionConnection(r *http.Request) (*types.ContainerConnection, *system.HTTPError) {
	conn, err := apiServer.Sessions.Connection(r.Context(), getRequestUser(r), getID(r))
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return conn, nil
}

// toolProxyError maps tool server client failures onto gateway statuses.
func toolProxyError(err error) *system.HTTPError {
	var statusErr *toolserver.StatusError
	switch {
	case errors.As(err, &statusErr):
		return &system.HTTPError{StatusCode: statusErr.StatusCode, Message: statusErr.Body}
	case errors.Is(err, toolserver.ErrTimeout):
		return &system.HTTPError{StatusCode: http.StatusGatewayTimeout, Message: err.Error()}
	case errors.Is(err, toolserver.ErrConnectionRefused), errors.Is(err, toolserver.ErrDNSFailure):
		return &system.HTTPError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	default:
		return system.NewHTTPError500(err.Error())
	}
}

func (apiServer *AtelierAPIServer) toolSearch(_ http.ResponseWriter, r *http.Request) (*toolserver.SearchResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}

	resp, err := apiServer.Tools.ExecuteSearch(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) toolRead(_ http.ResponseWriter, r *http.Request) (*toolserver.ReadResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.ReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}

	resp, err := apiServer.Tools.ExecuteRead(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) toolCommand(_ http.ResponseWriter, r *http.Request) (*toolserver.CommandResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}

	resp, err := apiServer.Tools.ExecuteCommand(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) toolEdit(_ http.ResponseWriter, r *http.Request) (*toolserver.EditResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}

	resp, err := apiServer.Tools.ExecuteEdit(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) npmInstall(_ http.ResponseWriter, r *http.Request) (*toolserver.CommandResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.NpmInstallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, system.NewHTTPError400(err.Error())
	}

	resp, err := apiServer.Tools.InstallPackages(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) startDevServer(_ http.ResponseWriter, r *http.Request) (*toolserver.DevServerResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.StartDevServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, system.NewHTTPError400(err.Error())
	}

	resp, err := apiServer.Tools.StartDevServer(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) stopDevServer(_ http.ResponseWriter, r *http.Request) (*toolserver.DevServerResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	resp, err := apiServer.Tools.StopDevServer(r.Context(), conn)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) allocatePort(_ http.ResponseWriter, r *http.Request) (*toolserver.PortAllocateResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.PortAllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, system.NewHTTPError400(err.Error())
	}

	resp, err := apiServer.Tools.AllocatePort(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) createSessionArchive(_ http.ResponseWriter, r *http.Request) (*toolserver.ArchiveResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.CreateArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}
	if req.SourcePath == "" {
		return nil, system.NewHTTPError400("source_path is required")
	}

	resp, err := apiServer.Tools.CreateArchive(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

func (apiServer *AtelierAPIServer) extractSessionArchive(_ http.ResponseWriter, r *http.Request) (*toolserver.ArchiveResponse, *system.HTTPError) {
	conn, httpErr := apiServer.sessionConnection(r)
	if httpErr != nil {
		return nil, httpErr
	}

	var req toolserver.ExtractArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}
	if req.ArchivePath == "" {
		return nil, system.NewHTTPError400("archive_path is required")
	}

	resp, err := apiServer.Tools.ExtractArchive(r.Context(), conn, &req)
	if err != nil {
		return nil, toolProxyError(err)
	}
	return resp, nil
}

// uploadSessionArchive takes a raw archive body and drops it into the
// session workspace. The destination directory comes from the dest query
// parameter and defaults to the workspace root.
func (apiServer *AtelierAPIServer) uploadSessionArchive(_ http.ResponseWriter, r *http.Request) (*toolserver.ArchiveResponse, *system.HTTPError) {
	ctx := r.Context()
	user := getRequestUser(r)
	sessionID := getID(r)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}
	if len(data) == 0 {
		return nil, system.NewHTTPError400("request body is empty")
	}

	resp, err := apiServer.Sessions.UploadToSession(ctx, user, sessionID, data, r.URL.Query().Get("dest"))
	if err != nil {
		httpErr := lifecycleHTTPError(err)
		if httpErr.StatusCode == http.StatusInternalServerError {
			return nil, toolProxyError(err)
		}
		return nil, httpErr
	}
	return resp, nil
}
