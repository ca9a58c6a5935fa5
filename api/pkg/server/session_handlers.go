package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// createSession provisions a session container. Mounted at both
// /workspaces/{id}/sessions and /sessions; the path workspace wins over
// one given in the body. An empty body is a plain scratch session.
func (apiServer *AtelierAPIServer) createSession(_ http.ResponseWriter, r *http.Request) (*types.WorkspaceSession, *system.HTTPError) {
	ctx := r.Context()
	user := getRequestUser(r)

	var req types.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, system.NewHTTPError400(err.Error())
	}
	if workspaceID := getID(r); workspaceID != "" {
		req.WorkspaceID = workspaceID
	}

	session, err := apiServer.Sessions.CreateSession(ctx, user, &req)
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return session, nil
}

func (apiServer *AtelierAPIServer) listSessions(_ http.ResponseWriter, r *http.Request) ([]*types.WorkspaceSession, *system.HTTPError) {
	ctx := r.Context()
	user := getRequestUser(r)

	if workspaceID := r.URL.Query().Get("workspace_id"); workspaceID != "" {
		sessions, err := apiServer.Sessions.ListWorkspaceSessions(ctx, user, workspaceID)
		if err != nil {
			return nil, lifecycleHTTPError(err)
		}
		return sessions, nil
	}

	sessions, err := apiServer.Sessions.ListSessions(ctx, user)
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return sessions, nil
}

func (apiServer *AtelierAPIServer) listWorkspaceSessions(_ http.ResponseWriter, r *http.Request) ([]*types.WorkspaceSession, *system.HTTPError) {
	sessions, err := apiServer.Sessions.ListWorkspaceSessions(r.Context(), getRequestUser(r), getID(r))
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return sessions, nil
}

func (apiServer *AtelierAPIServer) getSession(_ http.ResponseWriter, r *http.Request) (*types.WorkspaceSession, *system.HTTPError) {
	session, err := apiServer.Sessions.GetSession(r.Context(), getRequestUser(r), getID(r))
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return session, nil
}

// deleteSession enqueues a manual cleanup job for the session and
// answers 202 with the job, teardown happens asynchronously.
func (apiServer *AtelierAPIServer) deleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := getRequestUser(r)
	sessionID := getID(r)

	// ownership is checked here so a bad request fails fast; the job
	// handler re-checks before touching the container
	if _, err := apiServer.Sessions.GetSession(ctx, user, sessionID); err != nil {
		httpErr := lifecycleHTTPError(err)
		writeErrResponse(w, httpErr, httpErr.StatusCode)
		return
	}

	job, err := apiServer.Queue.ScheduleManualCleanup(ctx, user, []string{sessionID})
	if err != nil {
		writeErrResponse(w, err, http.StatusInternalServerError)
		return
	}
	writeResponse(w, job, http.StatusAccepted)
}

func (apiServer *AtelierAPIServer) saveSession(_ http.ResponseWriter, r *http.Request) (*types.WorkspaceSession, *system.HTTPError) {
	session, err := apiServer.Sessions.SaveSession(r.Context(), getRequestUser(r), getID(r))
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return session, nil
}

func (apiServer *AtelierAPIServer) setSessionActivity(_ http.ResponseWriter, r *http.Request) (*types.WorkspaceSession, *system.HTTPError) {
	ctx := r.Context()
	user := getRequestUser(r)
	sessionID := getID(r)

	var req types.SetActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}
	switch req.Level {
	case types.ActivityLevelActive, types.ActivityLevelBackground:
	default:
		return nil, system.NewHTTPError400("activity level must be active or background")
	}

	if err := apiServer.Sessions.SetActivityLevel(ctx, user, sessionID, req.Level); err != nil {
		return nil, lifecycleHTTPError(err)
	}

	session, err := apiServer.Sessions.GetSession(ctx, user, sessionID)
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return session, nil
}
