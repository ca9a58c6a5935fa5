package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// archiveURLTTL is how long a presigned archive download link stays valid.
const archiveURLTTL = time.Hour

func (apiServer *AtelierAPIServer) createWorkspace(_ http.ResponseWriter, r *http.Request) (*types.Workspace, *system.HTTPError) {
	ctx := r.Context()
	user := getRequestUser(r)

	var req types.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400(err.Error())
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, system.NewHTTPError400("workspace name is required")
	}

	workspace, err := apiServer.Store.CreateWorkspace(ctx, &types.Workspace{
		ID:     system.GenerateWorkspaceID(),
		UserID: user,
		Name:   req.Name,
	})
	if err != nil {
		return nil, system.NewHTTPError500(err.Error())
	}
	return workspace, nil
}

func (apiServer *AtelierAPIServer) listWorkspaces(_ http.ResponseWriter, r *http.Request) ([]*types.Workspace, *system.HTTPError) {
	workspaces, err := apiServer.Store.ListWorkspaces(r.Context(), getRequestUser(r))
	if err != nil {
		return nil, system.NewHTTPError500(err.Error())
	}
	return workspaces, nil
}

func (apiServer *AtelierAPIServer) getWorkspace(_ http.ResponseWriter, r *http.Request) (*types.Workspace, *system.HTTPError) {
	workspace, httpErr := apiServer.ownedWorkspace(r, getID(r))
	if httpErr != nil {
		return nil, httpErr
	}
	return workspace, nil
}

// deleteWorkspace runs the deletion state machine. Without force it
// refuses while any session is still active, which comes back as a 409.
func (apiServer *AtelierAPIServer) deleteWorkspace(_ http.ResponseWriter, r *http.Request) (*types.DeleteWorkspaceResult, *system.HTTPError) {
	ctx := r.Context()
	user := getRequestUser(r)
	workspaceID := getID(r)
	force := r.URL.Query().Get("force") == "true"

	result, err := apiServer.Sessions.DeleteWorkspace(ctx, user, workspaceID, force)
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	return result, nil
}

// ArchiveURLResponse carries a presigned archive download link.
type ArchiveURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (apiServer *AtelierAPIServer) getWorkspaceArchiveURL(_ http.ResponseWriter, r *http.Request) (*ArchiveURLResponse, *system.HTTPError) {
	ctx := r.Context()
	workspaceID := getID(r)

	if _, httpErr := apiServer.ownedWorkspace(r, workspaceID); httpErr != nil {
		return nil, httpErr
	}
	if apiServer.Cfg.FileStore.SigningSecret == "" {
		return nil, system.NewHTTPError400("presigned downloads are not configured")
	}
	if _, err := apiServer.FileStore.Get(ctx, filestore.WorkspaceArchivePath(workspaceID)); err != nil {
		return nil, lifecycleHTTPError(err)
	}

	downloadPath := system.GetAPIPath(fmt.Sprintf("/workspaces/%s/archive", workspaceID))
	url := filestore.PresignURL(
		apiServer.Cfg.WebServer.URL,
		downloadPath,
		apiServer.Cfg.FileStore.SigningSecret,
		archiveURLTTL,
	)
	return &ArchiveURLResponse{
		URL:       url,
		ExpiresAt: time.Now().Add(archiveURLTTL),
	}, nil
}

// downloadWorkspaceArchive streams the saved archive. The route accepts
// either the gateway user (who must own the workspace) or a presigned
// signature, so browsers can follow download links without auth headers.
func (apiServer *AtelierAPIServer) downloadWorkspaceArchive(w http.ResponseWriter, r *http.Request) {
	workspaceID := getID(r)

	if !apiServer.canAccessWorkspaceArchive(r, workspaceID) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	reader, err := apiServer.FileStore.DownloadFile(r.Context(), filestore.WorkspaceArchivePath(workspaceID))
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			writeErrResponse(w, err, http.StatusNotFound)
			return
		}
		writeErrResponse(w, err, http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", workspaceID+".tar.gz"))
	if _, err := io.Copy(w, reader); err != nil {
		log.Error().
			Err(err).
			Str("workspace_id", workspaceID).
			Msg("failed to stream workspace archive")
	}
}

func (apiServer *AtelierAPIServer) canAccessWorkspaceArchive(r *http.Request, workspaceID string) bool {
	if r.URL.Query().Get("signature") != "" {
		if apiServer.Cfg.FileStore.SigningSecret == "" {
			return false
		}
		// scheme and host are irrelevant, verification covers path and query
		u := fmt.Sprintf("http://api%s?%s", r.URL.Path, r.URL.RawQuery)
		return filestore.VerifySignature(u, apiServer.Cfg.FileStore.SigningSecret)
	}

	user := getRequestUser(r)
	if user == "" {
		return false
	}
	workspace, err := apiServer.Store.GetWorkspace(r.Context(), workspaceID)
	if err != nil {
		return false
	}
	return workspace.UserID == user
}

// ownedWorkspace loads a workspace and enforces ownership.
func (apiServer *AtelierAPIServer) ownedWorkspace(r *http.Request, workspaceID string) (*types.Workspace, *system.HTTPError) {
	workspace, err := apiServer.Store.GetWorkspace(r.Context(), workspaceID)
	if err != nil {
		return nil, lifecycleHTTPError(err)
	}
	if workspace.UserID != getRequestUser(r) {
		return nil, lifecycleHTTPError(types.ErrPermissionDenied)
	}
	return workspace, nil
}
