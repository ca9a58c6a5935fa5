// Package server exposes the workspace session lifecycle over REST: the
// gateway-facing CRUD surface, the agent-facing tool proxy, the cleanup
// queue endpoints and the per-session websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/cleanup"
	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/pubsub"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

const APIPrefix = "/api/v1"

// SessionLifecycle is the slice of the workspace manager the HTTP layer
// drives. Implemented by *workspace.Manager.
type SessionLifecycle interface {
	CreateSession(ctx context.Context, userID string, req *types.CreateSessionRequest) (*types.WorkspaceSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*types.WorkspaceSession, error)
	ListSessions(ctx context.Context, userID string) ([]*types.WorkspaceSession, error)
	ListWorkspaceSessions(ctx context.Context, userID, workspaceID string) ([]*types.WorkspaceSession, error)
	Connection(ctx context.Context, userID, sessionID string) (*types.ContainerConnection, error)
	SaveSession(ctx context.Context, userID, sessionID string) (*types.WorkspaceSession, error)
	UploadToSession(ctx context.Context, userID, sessionID string, data []byte, destPath string) (*toolserver.ArchiveResponse, error)
	SetActivityLevel(ctx context.Context, userID, sessionID string, level types.ActivityLevel) error
	HandleConnected(ctx context.Context, sessionID string) error
	HandleDisconnected(ctx context.Context, sessionID string) error
	TouchActivity(ctx context.Context, sessionID string) error
	DeleteWorkspace(ctx context.Context, userID, workspaceID string, force bool) (*types.DeleteWorkspaceResult, error)
}

// ToolServerClient is the slice of the tool server client the tool proxy
// forwards requests through. Implemented by *toolserver.Client.
type ToolServerClient interface {
	ExecuteSearch(ctx context.Context, conn *types.ContainerConnection, req *toolserver.SearchRequest) (*toolserver.SearchResponse, error)
	ExecuteRead(ctx context.Context, conn *types.ContainerConnection, req *toolserver.ReadRequest) (*toolserver.ReadResponse, error)
	ExecuteCommand(ctx context.Context, conn *types.ContainerConnection, req *toolserver.CommandRequest) (*toolserver.CommandResponse, error)
	ExecuteEdit(ctx context.Context, conn *types.ContainerConnection, req *toolserver.EditRequest) (*toolserver.EditResponse, error)
	CreateArchive(ctx context.Context, conn *types.ContainerConnection, req *toolserver.CreateArchiveRequest) (*toolserver.ArchiveResponse, error)
	ExtractArchive(ctx context.Context, conn *types.ContainerConnection, req *toolserver.ExtractArchiveRequest) (*toolserver.ArchiveResponse, error)
	InstallPackages(ctx context.Context, conn *types.ContainerConnection, req *toolserver.NpmInstallRequest) (*toolserver.CommandResponse, error)
	StartDevServer(ctx context.Context, conn *types.ContainerConnection, req *toolserver.StartDevServerRequest) (*toolserver.DevServerResponse, error)
	StopDevServer(ctx context.Context, conn *types.ContainerConnection) (*toolserver.DevServerResponse, error)
	AllocatePort(ctx context.Context, conn *types.ContainerConnection, req *toolserver.PortAllocateRequest) (*toolserver.PortAllocateResponse, error)
}

// ContainerHealth reports whether the container runtime is reachable.
// Implemented by *docker.Runtime.
type ContainerHealth interface {
	IsAvailable(ctx context.Context) error
}

type AtelierAPIServer struct {
	Cfg        *config.ServerConfig
	Store      store.Store
	Sessions   SessionLifecycle
	Tools      ToolServerClient
	Queue      *cleanup.Queue
	Dispatcher *cleanup.Dispatcher
	Runtime    ContainerHealth
	FileStore  filestore.FileStore
	PubSub     pubsub.PubSub

	authMiddleware *authMiddleware
	router         *mux.Router
}

func NewServer(
	cfg *config.ServerConfig,
	store store.Store,
	ps pubsub.PubSub,
	fs filestore.FileStore,
	runtime ContainerHealth,
	tools ToolServerClient,
	sessions SessionLifecycle,
	queue *cleanup.Queue,
	dispatcher *cleanup.Dispatcher,
) (*AtelierAPIServer, error) {
	if cfg.WebServer.URL == "" {
		return nil, fmt.Errorf("server url is required")
	}
	if cfg.WebServer.Host == "" {
		return nil, fmt.Errorf("server host is required")
	}
	if cfg.WebServer.Port == 0 {
		return nil, fmt.Errorf("server port is required")
	}
	if cfg.WebServer.UserHeader == "" {
		return nil, fmt.Errorf("server user header is required")
	}

	return &AtelierAPIServer{
		Cfg:            cfg,
		Store:          store,
		Sessions:       sessions,
		Tools:          tools,
		Queue:          queue,
		Dispatcher:     dispatcher,
		Runtime:        runtime,
		FileStore:      fs,
		PubSub:         ps,
		authMiddleware: newAuthMiddleware(cfg.WebServer.UserHeader),
	}, nil
}

func (apiServer *AtelierAPIServer) ListenAndServe(ctx context.Context) error {
	apiRouter, err := apiServer.registerRoutes(ctx)
	if err != nil {
		return err
	}

	apiServer.startSessionWebSocketServer(
		ctx,
		apiRouter,
		"/ws/sessions/{id}/events",
	)

	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", apiServer.Cfg.WebServer.Host, apiServer.Cfg.WebServer.Port),
		// WriteTimeout and ReadTimeout stay 0 so archive uploads and
		// websocket upgrades are never cut off mid-transfer.
		// Note: ReadHeaderTimeout is kept to prevent slowloris attacks
		WriteTimeout:      0,
		ReadTimeout:       0,
		ReadHeaderTimeout: time.Second * 60,
		IdleTimeout:       time.Minute * 60,
		Handler:           apiServer.router,
	}
	return srv.ListenAndServe()
}

func matchAllRoutes(*http.Request, *mux.RouteMatch) bool {
	return true
}

func (apiServer *AtelierAPIServer) registerRoutes(_ context.Context) (*mux.Router, error) {
	router := mux.NewRouter()
	router.Use(ErrorLoggingMiddleware)

	// insecure router is under /api/v1 but not protected by auth
	insecureRouter := router.PathPrefix(APIPrefix).Subrouter()

	// any route that lives under /api/v1 gets the gateway user extracted
	subRouter := router.PathPrefix(APIPrefix).Subrouter()
	subRouter.Use(apiServer.authMiddleware.extractMiddleware)

	// auth router requires the gateway-forwarded user header
	authRouter := subRouter.MatcherFunc(matchAllRoutes).Subrouter()
	authRouter.Use(requireUser)

	insecureRouter.HandleFunc("/healthz", apiServer.healthz).Methods(http.MethodGet)

	authRouter.HandleFunc("/workspaces", system.Wrapper(apiServer.createWorkspace)).Methods(http.MethodPost)
	authRouter.HandleFunc("/workspaces", system.Wrapper(apiServer.listWorkspaces)).Methods(http.MethodGet)
	authRouter.HandleFunc("/workspaces/{id}", system.Wrapper(apiServer.getWorkspace)).Methods(http.MethodGet)
	authRouter.HandleFunc("/workspaces/{id}", system.Wrapper(apiServer.deleteWorkspace)).Methods(http.MethodDelete)
	authRouter.HandleFunc("/workspaces/{id}/archive/download-url", system.Wrapper(apiServer.getWorkspaceArchiveURL)).Methods(http.MethodGet)
	authRouter.HandleFunc("/workspaces/{id}/sessions", system.Wrapper(apiServer.createSession)).Methods(http.MethodPost)
	authRouter.HandleFunc("/workspaces/{id}/sessions", system.Wrapper(apiServer.listWorkspaceSessions)).Methods(http.MethodGet)

	authRouter.HandleFunc("/sessions", system.Wrapper(apiServer.createSession)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions", system.Wrapper(apiServer.listSessions)).Methods(http.MethodGet)
	authRouter.HandleFunc("/sessions/{id}", system.Wrapper(apiServer.getSession)).Methods(http.MethodGet)
	authRouter.HandleFunc("/sessions/{id}", apiServer.deleteSession).Methods(http.MethodDelete)
	authRouter.HandleFunc("/sessions/{id}/save", system.Wrapper(apiServer.saveSession)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/activity", system.Wrapper(apiServer.setSessionActivity)).Methods(http.MethodPost)

	// agent-facing tool proxy, forwarded to the in-container tool server
	authRouter.HandleFunc("/sessions/{id}/tools/search", system.Wrapper(apiServer.toolSearch)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/tools/read", system.Wrapper(apiServer.toolRead)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/tools/command", system.Wrapper(apiServer.toolCommand)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/tools/edit", system.Wrapper(apiServer.toolEdit)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/npm/install", system.Wrapper(apiServer.npmInstall)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/dev-server/start", system.Wrapper(apiServer.startDevServer)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/dev-server/stop", system.Wrapper(apiServer.stopDevServer)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/ports/allocate", system.Wrapper(apiServer.allocatePort)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/archive/create", system.Wrapper(apiServer.createSessionArchive)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/archive/extract", system.Wrapper(apiServer.extractSessionArchive)).Methods(http.MethodPost)
	authRouter.HandleFunc("/sessions/{id}/archive/upload", system.Wrapper(apiServer.uploadSessionArchive)).Methods(http.MethodPost)

	authRouter.HandleFunc("/cleanup/status", system.Wrapper(apiServer.cleanupStatus)).Methods(http.MethodGet)
	authRouter.HandleFunc("/cleanup/run", apiServer.runCleanup).Methods(http.MethodPost)

	// archive downloads accept either the gateway user or a presigned
	// signature, so the route sits outside the requireUser router
	subRouter.HandleFunc("/workspaces/{id}/archive", apiServer.downloadWorkspaceArchive).Methods(http.MethodGet)

	apiServer.router = router
	return subRouter, nil
}

func getID(r *http.Request) string {
	vars := mux.Vars(r)
	return vars["id"]
}

func writeResponse(rw http.ResponseWriter, data interface{}, statusCode int) {
	rw.Header().Set("Content-Type", "application/json")

	rw.WriteHeader(statusCode)

	if data == nil {
		return
	}

	err := json.NewEncoder(rw).Encode(data)
	if err != nil {
		log.Err(err).Msg("error writing response")
		http.Error(rw, "Internal server error", http.StatusInternalServerError)
	}
}

func writeErrResponse(rw http.ResponseWriter, err error, statusCode int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)

	_ = json.NewEncoder(rw).Encode(&system.HTTPError{
		StatusCode: statusCode,
		Message:    err.Error(),
	})
}

// lifecycleHTTPError maps the lifecycle's typed errors onto HTTP statuses.
func lifecycleHTTPError(err error) *system.HTTPError {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, filestore.ErrNotFound):
		return system.NewHTTPError404(err.Error())
	case errors.Is(err, types.ErrPermissionDenied):
		return system.NewHTTPError403(err.Error())
	case errors.Is(err, types.ErrWorkspaceBusy), errors.Is(err, types.ErrSessionNotReady):
		return system.NewHTTPError409(err.Error())
	case errors.Is(err, types.ErrNoWorkspace):
		return system.NewHTTPError400(err.Error())
	case errors.Is(err, types.ErrNoFreePorts):
		return &system.HTTPError{StatusCode: http.StatusServiceUnavailable, Message: err.Error()}
	default:
		return system.NewHTTPError500(err.Error())
	}
}

// HealthzResponse reports subsystem liveness for the healthz endpoint.
type HealthzResponse struct {
	OK           bool `json:"ok"`
	Docker       bool `json:"docker"`
	Store        bool `json:"store"`
	DispatcherOK bool `json:"dispatcher_ok"`
}

func (apiServer *AtelierAPIServer) healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := &HealthzResponse{
		Docker:       apiServer.Runtime.IsAvailable(ctx) == nil,
		DispatcherOK: apiServer.Dispatcher.Healthy(),
	}

	// the stats query doubles as the store reachability probe
	_, err := apiServer.Queue.Stats(ctx)
	status.Store = err == nil

	status.OK = status.Docker && status.Store && status.DispatcherOK

	code := http.StatusOK
	if !status.OK {
		code = http.StatusServiceUnavailable
	}
	writeResponse(w, status, code)
}
