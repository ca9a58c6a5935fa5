package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

// cleanupStatus reports queue depth per state and kind plus dispatcher
// liveness.
func (apiServer *AtelierAPIServer) cleanupStatus(_ http.ResponseWriter, r *http.Request) (*types.CleanupQueueStats, *system.HTTPError) {
	stats, err := apiServer.Queue.Stats(r.Context())
	if err != nil {
		return nil, system.NewHTTPError500(err.Error())
	}
	stats.DispatcherOK = apiServer.Dispatcher.Healthy()
	return stats, nil
}

// runCleanup enqueues a manual cleanup job for the caller's sessions and
// answers 202 with the job. Teardown happens asynchronously. An empty
// request targets every active session the caller owns, resolved here so
// the job payload always carries concrete session IDs.
func (apiServer *AtelierAPIServer) runCleanup(w http.ResponseWriter, r *http.Request) {
	user := getRequestUser(r)

	var req types.RunCleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrResponse(w, err, http.StatusBadRequest)
		return
	}

	sessionIDs := req.SessionIDs
	if len(sessionIDs) == 0 {
		sessions, err := apiServer.Store.ListSessions(r.Context(), &store.ListSessionsQuery{
			UserID:   user,
			Statuses: types.ActiveSessionStatuses,
		})
		if err != nil {
			writeErrResponse(w, err, http.StatusInternalServerError)
			return
		}
		for _, session := range sessions {
			sessionIDs = append(sessionIDs, session.ID)
		}
	}

	if len(sessionIDs) == 0 {
		writeResponse(w, nil, http.StatusNoContent)
		return
	}

	job, err := apiServer.Queue.ScheduleManualCleanup(r.Context(), user, sessionIDs)
	if err != nil {
		writeErrResponse(w, err, http.StatusInternalServerError)
		return
	}

	writeResponse(w, job, http.StatusAccepted)
}
