// Package registry tracks which container serves each live session. It
// is an in-memory view rebuilt from Docker on startup, the database
// stays the source of truth for session records.
package registry

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/types"
)

type Registry struct {
	connections *xsync.MapOf[string, *types.ContainerConnection] // session ID -> connection
}

func New() *Registry {
	return &Registry{
		connections: xsync.NewMapOf[string, *types.ContainerConnection](),
	}
}

func (r *Registry) Register(sessionID string, conn *types.ContainerConnection) {
	r.connections.Store(sessionID, conn)
	log.Debug().
		Str("session_id", sessionID).
		Str("container_name", conn.ContainerName).
		Msg("registered container connection")
}

func (r *Registry) Lookup(sessionID string) (*types.ContainerConnection, bool) {
	return r.connections.Load(sessionID)
}

// Unregister is idempotent, removing an unknown session is a no-op.
func (r *Registry) Unregister(sessionID string) {
	if _, existed := r.connections.LoadAndDelete(sessionID); existed {
		log.Debug().
			Str("session_id", sessionID).
			Msg("unregistered container connection")
	}
}

func (r *Registry) Len() int {
	return r.connections.Size()
}

func (r *Registry) Range(fn func(sessionID string, conn *types.ContainerConnection) bool) {
	r.connections.Range(fn)
}
