package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/pubsub"
)

var sessionWebsocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// startSessionWebSocketServer mounts the per-session event socket. It
// streams status events for one session and doubles as the connection
// signal for activity tracking. Client frames refresh the activity
// clock, and when the last socket drops the disconnect grace timer
// starts.
func (apiServer *AtelierAPIServer) startSessionWebSocketServer(
	_ context.Context,
	r *mux.Router,
	path string,
) {

	r.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		user := getRequestUser(r)
		if user == "" {
			log.Error().Msg("websocket request without gateway user")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sessionID := getID(r)
		if sessionID == "" {
			log.Error().Msg("no session id supplied")
			http.Error(w, "no session id supplied", http.StatusBadRequest)
			return
		}

		// ownership and existence are checked before the upgrade so a
		// bad request still gets a plain HTTP status
		if _, err := apiServer.Sessions.GetSession(r.Context(), user, sessionID); err != nil {
			httpErr := lifecycleHTTPError(err)
			log.Error().Err(err).Str("session_id", sessionID).Msg("websocket session lookup failed")
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		conn, err := sessionWebsocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Msgf("Error upgrading websocket: %s", err.Error())
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		defer conn.Close()

		if err := apiServer.Sessions.HandleConnected(r.Context(), sessionID); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to register websocket connection")
			return
		}

		defer func() {
			// the request context is already gone once the client drops,
			// so the disconnect bookkeeping gets its own deadline
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := apiServer.Sessions.HandleDisconnected(ctx, sessionID); err != nil {
				log.Error().Err(err).Str("session_id", sessionID).Msg("failed to unregister websocket connection")
			}
		}()

		// Mutex for thread-safe WebSocket writes (ping and subscription writes can race)
		var wsMu sync.Mutex

		// Start server-initiated ping goroutine to keep connection alive through proxies/firewalls
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					wsMu.Lock()
					err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second))
					wsMu.Unlock()
					if err != nil {
						log.Debug().Err(err).Str("session_id", sessionID).Msg("session websocket ping failed, connection closing")
						return
					}
				}
			}
		}()

		sub, err := apiServer.PubSub.Subscribe(r.Context(), pubsub.SessionStatusSubject(sessionID), func(payload []byte) error {
			wsMu.Lock()
			writeErr := conn.WriteMessage(websocket.TextMessage, payload)
			wsMu.Unlock()
			if writeErr != nil {
				log.Error().Msgf("Error writing to websocket: %s", writeErr.Error())
			}
			return nil
		})
		if err != nil {
			log.Error().Msgf("Error subscribing to session status: %s", err.Error())
			return
		}

		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				log.Error().Msgf("failed to unsubscribe: %v", err)
			}
		}()

		log.Trace().
			Str("user_id", user).
			Str("session_id", sessionID).
			Msg("session websocket connected")

		// block on reading client frames. Every frame counts as activity,
		// any read error means the client went away and the loop ends
		for {
			messageType, _, err := conn.ReadMessage()
			if err != nil {
				log.Trace().Msgf("Client disconnected: %s", err.Error())
				break
			}
			if messageType == websocket.CloseMessage {
				log.Trace().Msgf("Received close frame from client.")
				break
			}
			if err := apiServer.Sessions.TouchActivity(r.Context(), sessionID); err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record websocket activity")
			}
		}
	})
}
