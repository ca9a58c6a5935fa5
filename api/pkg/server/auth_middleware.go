package server

import (
	"context"
	"net/http"
)

type contextKey string

const userKey contextKey = "user"

// authMiddleware trusts the gateway-forwarded user header. There is no
// token handling here, the gateway terminates auth upstream and this
// service never sees credentials.
type authMiddleware struct {
	userHeader string
}

func newAuthMiddleware(userHeader string) *authMiddleware {
	return &authMiddleware{
		userHeader: userHeader,
	}
}

// extractMiddleware copies the forwarded user ID into the request
// context. Requests without the header pass through with no user and
// get rejected by requireUser on protected routes.
func (auth *authMiddleware) extractMiddleware(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(auth.userHeader)
		if userID != "" {
			r = r.WithContext(setRequestUser(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(f)
}

func requireUser(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		if getRequestUser(r) == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(f)
}

func setRequestUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

func getRequestUser(req *http.Request) string {
	userID, _ := req.Context().Value(userKey).(string)
	return userID
}
