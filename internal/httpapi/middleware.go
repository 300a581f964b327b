package httpapi

import (
	"context"
	"net/http"
	"strings"
)

// SessionMiddleware lifts the client-supplied session id into the request
// context. Carts and order ledgers are keyed by it.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := r.Header.Get("X-Session-ID")
		ctx := context.WithValue(r.Context(), "session_id", session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthTokenMiddleware lifts a bearer token into the request context. The
// token is only required by order mutations; extraction never rejects.
func AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		ctx := context.WithValue(r.Context(), "auth_token", token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSessionID(ctx context.Context) string {
	if session, ok := ctx.Value("session_id").(string); ok {
		return session
	}
	return ""
}

func getAuthToken(ctx context.Context) string {
	if token, ok := ctx.Value("auth_token").(string); ok {
		return token
	}
	return ""
}
