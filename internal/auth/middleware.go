package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	clientIDKey contextKey = "client_id"
	scopeKey    contextKey = "scope"
)

// Middleware returns an HTTP middleware that validates bearer access tokens
// and stores the client ID and scope in the request context. With scopes
// given, tokens carrying any other scope are rejected with 403.
func Middleware(jwtMgr *JWTManager, scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization format"}`, http.StatusUnauthorized)
				return
			}

			claims, err := jwtMgr.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			if !allowed(claims.Scope, scopes) {
				http.Error(w, `{"error":"token scope not permitted"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClient(r.Context(), claims.ClientID, claims.Scope)))
		})
	}
}

func allowed(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func withClient(ctx context.Context, clientID, scope string) context.Context {
	ctx = context.WithValue(ctx, clientIDKey, clientID)
	return context.WithValue(ctx, scopeKey, scope)
}

// ClientIDFromContext extracts the authenticated client ID from the request context.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

// ScopeFromContext extracts the authenticated token scope.
func ScopeFromContext(ctx context.Context) string {
	s, _ := ctx.Value(scopeKey).(string)
	return s
}
