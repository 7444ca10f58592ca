package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/auth"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/policy"
	"github.com/nikhil/teamtasks/internal/response"
)

type ContextKey string

const UserContextKey ContextKey = "currentUser"

const msgForbidden = "You do not have permission to access this resource"

// WithPrincipal stores the verified caller in ctx.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, UserContextKey, p)
}

// PrincipalFrom returns the caller stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(UserContextKey).(auth.Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid bearer token before any
// handler runs.
func AuthMiddleware(tokens *auth.TokenManager, log *logger.Logger) mux.MiddlewareFunc {
	return authenticate(tokens, log, bearerToken)
}

// WebSocketAuthMiddleware also accepts the token as a "token" query
// parameter, since browsers cannot set headers on websocket requests.
func WebSocketAuthMiddleware(tokens *auth.TokenManager, log *logger.Logger) mux.MiddlewareFunc {
	return authenticate(tokens, log, func(r *http.Request) string {
		if token := bearerToken(r); token != "" {
			return token
		}
		return r.URL.Query().Get("token")
	})
}

func authenticate(tokens *auth.TokenManager, log *logger.Logger, extract func(*http.Request) string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := tokens.Verify(extract(r))
			if err != nil {
				log.WithContext(r.Context()).Debug("Rejected token", "path", r.URL.Path, "error", err)
				response.Error(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// Authorize checks the caller's role against the allow-list entry of the
// matched route's name. Unnamed or unlisted routes are denied.
func Authorize(table policy.Table, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				response.Error(w, r, log, apperror.Unauthenticated("Missing auth token"))
				return
			}

			var name string
			if route := mux.CurrentRoute(r); route != nil {
				name = route.GetName()
			}
			if !table.Allows(name, principal.Role) {
				log.WithContext(r.Context()).WithUser(principal.UserID).Warn("Role not allowed",
					"route", name,
					"role", principal.Role,
				)
				response.Error(w, r, log, apperror.Forbidden(msgForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ResponseWrapperMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
