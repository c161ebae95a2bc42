package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// Middleware resolves the acting user from the session and gates routes by
// role. The stock and sale engines read the actor from context for ledger
// attribution.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// ResolveActor loads the session's user, if any, into the request context.
// It never rejects a request; the Require* middlewares do.
func (m Middleware) ResolveActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(sess.User(), 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := m.Service.Lookup(r.Context(), id)
		if err != nil || user.Blocked {
			if err != nil && m.Logger != nil {
				m.Logger.Warn("resolve actor", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		actor := &shared.Actor{UserID: user.ID, Email: user.Email, Role: user.Role}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireAuth rejects anonymous requests.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.ActorFromContext(r.Context()) == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the current user carries one of the given roles.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.ActorFromContext(r.Context())
			if actor == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
