package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// Actor identifies the authenticated user attached to a request.
// Ledger entries and audit rows are attributed to it.
type Actor struct {
	UserID int64
	Email  string
	Role   string
}

type actorContextKey struct{}

// ContextWithActor stores the acting user in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the acting user from context, nil when anonymous.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}

// ActorID returns the acting user id or zero for anonymous requests.
func ActorID(ctx context.Context) int64 {
	if actor := ActorFromContext(ctx); actor != nil {
		return actor.UserID
	}
	return 0
}
