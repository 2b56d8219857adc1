package shared

import "context"

// sessionContextKey is unexported so only this package can attach a
// session to a request context.
type sessionContextKey struct{}

// ContextWithSession binds sess to a derived context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session bound to ctx, or nil when the
// request carries none.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
