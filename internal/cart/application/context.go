package application

import "context"

type ctxKey struct{}

type binding struct {
	sessionID string
	store     Store
}

// WithStore binds a session cart to ctx.
func WithStore(ctx context.Context, sessionID string, store Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, binding{sessionID: sessionID, store: store})
}

// FromContext returns the session cart bound to ctx, or Nop when there is none.
func FromContext(ctx context.Context) Store {
	if b, ok := ctx.Value(ctxKey{}).(binding); ok && b.store != nil {
		return b.store
	}
	return Nop{}
}

func SessionID(ctx context.Context) string {
	if b, ok := ctx.Value(ctxKey{}).(binding); ok {
		return b.sessionID
	}
	return ""
}
