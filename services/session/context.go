package session

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx carrying snap
func NewContext(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, contextKey{}, snap)
}

// FromContext returns the snapshot stored in ctx, or an anonymous one
func FromContext(ctx context.Context) Snapshot {
	if ctx != nil {
		if snap, ok := ctx.Value(contextKey{}).(Snapshot); ok {
			return snap
		}
	}
	return Snapshot{State: StateAnonymous}
}
