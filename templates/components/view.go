package components

import (
	"context"

	"github.com/orelvisrguez/assistravel/services/i18n"
	"github.com/orelvisrguez/assistravel/services/session"
)

// View is the per-request state every page reads: who is signed in and the
// tokens forms and scripts need.
type View struct {
	Snapshot session.Snapshot
	CSRF     string
	Nonce    string
	Path     string
	CSSVer   string
	JSVer    string
}

type viewKey struct{}

// WithView returns a copy of ctx carrying v
func WithView(ctx context.Context, v View) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

// ViewFrom returns the view stored in ctx. The snapshot falls back to the one
// the session middleware placed in ctx.
func ViewFrom(ctx context.Context) View {
	if v, ok := ctx.Value(viewKey{}).(View); ok {
		return v
	}
	return View{Snapshot: session.FromContext(ctx)}
}

// T translates key for the locale in ctx
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return i18n.T(ctx, key, args...)
}
