package middleware

import (
	"github.com/orelvisrguez/assistravel/templates/components"

	"github.com/labstack/echo/v4"
)

// ViewContext hands templates the request state they render from. It runs
// after the session, CSRF and nonce middleware.
func ViewContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetView(c)
			return next(c)
		}
	}
}

// SetView (re)builds the template view from the echo context. Handlers call
// it after changing the session so the response reflects the new snapshot.
func SetView(c echo.Context) {
	ctx := c.Request().Context()
	view := components.View{
		Snapshot: GetSnapshot(c),
		CSRF:     GetCSRFToken(c),
		Nonce:    GetNonce(ctx),
		Path:     c.Request().URL.Path,
		CSSVer:   GetCSSVersion(),
		JSVer:    GetAppJSVersion(),
	}
	c.SetRequest(c.Request().WithContext(components.WithView(ctx, view)))
}
