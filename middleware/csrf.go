package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// GetCSRFToken returns the token Echo's CSRF middleware issued for this
// request. ViewContext copies it into every page so plain forms post it as
// _csrf and HTMX sends it in the X-CSRF-Token header. Empty when the CSRF
// middleware did not run.
func GetCSRFToken(c echo.Context) string {
	token, _ := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
