package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/i18n"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

var (
	// Auth is the authentication client every auth handler talks to
	Auth *services.AuthClient
	// Sessions holds the per-token session stores
	Sessions *session.Manager
)

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// render writes component with a 200 status
func render(c echo.Context, component templ.Component) error {
	return renderStatus(c, http.StatusOK, component)
}

func renderStatus(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// redirectTo sends the browser to target, through HX-Redirect for HTMX requests
func redirectTo(c echo.Context, target string) error {
	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func t(c echo.Context, key string, args ...map[string]interface{}) string {
	return i18n.T(c.Request().Context(), key, args...)
}

// notFoundOr maps a missing record to 404 and anything else to 500
func notFoundOr(c echo.Context, err error, what string) error {
	if errors.Is(err, services.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, t(c, "common.not_found"))
	}
	log.Printf("[ERROR] %s: %v", what, err)
	return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
}
