package middleware

import (
	"log"
	"net/http"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/authz"
	"github.com/orelvisrguez/assistravel/services/i18n"
	"github.com/orelvisrguez/assistravel/templates/pages"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Guard requirements used by the route table
var (
	RequireEditor = authz.Requirement{RequiresEdit: true}
	RequireDelete = authz.Requirement{RequiresDelete: true}
	RequireAdmin  = authz.Requirement{RequiredRoles: []models.Role{models.RoleAdmin}}
)

// RequirePermission evaluates req against the session snapshot. Only an
// allowed decision reaches the handler; every other outcome is rendered here.
func RequirePermission(req authz.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := req.Evaluate(GetSnapshot(c).Subject())
			if decision.Allowed() {
				return next(c)
			}
			return renderDecision(c, decision)
		}
	}
}

func renderDecision(c echo.Context, d authz.Decision) error {
	htmx := c.Request().Header.Get("HX-Request") == "true"

	switch d.Outcome {
	case authz.OutcomeLoading:
		if htmx {
			return render(c, http.StatusAccepted, pages.LoadingFragment())
		}
		return render(c, http.StatusOK, pages.LoadingPage())
	case authz.OutcomeHidden:
		if htmx {
			return c.NoContent(http.StatusNoContent)
		}
		return render(c, http.StatusOK, pages.BlankPage())
	default:
		message := i18n.T(c.Request().Context(), d.MessageKey, d.Args)
		log.Printf("[SECURITY] Access denied to %s %s for user %s: %s",
			c.Request().Method, c.Path(), GetOwnerID(c), d.MessageKey)
		if htmx {
			return render(c, http.StatusForbidden, pages.AccessDenied(message))
		}
		return render(c, http.StatusForbidden, pages.AccessDeniedPage(message))
	}
}

func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}
