package middleware

import (
	"net/http"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "asistitravel_session"
	// ContextKeySnapshot is the context key for the session snapshot
	ContextKeySnapshot = "session_snapshot"
	// ContextKeySessionToken is the context key for the raw session token
	ContextKeySessionToken = "session_token"
)

// LoadSession resolves the session store behind the cookie and stores its
// snapshot in both the echo and the request context.
func LoadSession(manager *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			}

			snap := manager.Get(c.Request().Context(), token).Snapshot()
			c.Set(ContextKeySessionToken, token)
			c.Set(ContextKeySnapshot, snap)
			c.SetRequest(c.Request().WithContext(session.NewContext(c.Request().Context(), snap)))

			return next(c)
		}
	}
}

// RequireAuth sends anonymous visitors to the auth page
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := GetSnapshot(c)
			if snap.Authenticated() || snap.Loading() {
				return next(c)
			}

			if GetSessionToken(c) != "" {
				ClearSessionCookie(c)
			}
			return redirect(c, "/auth")
		}
	}
}

// RedirectIfAuthenticated keeps signed-in users off the auth page
func RedirectIfAuthenticated(target string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetSnapshot(c).Authenticated() {
				return redirect(c, target)
			}
			return next(c)
		}
	}
}

func redirect(c echo.Context, target string) error {
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// GetSnapshot retrieves the session snapshot from context
func GetSnapshot(c echo.Context) session.Snapshot {
	snap, ok := c.Get(ContextKeySnapshot).(session.Snapshot)
	if !ok {
		return session.Snapshot{State: session.StateAnonymous}
	}
	return snap
}

// GetSessionToken retrieves the raw session token from context
func GetSessionToken(c echo.Context) string {
	token, _ := c.Get(ContextKeySessionToken).(string)
	return token
}

// GetOwnerID returns the id records are scoped to, or "" when anonymous
func GetOwnerID(c echo.Context) string {
	snap := GetSnapshot(c)
	if snap.Identity == nil {
		return ""
	}
	return snap.Identity.ID
}

// GetOwnerScopedQuery returns a GORM query scoped to the current user's records
func GetOwnerScopedQuery(c echo.Context, db *gorm.DB) *gorm.DB {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		// Return query that matches nothing
		return db.Where("1 = 0")
	}
	return db.Scopes(services.OwnerScope(ownerID))
}

func isProduction(c echo.Context) bool {
	cfg, ok := c.Get("config").(*config.Config)
	return ok && cfg.IsProduction()
}

// SetSessionCookie stores token in the session cookie
func SetSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.DefaultSessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}
