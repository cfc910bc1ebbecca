package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/orelvisrguez/assistravel/db"
	"github.com/orelvisrguez/assistravel/middleware"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/templates/pages"

	"github.com/labstack/echo/v4"
)

// HomeAfterSignIn is where a successful sign-in lands
const HomeAfterSignIn = "/corresponsales"

// AuthPageHandler renders the sign-in / sign-up page
func AuthPageHandler(c echo.Context) error {
	return render(c, pages.AuthPage(pages.AuthForm{Mode: c.QueryParam("mode")}))
}

// authError maps auth failures to the message shown on the form
func authError(c echo.Context, err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return t(c, "auth.invalid_credentials")
	case errors.Is(err, services.ErrEmailNotConfirmed):
		return t(c, "auth.email_not_confirmed")
	case errors.Is(err, services.ErrAlreadyRegistered):
		return t(c, "auth.already_registered")
	case errors.Is(err, services.ErrInvalidEmail):
		return t(c, "auth.invalid_email")
	case errors.Is(err, services.ErrWeakPassword):
		return t(c, "auth.password_hint")
	case errors.Is(err, services.ErrInvalidConfirmationToken):
		return t(c, "auth.invalid_token")
	}
	log.Printf("[AUTH] Unexpected error: %v", err)
	return t(c, "auth.generic_error")
}

// authResponse answers HTMX posts with the feedback fragment and plain posts
// with the whole page.
func authResponse(c echo.Context, status int, form pages.AuthForm) error {
	if isHTMX(c) {
		return renderStatus(c, status, pages.AuthFeedback(form))
	}
	return renderStatus(c, status, pages.AuthPage(form))
}

// SignInHandler checks credentials and opens a session
func SignInHandler(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	form := pages.AuthForm{Mode: pages.AuthModeSignIn, Email: email}

	if email == "" || password == "" {
		form.Error = t(c, "auth.invalid_credentials")
		return authResponse(c, http.StatusUnprocessableEntity, form)
	}

	auditCtx := middleware.GetAuditContext(c)
	auditCtx.UserEmail = services.NormalizeEmail(email)

	sess, err := Auth.SignIn(c.Request().Context(), email, password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			services.LogSecurityEvent(db.DB, auditCtx, "LOGIN_FAILED", "invalid credentials")
			if services.Monitor.TrackFailure(c.RealIP(), auditCtx.UserEmail) {
				services.LogSecurityEvent(db.DB, auditCtx, "BRUTE_FORCE_SUSPECTED", "repeated failed sign-ins")
			}
		}
		form.Error = authError(c, err)
		return authResponse(c, http.StatusUnprocessableEntity, form)
	}

	services.Monitor.Reset(c.RealIP())
	middleware.SetSessionCookie(c, sess.Token)

	auditCtx.UserID = sess.UserID
	services.LogAuditEvent(db.DB, auditCtx, services.AuditEntry{
		Action:       models.AuditActionLogin,
		ResourceType: models.AuditResourceUser,
		ResourceID:   sess.UserID,
		ResourceName: auditCtx.UserEmail,
		Description:  "User signed in",
	})

	return redirectTo(c, HomeAfterSignIn)
}

// SignUpHandler registers a new identity pending email confirmation
func SignUpHandler(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	form := pages.AuthForm{Mode: pages.AuthModeSignUp, Email: email}

	if password != c.FormValue("confirm_password") {
		form.Error = t(c, "auth.passwords_mismatch")
		return authResponse(c, http.StatusUnprocessableEntity, form)
	}

	user, err := Auth.SignUp(c.Request().Context(), email, password, middleware.GetLocale(c))
	if err != nil {
		form.Error = authError(c, err)
		return authResponse(c, http.StatusUnprocessableEntity, form)
	}

	log.Printf("[AUTH] New account %s pending confirmation", user.Email)
	form.Notice = t(c, "auth.check_email")
	return authResponse(c, http.StatusOK, form)
}

// ConfirmEmailHandler follows the link sent after sign-up
func ConfirmEmailHandler(c echo.Context) error {
	user, err := Auth.ConfirmEmail(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return renderStatus(c, http.StatusBadRequest, pages.AuthPage(pages.AuthForm{
			Mode:  pages.AuthModeSignIn,
			Error: authError(c, err),
		}))
	}
	return render(c, pages.AuthPage(pages.AuthForm{
		Mode:   pages.AuthModeSignIn,
		Email:  user.Email,
		Notice: t(c, "auth.confirmed"),
	}))
}

// LogoutHandler ends the session and forgets its store
func LogoutHandler(c echo.Context) error {
	token := middleware.GetSessionToken(c)
	if token != "" {
		if err := Auth.SignOut(c.Request().Context(), token); err != nil {
			log.Printf("[AUTH] Sign-out failed: %v", err)
		}
		Sessions.Drop(token)

		auditCtx := middleware.GetAuditContext(c)
		if auditCtx.UserID != "" {
			services.LogAuditEvent(db.DB, auditCtx, services.AuditEntry{
				Action:       models.AuditActionLogout,
				ResourceType: models.AuditResourceUser,
				ResourceID:   auditCtx.UserID,
				ResourceName: auditCtx.UserEmail,
				Description:  "User signed out",
			})
		}
	}

	middleware.ClearSessionCookie(c)
	return redirectTo(c, "/auth")
}

// CurrentUserHandler returns the session snapshot as JSON
func CurrentUserHandler(c echo.Context) error {
	snap := middleware.GetSnapshot(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":          snap.Identity,
		"profile":       snap.Profile,
		"capabilities":  snap.Capabilities,
		"loading":       snap.Loading(),
		"authenticated": snap.Authenticated(),
	})
}
