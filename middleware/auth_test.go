package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// fakeRepository resolves tokens from fixed maps
type fakeRepository struct {
	identities map[string]*models.Identity
	profiles   map[string]*models.UserProfile
}

func (f *fakeRepository) GetCurrentIdentity(_ context.Context, token string) (*models.Identity, error) {
	return f.identities[token], nil
}

func (f *fakeRepository) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	return f.profiles[userID], nil
}

func (f *fakeRepository) OnAuthStateChange(func(session.Event)) func() {
	return func() {}
}

func newTestManager() *session.Manager {
	repo := &fakeRepository{
		identities: map[string]*models.Identity{
			"admin-token":  {ID: "u-admin", Email: "admin@asistitravel.com"},
			"viewer-token": {ID: "u-viewer", Email: "viewer@asistitravel.com"},
		},
		profiles: map[string]*models.UserProfile{
			"u-admin":  {ID: "u-admin", Role: models.RoleAdmin},
			"u-viewer": {ID: "u-viewer", Role: models.RoleVisualizador},
		},
	}
	m := session.NewManager(repo)
	m.RevalidateEvery = 0
	return m
}

func withSession(t *testing.T, m *session.Manager, req *http.Request, next echo.HandlerFunc) (echo.Context, *httptest.ResponseRecorder, error) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	err := LoadSession(m)(next)(c)
	return c, rec, err
}

func TestLoadSession(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "admin-token"})

		c, _, err := withSession(t, m, req, func(c echo.Context) error {
			assert.True(t, session.FromContext(c.Request().Context()).Authenticated())
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, err)

		snap := GetSnapshot(c)
		assert.True(t, snap.Authenticated())
		assert.True(t, snap.Capabilities.CanDelete)
		assert.Equal(t, "u-admin", GetOwnerID(c))
		assert.Equal(t, "admin-token", GetSessionToken(c))
	})

	t.Run("NoCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c, _, err := withSession(t, m, req, func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, err)
		assert.Equal(t, session.StateAnonymous, GetSnapshot(c).State)
		assert.Equal(t, "", GetOwnerID(c))
	})

	t.Run("UnknownToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
		c, _, err := withSession(t, m, req, func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, err)
		assert.False(t, GetSnapshot(c).Authenticated())
	})
}

func TestRequireAuth(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	protected := func(c echo.Context) error {
		return RequireAuth()(func(c echo.Context) error {
			return c.String(http.StatusOK, "success")
		})(c)
	}

	t.Run("ValidSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/casos", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "viewer-token"})
		_, rec, err := withSession(t, m, req, protected)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NoCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/casos", nil)
		_, rec, err := withSession(t, m, req, protected)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth", rec.Header().Get("Location"))
	})

	t.Run("StaleCookieIsCleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/casos", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
		_, rec, err := withSession(t, m, req, protected)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		cleared := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == SessionCookieName && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared)
	})

	t.Run("HTMXRedirect", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/casos", nil)
		req.Header.Set("HX-Request", "true")
		_, rec, err := withSession(t, m, req, protected)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "/auth", rec.Header().Get("HX-Redirect"))
	})

	t.Run("LoadingPassesThrough", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/casos", nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.Set(ContextKeySnapshot, session.Snapshot{State: session.StateLoading})

		assert.NoError(t, protected(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRedirectIfAuthenticated(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	page := func(c echo.Context) error {
		return RedirectIfAuthenticated("/corresponsales")(func(c echo.Context) error {
			return c.String(http.StatusOK, "auth page")
		})(c)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "admin-token"})
	_, rec, err := withSession(t, m, req, page)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/corresponsales", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/auth", nil)
	_, rec, err = withSession(t, m, req, page)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionCookies(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	SetSessionCookie(c, "tok")
	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, "tok", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.False(t, cookies[0].Secure)
		assert.Greater(t, cookies[0].MaxAge, 0)
	}
}
