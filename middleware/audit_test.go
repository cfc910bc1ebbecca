package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestAuditContext(t *testing.T) {
	e := echo.New()

	t.Run("FullContext", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "test-agent")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		c.Set(ContextKeySnapshot, session.Snapshot{
			State:    session.StateAuthenticated,
			Identity: &models.Identity{ID: "user-123", Email: "ana@asistitravel.com"},
			Profile:  &models.UserProfile{ID: "user-123", Role: models.RoleEditor},
		})

		handler := AuditContext()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))

		auditCtx := GetAuditContext(c)
		assert.Equal(t, "user-123", auditCtx.UserID)
		assert.Equal(t, "ana@asistitravel.com", auditCtx.UserEmail)
		assert.Equal(t, "Editor", auditCtx.UserRole)
		assert.Equal(t, "test-agent", auditCtx.UserAgent)
		assert.NotEmpty(t, auditCtx.IPAddress)
	})

	t.Run("NoAuth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := AuditContext()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))

		auditCtx := GetAuditContext(c)
		assert.Empty(t, auditCtx.UserID)
		assert.Empty(t, auditCtx.UserRole)
	})
}

func TestGetAuditContext(t *testing.T) {
	e := echo.New()

	t.Run("Exists", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		expected := services.AuditContext{UserID: "123"}
		c.Set(ContextKeyAuditContext, expected)

		assert.Equal(t, expected, GetAuditContext(c))
	})

	t.Run("NotExists", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		assert.Equal(t, services.AuditContext{}, GetAuditContext(c))
	})
}
