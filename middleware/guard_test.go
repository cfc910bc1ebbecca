package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/authz"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func snapshotFor(role models.Role) session.Snapshot {
	profile := &models.UserProfile{ID: "u1", Role: role}
	return session.Snapshot{
		State:        session.StateAuthenticated,
		Identity:     &models.Identity{ID: "u1", Email: "u1@asistitravel.com"},
		Profile:      profile,
		Capabilities: authz.EvaluateProfile(profile),
	}
}

func runGuard(req authz.Requirement, snap session.Snapshot, htmx bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/import", nil)
	if htmx {
		r.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(r, rec)
	c.Set(ContextKeySnapshot, snap)

	_ = RequirePermission(req)(func(c echo.Context) error {
		return c.String(http.StatusOK, "protected content")
	})(c)
	return rec
}

func TestRequirePermission(t *testing.T) {
	t.Run("EditorAllowedToEdit", func(t *testing.T) {
		rec := runGuard(RequireEditor, snapshotFor(models.RoleEditor), false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "protected content", rec.Body.String())
	})

	t.Run("VisualizadorDeniedEdit", func(t *testing.T) {
		rec := runGuard(RequireEditor, snapshotFor(models.RoleVisualizador), false)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NotContains(t, rec.Body.String(), "protected content")
		assert.Contains(t, rec.Body.String(), "Se requieren permisos de edición")
	})

	t.Run("EditorDeniedDelete", func(t *testing.T) {
		rec := runGuard(RequireDelete, snapshotFor(models.RoleEditor), true)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Se requieren permisos de administrador")
		assert.NotContains(t, rec.Body.String(), "<html")
	})

	t.Run("RoleListInMessage", func(t *testing.T) {
		req := authz.Requirement{RequiredRoles: []models.Role{models.RoleAdmin, models.RoleEditor}}
		rec := runGuard(req, snapshotFor(models.RoleVisualizador), true)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Admin, Editor")
	})

	t.Run("AdminAllowedEverywhere", func(t *testing.T) {
		for _, req := range []authz.Requirement{RequireEditor, RequireDelete, RequireAdmin} {
			rec := runGuard(req, snapshotFor(models.RoleAdmin), false)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("LoadingRendersIndicatorOnly", func(t *testing.T) {
		rec := runGuard(RequireEditor, session.Snapshot{State: session.StateLoading}, false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "data-reload-after")
		assert.NotContains(t, rec.Body.String(), "protected content")
		assert.NotContains(t, rec.Body.String(), "Acceso denegado")
	})

	t.Run("MissingProfileHidden", func(t *testing.T) {
		snap := session.Snapshot{
			State:    session.StateAuthenticated,
			Identity: &models.Identity{ID: "u1"},
		}
		rec := runGuard(RequireEditor, snap, true)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
