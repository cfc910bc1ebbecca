package pages

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/authz"
	"github.com/orelvisrguez/assistravel/services/i18n"
	"github.com/orelvisrguez/assistravel/services/session"
	"github.com/orelvisrguez/assistravel/templates/components"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := i18n.Load(); err != nil {
		log.Fatalf("failed to load translations: %v", err)
	}
	os.Exit(m.Run())
}

func renderAs(t *testing.T, role models.Role, c templ.Component) string {
	t.Helper()
	profile := &models.UserProfile{ID: "u1", Role: role}
	ctx := components.WithView(context.Background(), components.View{
		Snapshot: session.Snapshot{
			State:        session.StateAuthenticated,
			Identity:     &models.Identity{ID: "u1", Email: "u1@asistitravel.com"},
			Profile:      profile,
			Capabilities: authz.EvaluateProfile(profile),
		},
		CSRF: "csrf-token",
	})
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func strPtr(s string) *string { return &s }

func TestCasosPage(t *testing.T) {
	view := &services.CasosView{
		Filter: services.CasoFilter{Estado: models.EstadoCompletado},
		Rows: []services.CasoRow{{
			Caso:               models.Caso{ID: "c1", NroCasoAssistravel: "AT-1", EstadoInterno: models.EstadoCompletado, Pais: strPtr("Chile")},
			CorresponsalNombre: "Assist Chile",
			CorresponsalFound:  true,
		}},
		Stats: services.CasoStats{Total: 1, Completados: 1},
	}

	t.Run("Editor", func(t *testing.T) {
		html := renderAs(t, models.RoleEditor, CasosPage(view))

		assert.Contains(t, html, `id="casos-results"`)
		assert.Contains(t, html, `href="/casos/new"`)
		assert.Contains(t, html, `href="/casos/c1/edit"`)
		assert.NotContains(t, html, `hx-delete="/casos/c1?confirm=true"`)
		assert.Contains(t, html, "estado=completado")
		assert.Contains(t, html, "Assist Chile")
	})

	t.Run("Visualizador", func(t *testing.T) {
		html := renderAs(t, models.RoleVisualizador, CasosPage(view))

		assert.NotContains(t, html, `href="/casos/new"`)
		assert.NotContains(t, html, `href="/casos/c1/edit"`)
		assert.Contains(t, html, `href="/casos/c1"`)
	})

	t.Run("Swap carries the out-of-band export link", func(t *testing.T) {
		html := renderAs(t, models.RoleAdmin, CasosResultsSwap(view))

		assert.Contains(t, html, `hx-swap-oob="true"`)
		assert.Contains(t, html, `hx-delete="/casos/c1?confirm=true"`)
		assert.NotContains(t, html, "<html")
	})
}

func TestCasosResultsEmptyStates(t *testing.T) {
	t.Run("No cases yet", func(t *testing.T) {
		html := renderAs(t, models.RoleAdmin, CasosResultsSwap(&services.CasosView{}))
		assert.Contains(t, html, "No hay casos")
	})

	t.Run("Filters match nothing", func(t *testing.T) {
		html := renderAs(t, models.RoleAdmin, CasosResultsSwap(&services.CasosView{
			Filter: services.CasoFilter{Search: "zzz"},
		}))
		assert.Contains(t, html, "No se encontraron casos")
	})
}

func TestCasoFormPage(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		html := renderAs(t, models.RoleEditor, CasoFormPage(CasoForm{
			Corresponsales: []models.Corresponsal{{ID: "co1", Nombre: "Assist Chile"}},
		}))

		assert.Contains(t, html, `action="/casos"`)
		assert.Contains(t, html, `<option value="co1">Assist Chile</option>`)
		assert.Contains(t, html, `<option value="USD" selected>`)
		assert.Contains(t, html, `value="no" checked`)
		assert.Contains(t, html, "data-factura-fields")
		assert.Contains(t, html, " hidden")
	})

	t.Run("Edit keeps an unknown state", func(t *testing.T) {
		html := renderAs(t, models.RoleEditor, CasoFormPage(CasoForm{
			Caso: models.Caso{ID: "c1", NroCasoAssistravel: "AT-1", EstadoInterno: "legado", TieneFactura: true},
		}))

		assert.Contains(t, html, `action="/casos/c1"`)
		assert.Contains(t, html, `<option value="legado" selected>legado</option>`)
		assert.Contains(t, html, `href="/casos/c1"`)
		assert.NotContains(t, html, " hidden")
	})
}

func TestCasoPDFBody(t *testing.T) {
	row := services.CasoRow{
		Caso:               models.Caso{ID: "c1", NroCasoAssistravel: "AT-1"},
		CorresponsalNombre: "Assist Chile",
	}
	html := renderAs(t, models.RoleVisualizador, CasoPDFBody(row, "15/10/2026 10:00"))

	assert.Contains(t, html, "<h1>Ficha de caso AT-1</h1>")
	assert.Contains(t, html, "Generado el 15/10/2026 10:00")
	assert.Contains(t, html, "Assist Chile")
	assert.NotContains(t, html, "<html")
}

func TestAuthPage(t *testing.T) {
	html := renderAs(t, "", AuthPage(AuthForm{Mode: "bogus"}))
	assert.Contains(t, html, `action="/auth/signin"`)
	assert.NotContains(t, html, `name="confirm_password"`)

	html = renderAs(t, "", AuthPage(AuthForm{Mode: AuthModeSignUp, Email: "a@b.com"}))
	assert.Contains(t, html, `action="/auth/signup"`)
	assert.Contains(t, html, `name="confirm_password"`)
	assert.Contains(t, html, `value="a@b.com"`)
	assert.Contains(t, html, `id="auth-feedback"`)
}

func TestCorresponsalDetailPage(t *testing.T) {
	detail := &services.CorresponsalDetail{
		Corresponsal: models.Corresponsal{ID: "co1", Nombre: "Assist Chile"},
		Stats:        services.CorresponsalStats{TotalCasos: 3},
	}

	html := renderAs(t, models.RoleAdmin, CorresponsalDetailPage(detail, nil))
	assert.Contains(t, html, `hx-delete="/corresponsales/co1?confirm=true"`)
	assert.Contains(t, html, "Este corresponsal tiene 3 casos")

	html = renderAs(t, models.RoleEditor, CorresponsalDetailPage(detail, nil))
	assert.NotContains(t, html, "hx-delete")
	assert.Contains(t, html, `href="/corresponsales/co1/edit"`)
}

func TestImportPage(t *testing.T) {
	html := renderAs(t, models.RoleEditor, ImportPage(nil))

	assert.Contains(t, html, `href="/import/template"`)
	assert.Contains(t, html, `<div id="import-result"></div>`)
	assert.Contains(t, html, "1,234")
}
