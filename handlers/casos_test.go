package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func seedCaso(t *testing.T, database *gorm.DB, ownerID, corresponsalID, nro, estado string) *models.Caso {
	c := &models.Caso{
		CorresponsalID:     corresponsalID,
		NroCasoAssistravel: nro,
		EstadoInterno:      estado,
		Fee:                floatPtr(100),
		CostoUSD:           floatPtr(50),
	}
	c.Total = c.ComputeTotal()
	require.NoError(t, services.CreateCaso(database, ownerID, c))
	return c
}

func TestCasosHandler(t *testing.T) {
	database := setupTestDB(t)
	owner := createUser(t, database, "owner@asistitravel.com", models.RoleEditor)
	corr := seedCorresponsal(t, database, owner.ID, "MedAndes")
	seedCaso(t, database, owner.ID, corr.ID, "AT-100", models.EstadoActivo)
	seedCaso(t, database, owner.ID, corr.ID, "AT-200", models.EstadoCompletado)

	t.Run("Full page", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/casos", nil)
		signIn(c, owner)

		assert.NoError(t, CasosHandler(c))
		body := rec.Body.String()
		assert.Contains(t, body, "AT-100")
		assert.Contains(t, body, "AT-200")
		assert.Contains(t, body, "MedAndes")
	})

	t.Run("HTMX filter swaps results and export link", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/casos?estado=completado", nil)
		c.Request().Header.Set("HX-Request", "true")
		c.Request().Header.Set("HX-Target", "casos-results")
		signIn(c, owner)

		assert.NoError(t, CasosHandler(c))
		body := rec.Body.String()
		assert.NotContains(t, body, "<html")
		assert.NotContains(t, body, "AT-100")
		assert.Contains(t, body, "AT-200")
		assert.Contains(t, body, `hx-swap-oob="true"`)
		assert.Contains(t, body, "estado=completado")
	})
}

func TestCreateCasoHandler(t *testing.T) {
	t.Run("Computes total", func(t *testing.T) {
		database := setupTestDB(t)
		owner := createUser(t, database, "editor@asistitravel.com", models.RoleEditor)
		corr := seedCorresponsal(t, database, owner.ID, "MedAndes")

		f := url.Values{}
		f.Add("corresponsalid", corr.ID)
		f.Add("nrocasoassistravel", "AT-300")
		f.Add("fee", "1.000,50")
		f.Add("costousd", "200")
		f.Add("montoagregado", "9.5")
		f.Add("fechadeinicio", "2024-03-15")
		f.Add("nrofactura", "F-1")
		_, c, rec := setupEcho(http.MethodPost, "/casos", strings.NewReader(f.Encode()))
		formRequest(c)
		signIn(c, owner)

		err := CreateCasoHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		var stored models.Caso
		require.NoError(t, database.First(&stored, "nrocasoassistravel = ?", "AT-300").Error)
		assert.Equal(t, owner.ID, stored.UserID)
		require.NotNil(t, stored.Total)
		assert.InDelta(t, 1210.0, *stored.Total, 0.001)
		assert.Equal(t, models.EstadoActivo, stored.EstadoInterno)
		assert.Equal(t, models.InformeMedicoNo, stored.InformeMedico)
		assert.Nil(t, stored.NroFactura)
		assert.Equal(t, "/casos/"+stored.ID, rec.Header().Get("Location"))
	})

	t.Run("Malformed amount re-renders form", func(t *testing.T) {
		database := setupTestDB(t)
		owner := createUser(t, database, "editor@asistitravel.com", models.RoleEditor)
		corr := seedCorresponsal(t, database, owner.ID, "MedAndes")

		f := url.Values{}
		f.Add("corresponsalid", corr.ID)
		f.Add("nrocasoassistravel", "AT-301")
		f.Add("fee", "abc")
		_, c, rec := setupEcho(http.MethodPost, "/casos", strings.NewReader(f.Encode()))
		formRequest(c)
		signIn(c, owner)

		err := CreateCasoHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "AT-301")

		var count int64
		database.Model(&models.Caso{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Missing corresponsal", func(t *testing.T) {
		database := setupTestDB(t)
		owner := createUser(t, database, "editor@asistitravel.com", models.RoleEditor)

		f := url.Values{}
		f.Add("nrocasoassistravel", "AT-302")
		_, c, rec := setupEcho(http.MethodPost, "/casos", strings.NewReader(f.Encode()))
		formRequest(c)
		signIn(c, owner)

		assert.NoError(t, CreateCasoHandler(c))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestUpdateCasoHandler(t *testing.T) {
	database := setupTestDB(t)
	owner := createUser(t, database, "editor@asistitravel.com", models.RoleEditor)
	corr := seedCorresponsal(t, database, owner.ID, "MedAndes")
	caso := seedCaso(t, database, owner.ID, corr.ID, "AT-400", models.EstadoActivo)

	f := url.Values{}
	f.Add("corresponsalid", corr.ID)
	f.Add("nrocasoassistravel", "AT-400")
	f.Add("estadointerno", models.EstadoCompletado)
	f.Add("fee", "10")
	f.Add("tienefactura", "true")
	f.Add("nrofactura", "F-9")
	_, c, rec := setupEcho(http.MethodPost, "/casos/"+caso.ID, strings.NewReader(f.Encode()))
	formRequest(c)
	c.SetParamNames("id")
	c.SetParamValues(caso.ID)
	signIn(c, owner)

	assert.NoError(t, UpdateCasoHandler(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	stored, err := services.GetCaso(database, owner.ID, caso.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoCompletado, stored.EstadoInterno)
	assert.True(t, stored.TieneFactura)
	assert.Equal(t, "F-9", *stored.NroFactura)
	require.NotNil(t, stored.Total)
	assert.InDelta(t, 10.0, *stored.Total, 0.001)
}

func TestDuplicateCasoHandler(t *testing.T) {
	database := setupTestDB(t)
	owner := createUser(t, database, "editor@asistitravel.com", models.RoleEditor)
	corr := seedCorresponsal(t, database, owner.ID, "MedAndes")
	caso := seedCaso(t, database, owner.ID, corr.ID, "AT-500", models.EstadoActivo)

	_, c, rec := setupEcho(http.MethodPost, "/casos/"+caso.ID+"/duplicate", nil)
	c.SetParamNames("id")
	c.SetParamValues(caso.ID)
	signIn(c, owner)

	assert.NoError(t, DuplicateCasoHandler(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	var count int64
	database.Model(&models.Caso{}).Where("user_id = ?", owner.ID).Count(&count)
	assert.Equal(t, int64(2), count)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/edit"))
	assert.NotEqual(t, "/casos/"+caso.ID+"/edit", rec.Header().Get("Location"))
}

func TestDeleteCasoHandler(t *testing.T) {
	database := setupTestDB(t)
	owner := createUser(t, database, "admin@asistitravel.com", models.RoleAdmin)
	other := createUser(t, database, "other@asistitravel.com", models.RoleAdmin)
	corr := seedCorresponsal(t, database, owner.ID, "MedAndes")
	caso := seedCaso(t, database, owner.ID, corr.ID, "AT-600", models.EstadoActivo)

	t.Run("Other owner cannot delete", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodDelete, "/casos/"+caso.ID+"?confirm=true", nil)
		c.SetParamNames("id")
		c.SetParamValues(caso.ID)
		signIn(c, other)

		assert.Equal(t, http.StatusNotFound, httpStatus(DeleteCasoHandler(c)))
	})

	t.Run("Requires confirmation", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodDelete, "/casos/"+caso.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(caso.ID)
		signIn(c, owner)

		assert.Equal(t, http.StatusBadRequest, httpStatus(DeleteCasoHandler(c)))
	})

	t.Run("Confirmed", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/casos/"+caso.ID+"?confirm=true", nil)
		c.SetParamNames("id")
		c.SetParamValues(caso.ID)
		signIn(c, owner)

		assert.NoError(t, DeleteCasoHandler(c))
		assert.Equal(t, "/casos", rec.Header().Get("Location"))

		_, err := services.GetCaso(database, owner.ID, caso.ID)
		assert.ErrorIs(t, err, services.ErrRecordNotFound)
	})
}

func TestExportCasosHandler(t *testing.T) {
	database := setupTestDB(t)
	owner := createUser(t, database, "viewer@asistitravel.com", models.RoleVisualizador)
	corr := seedCorresponsal(t, database, owner.ID, "MedAndes")
	seedCaso(t, database, owner.ID, corr.ID, "AT-700", models.EstadoActivo)
	seedCaso(t, database, owner.ID, corr.ID, "AT-701", models.EstadoCancelado)

	_, c, rec := setupEcho(http.MethodGet, "/casos/export?estado=cancelado", nil)
	signIn(c, owner)

	assert.NoError(t, ExportCasosHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	var found []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		for _, row := range rows {
			found = append(found, strings.Join(row, "|"))
		}
	}
	joined := strings.Join(found, "\n")
	assert.Contains(t, joined, "AT-701")
	assert.NotContains(t, joined, "AT-700")
}
