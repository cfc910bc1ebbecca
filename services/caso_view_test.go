package services

import (
	"testing"
	"time"

	"github.com/orelvisrguez/assistravel/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sampleRows() []CasoRow {
	casos := []models.Caso{
		{ID: "1", CorresponsalID: "c-arg", NroCasoAssistravel: "AT-100", Pais: strPtr("Argentina"), EstadoInterno: models.EstadoActivo},
		{ID: "2", CorresponsalID: "c-chl", NroCasoAssistravel: "AT-200", Pais: strPtr("Chile"), EstadoInterno: models.EstadoCompletado, NroCasoCorresponsal: strPtr("ARG-77")},
		{ID: "3", CorresponsalID: "c-gone", NroCasoAssistravel: "AT-300", Pais: strPtr("Perú"), EstadoInterno: models.EstadoCompletado},
		{ID: "4", CorresponsalID: "c-arg", NroCasoAssistravel: "AT-400", EstadoInterno: "archivado"},
	}
	corresponsales := []models.Corresponsal{
		{ID: "c-arg", Nombre: "Pampa Assist"},
		{ID: "c-chl", Nombre: "Andes Salud"},
	}
	return EnrichCasos(casos, corresponsales)
}

func rowIDs(rows []CasoRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func TestEnrichCasos(t *testing.T) {
	rows := sampleRows()

	assert.Equal(t, "Pampa Assist", rows[0].CorresponsalNombre)
	assert.True(t, rows[0].CorresponsalFound)
	assert.Equal(t, CorresponsalNoEncontrado, rows[2].CorresponsalNombre)
	assert.False(t, rows[2].CorresponsalFound)
	assert.Equal(t, []string{"1", "2", "3", "4"}, rowIDs(rows))
}

func TestFilterCasos(t *testing.T) {
	rows := sampleRows()

	tests := []struct {
		name   string
		filter CasoFilter
		want   []string
	}{
		{"no filter", CasoFilter{}, []string{"1", "2", "3", "4"}},
		{"search country case-insensitive", CasoFilter{Search: "arg"}, []string{"1", "2"}},
		{"search correspondent name", CasoFilter{Search: "ANDES"}, []string{"2"}},
		{"search sentinel label", CasoFilter{Search: "no encontrado"}, []string{"3"}},
		{"search case number", CasoFilter{Search: "at-4"}, []string{"4"}},
		{"estado", CasoFilter{Estado: models.EstadoCompletado}, []string{"2", "3"}},
		{"corresponsal", CasoFilter{CorresponsalID: "c-arg"}, []string{"1", "4"}},
		{"pais", CasoFilter{Pais: "Perú"}, []string{"3"}},
		{"filters are ANDed", CasoFilter{Search: "arg", Estado: models.EstadoCompletado}, []string{"2"}},
		{"no match", CasoFilter{Search: "zzz"}, []string{}},
		{"search term keeps its spaces", CasoFilter{Search: " assist"}, []string{"1", "4"}},
		{"leading space never matches a field start", CasoFilter{Search: " at-1"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rowIDs(FilterCasos(rows, tt.filter)))
		})
	}
}

func TestFilterCasosIdempotent(t *testing.T) {
	rows := sampleRows()
	f := CasoFilter{Search: "arg"}

	once := FilterCasos(rows, f)
	twice := FilterCasos(once, f)
	assert.Equal(t, once, twice)
	assert.Len(t, rows, 4)
}

func TestCasoFilterActive(t *testing.T) {
	assert.False(t, CasoFilter{}.Active())
	assert.True(t, CasoFilter{Search: "   "}.Active())
	assert.True(t, CasoFilter{Search: "x"}.Active())
	assert.True(t, CasoFilter{Pais: "Chile"}.Active())
}

func TestCasoFilterQuery(t *testing.T) {
	assert.Equal(t, "", CasoFilter{}.Query())
	assert.Equal(t, "estado=activo&pais=Per%C3%BA&q=+at+1+",
		CasoFilter{Search: " at 1 ", Estado: "activo", Pais: "Perú"}.Query())
}

func TestComputeCasoStats(t *testing.T) {
	casos := []models.Caso{
		{Total: floatPtr(100), EstadoInterno: models.EstadoCompletado},
		{Total: floatPtr(200), EstadoInterno: models.EstadoActivo, TieneFactura: true},
		{Total: nil, EstadoInterno: models.EstadoPendiente, TieneFactura: true, FechaPagoFactura: timePtr(time.Now())},
	}

	stats := ComputeCasoStats(casos)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completados)
	assert.InDelta(t, 300.0, stats.MontoTotal, 0.001)
	assert.Equal(t, 1, stats.FacturasPendientes)

	assert.Equal(t, CasoStats{}, ComputeCasoStats(nil))
}

func TestFacturasPendientesIgnoresCasesWithoutInvoice(t *testing.T) {
	casos := []models.Caso{
		{TieneFactura: false},
		{TieneFactura: false, FechaPagoFactura: nil},
	}
	assert.Equal(t, 0, ComputeCasoStats(casos).FacturasPendientes)
}

func TestDistinctPaises(t *testing.T) {
	assert.Equal(t, []string{"Argentina", "Chile", "Perú"}, DistinctPaises(sampleRows()))
	assert.Empty(t, DistinctPaises(nil))
}

func TestBadgeForEstado(t *testing.T) {
	badge := BadgeForEstado(models.EstadoCompletado)
	assert.True(t, badge.Known)
	assert.Contains(t, badge.Class, "green")

	unknown := BadgeForEstado("archivado")
	assert.False(t, unknown.Known)
	assert.Equal(t, "archivado", unknown.Estado)
	assert.Equal(t, DefaultBadgeClass, unknown.Class)
}

func TestFacturaStatus(t *testing.T) {
	assert.Equal(t, FacturaSinFactura, FacturaStatus(&models.Caso{}))
	assert.Equal(t, FacturaPendiente, FacturaStatus(&models.Caso{TieneFactura: true}))
	assert.Equal(t, FacturaPagada, FacturaStatus(&models.Caso{TieneFactura: true, FechaPagoFactura: timePtr(time.Now())}))
}

func TestLoadCasosView(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	other := uuid.New().String()

	andes := seedCorresponsal(t, db, owner, "Andes Salud")
	pampa := seedCorresponsal(t, db, owner, "Pampa Assist")
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{CorresponsalID: andes.ID, NroCasoAssistravel: "AT-1", Fee: floatPtr(100), Pais: strPtr("Chile")}))
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{CorresponsalID: pampa.ID, NroCasoAssistravel: "AT-2", CostoUSD: floatPtr(200), Pais: strPtr("Argentina"), EstadoInterno: models.EstadoCompletado}))
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{CorresponsalID: uuid.New().String(), NroCasoAssistravel: "AT-3"}))
	assert.NoError(t, CreateCaso(db, other, &models.Caso{CorresponsalID: andes.ID, NroCasoAssistravel: "OTHER-1", Fee: floatPtr(999)}))

	view, err := LoadCasosView(db, owner, CasoFilter{Search: "andes"})
	assert.NoError(t, err)

	if assert.Len(t, view.Rows, 1) {
		assert.Equal(t, "AT-1", view.Rows[0].NroCasoAssistravel)
	}
	assert.Equal(t, 3, view.Stats.Total)
	assert.Equal(t, 1, view.Stats.Completados)
	assert.InDelta(t, 300.0, view.Stats.MontoTotal, 0.001)
	assert.Equal(t, []string{"Argentina", "Chile"}, view.Paises)
	if assert.Len(t, view.Corresponsales, 2) {
		assert.Equal(t, "Andes Salud", view.Corresponsales[0].Nombre)
	}

	all, err := LoadCasosView(db, owner, CasoFilter{Search: "no encontrado"})
	assert.NoError(t, err)
	if assert.Len(t, all.Rows, 1) {
		assert.Equal(t, "AT-3", all.Rows[0].NroCasoAssistravel)
	}
}
