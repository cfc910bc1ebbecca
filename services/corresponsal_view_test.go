package services

import (
	"testing"

	"github.com/orelvisrguez/assistravel/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReduceCorresponsalStats(t *testing.T) {
	casos := []models.Caso{
		{CorresponsalID: "a", Total: floatPtr(100), EstadoInterno: models.EstadoCompletado},
		{CorresponsalID: "a", Total: floatPtr(200), EstadoInterno: models.EstadoActivo},
		{CorresponsalID: "a", Total: nil, EstadoInterno: models.EstadoEnProceso},
		{CorresponsalID: "b", Total: floatPtr(5), EstadoInterno: models.EstadoCompletado},
	}

	stats := ReduceCorresponsalStats(casos)
	assert.Equal(t, CorresponsalStats{TotalCasos: 3, CasosCompletados: 1, MontoTotal: 300}, stats["a"])
	assert.Equal(t, CorresponsalStats{TotalCasos: 1, CasosCompletados: 1, MontoTotal: 5}, stats["b"])
	assert.Equal(t, CorresponsalStats{}, stats["missing"])
}

func TestFilterCorresponsales(t *testing.T) {
	rows := []CorresponsalRow{
		{Corresponsal: models.Corresponsal{ID: "1", Nombre: "Andes Salud", Pais: strPtr("Chile")}},
		{Corresponsal: models.Corresponsal{ID: "2", Nombre: "Pampa Assist", Pais: strPtr("Argentina")}},
		{Corresponsal: models.Corresponsal{ID: "3", Nombre: "Inca Care", EmailContacto: strPtr("ops@argmed.com")}},
	}

	ids := func(rows []CorresponsalRow) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.ID
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterCorresponsales(rows, "")))
	assert.Equal(t, []string{"2", "3"}, ids(FilterCorresponsales(rows, "ARG")))
	assert.Equal(t, []string{"1"}, ids(FilterCorresponsales(rows, "chile")))
	assert.Empty(t, FilterCorresponsales(rows, "zzz"))

	once := FilterCorresponsales(rows, "arg")
	assert.Equal(t, once, FilterCorresponsales(once, "arg"))
}

func TestLoadCorresponsalesView(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	other := uuid.New().String()

	andes := seedCorresponsal(t, db, owner, "Andes Salud")
	pampa := seedCorresponsal(t, db, owner, "Pampa Assist")
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{CorresponsalID: andes.ID, NroCasoAssistravel: "A-1", Fee: floatPtr(100), EstadoInterno: models.EstadoCompletado}))
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{CorresponsalID: andes.ID, NroCasoAssistravel: "A-2", CostoUSD: floatPtr(200)}))
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{CorresponsalID: andes.ID, NroCasoAssistravel: "A-3"}))
	// another owner's case pointing at the same corresponsal is not counted
	assert.NoError(t, CreateCaso(db, other, &models.Caso{CorresponsalID: andes.ID, NroCasoAssistravel: "X-1", Fee: floatPtr(1000)}))

	view, err := LoadCorresponsalesView(db, owner, "")
	assert.NoError(t, err)
	assert.Equal(t, 2, view.Count)
	assert.Len(t, view.Rows, 2)

	byID := map[string]CorresponsalStats{}
	for _, r := range view.Rows {
		byID[r.ID] = r.Stats
	}
	assert.Equal(t, CorresponsalStats{TotalCasos: 3, CasosCompletados: 1, MontoTotal: 300}, byID[andes.ID])
	assert.Equal(t, CorresponsalStats{}, byID[pampa.ID])
	assert.Equal(t, CorresponsalStats{TotalCasos: 3, CasosCompletados: 1, MontoTotal: 300}, view.Totals)

	filtered, err := LoadCorresponsalesView(db, owner, "pampa")
	assert.NoError(t, err)
	assert.Len(t, filtered.Rows, 1)
	assert.Equal(t, 2, filtered.Count)
	assert.Equal(t, 3, filtered.Totals.TotalCasos)
}

func TestLoadCorresponsalDetail(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	andes := seedCorresponsal(t, db, owner, "Andes Salud")
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{CorresponsalID: andes.ID, NroCasoAssistravel: "A-1", Fee: floatPtr(10)}))

	detail, err := LoadCorresponsalDetail(db, owner, andes.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Andes Salud", detail.Corresponsal.Nombre)
	if assert.Len(t, detail.Casos, 1) {
		assert.Equal(t, "Andes Salud", detail.Casos[0].CorresponsalNombre)
	}
	assert.Equal(t, 1, detail.Stats.TotalCasos)

	_, err = LoadCorresponsalDetail(db, uuid.New().String(), andes.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
