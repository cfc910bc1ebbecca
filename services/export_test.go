package services

import (
	"context"
	"testing"
	"time"

	"github.com/orelvisrguez/assistravel/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestExportCasos(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	andes := seedCorresponsal(t, db, owner, "Andes Salud")
	seedCorresponsal(t, db, owner, "Sin Casos")

	inicio := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, CreateCaso(db, owner, &models.Caso{
		CorresponsalID:     andes.ID,
		NroCasoAssistravel: "AT-9",
		FechaDeInicio:      &inicio,
		Fee:                floatPtr(10),
		CostoUSD:           floatPtr(20.5),
		SimboloMoneda:      strPtr("USD"),
		TieneFactura:       true,
		EstadoInterno:      models.EstadoEnProceso,
	}))

	view, err := LoadCasosView(db, owner, CasoFilter{})
	assert.NoError(t, err)

	buf, err := ExportCasos(context.Background(), view.Rows, view.Corresponsales)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	if assert.Len(t, sheets, 3) {
		corrRows, _ := f.GetRows(sheets[1])
		assert.Len(t, corrRows, 2, "only referenced corresponsales are exported")

		rows, _ := f.GetRows(sheets[2])
		if assert.Len(t, rows, 2) {
			assert.Len(t, rows[0], len(casoColumnKeys)+1)
			assert.Equal(t, "Andes Salud", rows[1][0])
			assert.Equal(t, "AT-9", rows[1][1])
			assert.Equal(t, "2024-05-02", rows[1][3])
			assert.Equal(t, "si", rows[1][11])
			assert.Equal(t, models.EstadoEnProceso, rows[1][16])
		}
	}
}

func TestExportCanBeImported(t *testing.T) {
	db := setupTestDB(t)
	source := uuid.New().String()
	target := uuid.New().String()

	andes := seedCorresponsal(t, db, source, "Andes Salud")
	assert.NoError(t, CreateCaso(db, source, &models.Caso{
		CorresponsalID:     andes.ID,
		NroCasoAssistravel: "AT-1",
		Fee:                floatPtr(1500),
		MontoAgregado:      floatPtr(0.75),
	}))

	view, err := LoadCasosView(db, source, CasoFilter{})
	assert.NoError(t, err)
	buf, err := ExportCasos(context.Background(), view.Rows, view.Corresponsales)
	assert.NoError(t, err)

	result, err := ImportWorkbook(db, target, buf)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.CorresponsalesCreated)
	assert.Equal(t, 1, result.CasosCreated)

	imported, err := ListCasos(db, target)
	assert.NoError(t, err)
	if assert.Len(t, imported, 1) {
		assert.InDelta(t, 1500.75, *imported[0].Total, 0.001)
		assert.NotEqual(t, andes.ID, imported[0].CorresponsalID)
	}
}

func TestExportEmpty(t *testing.T) {
	buf, err := ExportCasos(context.Background(), nil, nil)
	assert.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
