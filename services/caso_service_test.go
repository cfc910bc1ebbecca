package services

import (
	"testing"
	"time"

	"github.com/orelvisrguez/assistravel/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedCorresponsal(t *testing.T, db *gorm.DB, owner, nombre string) *models.Corresponsal {
	c := &models.Corresponsal{Nombre: nombre}
	assert.NoError(t, CreateCorresponsal(db, owner, c))
	return c
}

func TestValidateCaso(t *testing.T) {
	tests := []struct {
		name    string
		caso    models.Caso
		wantErr string
	}{
		{
			name:    "missing case number",
			caso:    models.Caso{CorresponsalID: "c1"},
			wantErr: "nrocasoassistravel is required",
		},
		{
			name:    "missing corresponsal",
			caso:    models.Caso{NroCasoAssistravel: "X-1"},
			wantErr: "corresponsalid is required",
		},
		{
			name:    "unsupported currency",
			caso:    models.Caso{NroCasoAssistravel: "X-1", CorresponsalID: "c1", SimboloMoneda: strPtr("JPY")},
			wantErr: "simbolomoneda",
		},
		{
			name: "valid",
			caso: models.Caso{NroCasoAssistravel: "X-1", CorresponsalID: "c1", SimboloMoneda: strPtr("ARS")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCaso(&tt.caso)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateCasoNormalizes(t *testing.T) {
	c := models.Caso{
		NroCasoAssistravel:  "X-1",
		CorresponsalID:      "c1",
		InformeMedico:       "maybe",
		TieneFactura:        false,
		NroFactura:          strPtr("F-9"),
		FechaPagoFactura:    timePtr(time.Now()),
		FechaEmisionFactura: timePtr(time.Now()),
	}
	assert.NoError(t, ValidateCaso(&c))
	assert.Equal(t, models.EstadoActivo, c.EstadoInterno)
	assert.Equal(t, models.InformeMedicoNo, c.InformeMedico)
	assert.Nil(t, c.NroFactura)
	assert.Nil(t, c.FechaPagoFactura)
	assert.Nil(t, c.FechaEmisionFactura)
}

func TestCreateCasoComputesTotal(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	corr := seedCorresponsal(t, db, owner, "Andes Salud")

	c := &models.Caso{
		CorresponsalID:     corr.ID,
		NroCasoAssistravel: "AT-001",
		Fee:                floatPtr(40),
		CostoUSD:           floatPtr(100),
		CostoMonedaLocal:   floatPtr(95000),
		SimboloMoneda:      strPtr("ARS"),
	}
	assert.NoError(t, CreateCaso(db, owner, c))
	assert.Equal(t, owner, c.UserID)

	stored, err := GetCaso(db, owner, c.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, stored.Total) {
		assert.InDelta(t, 140.0, *stored.Total, 0.001)
	}
}

func TestCreateCasoAllowsUnknownCorresponsal(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()

	c := &models.Caso{CorresponsalID: uuid.New().String(), NroCasoAssistravel: "AT-404"}
	assert.NoError(t, CreateCaso(db, owner, c))
}

func TestListCasosNewestFirstAndScoped(t *testing.T) {
	db := setupTestDB(t)
	ownerA := uuid.New().String()
	ownerB := uuid.New().String()
	corr := seedCorresponsal(t, db, ownerA, "Andes Salud")

	base := time.Now().Add(-time.Hour)
	for i, nro := range []string{"AT-1", "AT-2", "AT-3"} {
		c := &models.Caso{CorresponsalID: corr.ID, NroCasoAssistravel: nro, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		assert.NoError(t, CreateCaso(db, ownerA, c))
	}
	assert.NoError(t, CreateCaso(db, ownerB, &models.Caso{CorresponsalID: corr.ID, NroCasoAssistravel: "B-1"}))

	casos, err := ListCasos(db, ownerA)
	assert.NoError(t, err)
	if assert.Len(t, casos, 3) {
		assert.Equal(t, "AT-3", casos[0].NroCasoAssistravel)
		assert.Equal(t, "AT-1", casos[2].NroCasoAssistravel)
	}

	// ownerB's case references ownerA's corresponsal but stays invisible to A
	byCorr, err := ListCasosForCorresponsales(db, ownerA, []string{corr.ID})
	assert.NoError(t, err)
	assert.Len(t, byCorr, 3)

	none, err := ListCasosForCorresponsales(db, ownerA, nil)
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateCasoRecomputesTotal(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	corr := seedCorresponsal(t, db, owner, "Andes Salud")

	c := &models.Caso{CorresponsalID: corr.ID, NroCasoAssistravel: "AT-1", Fee: floatPtr(40), CostoUSD: floatPtr(100)}
	assert.NoError(t, CreateCaso(db, owner, c))

	input := *c
	input.MontoAgregado = floatPtr(10)
	input.EstadoInterno = models.EstadoCompletado
	updated, err := UpdateCaso(db, owner, c.ID, &input)
	assert.NoError(t, err)
	if assert.NotNil(t, updated.Total) {
		assert.InDelta(t, 150.0, *updated.Total, 0.001)
	}
	assert.Equal(t, models.EstadoCompletado, updated.EstadoInterno)

	input.Fee, input.CostoUSD, input.MontoAgregado = nil, nil, nil
	updated, err = UpdateCaso(db, owner, c.ID, &input)
	assert.NoError(t, err)
	assert.Nil(t, updated.Total)

	_, err = UpdateCaso(db, uuid.New().String(), c.ID, &input)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteCaso(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	c := &models.Caso{CorresponsalID: uuid.New().String(), NroCasoAssistravel: "AT-1"}
	assert.NoError(t, CreateCaso(db, owner, c))

	assert.ErrorIs(t, DeleteCaso(db, uuid.New().String(), c.ID), ErrRecordNotFound)
	assert.NoError(t, DeleteCaso(db, owner, c.ID))
	assert.ErrorIs(t, DeleteCaso(db, owner, c.ID), ErrRecordNotFound)
}

func TestNewDuplicate(t *testing.T) {
	pago := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	src := models.Caso{
		ID:                 "abc",
		CreatedAt:          time.Now(),
		UserID:             "owner",
		CorresponsalID:     "corr",
		NroCasoAssistravel: "X-100",
		EstadoInterno:      models.EstadoCompletado,
		Fee:                floatPtr(50),
		Total:              floatPtr(50),
		TieneFactura:       true,
		FechaPagoFactura:   &pago,
		Pais:               strPtr("Chile"),
	}

	dup := NewDuplicate(src)
	assert.Empty(t, dup.ID)
	assert.True(t, dup.CreatedAt.IsZero())
	assert.Equal(t, "X-100_COPY", dup.NroCasoAssistravel)
	assert.Equal(t, models.EstadoActivo, dup.EstadoInterno)
	assert.Equal(t, "corr", dup.CorresponsalID)
	assert.Equal(t, 50.0, *dup.Fee)
	assert.True(t, dup.TieneFactura)
	assert.Equal(t, pago, *dup.FechaPagoFactura)

	*dup.Pais = "Perú"
	assert.Equal(t, "Chile", *src.Pais)
	assert.Equal(t, "X-100", src.NroCasoAssistravel)
}

func TestDuplicateCaso(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	corr := seedCorresponsal(t, db, owner, "Andes Salud")
	src := &models.Caso{
		CorresponsalID:     corr.ID,
		NroCasoAssistravel: "X-100",
		EstadoInterno:      models.EstadoCancelado,
		Fee:                floatPtr(20),
	}
	assert.NoError(t, CreateCaso(db, owner, src))

	dup, err := DuplicateCaso(db, owner, src.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "X-100_COPY", dup.NroCasoAssistravel)
	assert.Equal(t, models.EstadoActivo, dup.EstadoInterno)

	casos, err := ListCasos(db, owner)
	assert.NoError(t, err)
	assert.Len(t, casos, 2)

	_, err = DuplicateCaso(db, uuid.New().String(), src.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
