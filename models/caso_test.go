package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func floatPtr(f float64) *float64 { return &f }

func setupModelsDB(t *testing.T) *gorm.DB {
	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(&Caso{}, &AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestCasoComputeTotal(t *testing.T) {
	t.Run("AllEmpty", func(t *testing.T) {
		c := Caso{}
		assert.Nil(t, c.ComputeTotal())
	})

	t.Run("IgnoresLocalCurrency", func(t *testing.T) {
		c := Caso{
			Fee:              floatPtr(50),
			CostoUSD:         floatPtr(120.5),
			CostoMonedaLocal: floatPtr(99999),
			MontoAgregado:    floatPtr(10),
		}
		assert.Equal(t, 180.5, *c.ComputeTotal())
	})

	t.Run("PartialComponents", func(t *testing.T) {
		c := Caso{CostoUSD: floatPtr(200)}
		assert.Equal(t, 200.0, *c.ComputeTotal())
	})
}

func TestCasoHooks(t *testing.T) {
	database := setupModelsDB(t)

	c := Caso{
		UserID:             uuid.New().String(),
		CorresponsalID:     uuid.New().String(),
		NroCasoAssistravel: "AT-1",
		Fee:                floatPtr(100),
		CostoUSD:           floatPtr(40),
	}
	assert.NoError(t, database.Create(&c).Error)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, EstadoActivo, c.EstadoInterno)
	assert.Equal(t, InformeMedicoNo, c.InformeMedico)

	var stored Caso
	assert.NoError(t, database.First(&stored, "id = ?", c.ID).Error)
	assert.Equal(t, 140.0, *stored.Total)

	stored.MontoAgregado = floatPtr(10)
	assert.NoError(t, database.Save(&stored).Error)

	var updated Caso
	database.First(&updated, "id = ?", c.ID)
	assert.Equal(t, 150.0, *updated.Total)
}

func TestCasoPredicates(t *testing.T) {
	paid := time.Now()

	assert.True(t, (&Caso{TieneFactura: true}).IsFacturaPendiente())
	assert.False(t, (&Caso{TieneFactura: true, FechaPagoFactura: &paid}).IsFacturaPendiente())
	assert.False(t, (&Caso{TieneFactura: false}).IsFacturaPendiente())

	assert.True(t, (&Caso{EstadoInterno: EstadoCompletado}).IsCompletado())
	assert.True(t, (&Caso{InformeMedico: "si"}).HasInformeMedico())
	assert.Equal(t, 0.0, (&Caso{}).TotalValue())
}

func TestIsValidEstadoInterno(t *testing.T) {
	for _, e := range EstadosInternos {
		assert.True(t, IsValidEstadoInterno(e), e)
	}
	assert.False(t, IsValidEstadoInterno("archivado"))
	assert.False(t, IsValidEstadoInterno("ACTIVO"))
}

func TestIsValidMoneda(t *testing.T) {
	assert.True(t, IsValidMoneda("USD"))
	assert.True(t, IsValidMoneda("PYG"))
	assert.False(t, IsValidMoneda("JPY"))
}

func TestAuditLogImmutable(t *testing.T) {
	database := setupModelsDB(t)

	entry := AuditLog{ResourceType: AuditResourceCaso, ResourceID: "c1", Action: AuditActionCreate}
	assert.NoError(t, database.Create(&entry).Error)

	entry.Description = "changed"
	assert.Error(t, database.Save(&entry).Error)
	assert.Error(t, database.Delete(&entry).Error)
}

func TestAuditLogChanges(t *testing.T) {
	entry := AuditLog{
		OldValues: `{"nombre":"A","pais":"Chile"}`,
		NewValues: `{"nombre":"B","pais":"Chile","direccion":"x"}`,
	}
	changes := entry.Changes()
	assert.Len(t, changes, 2)
	assert.Equal(t, "direccion", changes[0].Field)
	assert.Equal(t, "nombre", changes[1].Field)
	assert.Equal(t, "A", changes[1].Old)
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("Admin"))
	assert.True(t, IsValidRole("Visualizador"))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
}
