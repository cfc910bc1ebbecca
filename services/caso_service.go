package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/orelvisrguez/assistravel/models"

	"gorm.io/gorm"
)

// DuplicateSuffix is appended to the case number of a duplicated case
const DuplicateSuffix = "_COPY"

// ListCasos returns every caso of ownerID, newest first
func ListCasos(db *gorm.DB, ownerID string) ([]models.Caso, error) {
	var casos []models.Caso
	if err := db.Scopes(OwnerScope(ownerID)).Order("created_at DESC").Find(&casos).Error; err != nil {
		log.Printf("[CASOS] List failed for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("failed to list casos: %w", err)
	}
	return casos, nil
}

// ListCasosForCorresponsales returns the owner's casos referencing any of ids
// in one query.
func ListCasosForCorresponsales(db *gorm.DB, ownerID string, ids []string) ([]models.Caso, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var casos []models.Caso
	err := db.Scopes(OwnerScope(ownerID)).
		Where("corresponsalid IN ?", ids).
		Order("created_at DESC").
		Find(&casos).Error
	if err != nil {
		log.Printf("[CASOS] Stats query failed for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("failed to list casos by corresponsal: %w", err)
	}
	return casos, nil
}

// GetCaso returns one caso of ownerID
func GetCaso(db *gorm.DB, ownerID, id string) (*models.Caso, error) {
	var c models.Caso
	if err := db.Scopes(OwnerScope(ownerID)).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load caso: %w", err)
	}
	return &c, nil
}

// ValidateCaso checks required fields and normalizes enumerations
func ValidateCaso(c *models.Caso) error {
	var problems []string
	if strings.TrimSpace(c.NroCasoAssistravel) == "" {
		problems = append(problems, "nrocasoassistravel is required")
	}
	if strings.TrimSpace(c.CorresponsalID) == "" {
		problems = append(problems, "corresponsalid is required")
	}
	if c.EstadoInterno == "" {
		c.EstadoInterno = models.EstadoActivo
	}
	if c.InformeMedico != models.InformeMedicoSi {
		c.InformeMedico = models.InformeMedicoNo
	}
	if c.SimboloMoneda != nil && !models.IsValidMoneda(*c.SimboloMoneda) {
		problems = append(problems, fmt.Sprintf("simbolomoneda %q is not supported", *c.SimboloMoneda))
	}
	if !c.TieneFactura {
		c.NroFactura = nil
		c.FechaEmisionFactura = nil
		c.FechaVencimientoFactura = nil
		c.FechaPagoFactura = nil
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// CreateCaso inserts c owned by ownerID. The referenced corresponsal is not
// checked.
func CreateCaso(db *gorm.DB, ownerID string, c *models.Caso) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	SanitizeCaso(c)
	if err := ValidateCaso(c); err != nil {
		return err
	}
	c.UserID = ownerID

	if err := db.Create(c).Error; err != nil {
		log.Printf("[CASOS] Create failed for owner %s: %v", ownerID, err)
		return fmt.Errorf("failed to create caso: %w", err)
	}
	return nil
}

// CreateCasos batch-inserts records owned by ownerID
func CreateCasos(db *gorm.DB, ownerID string, records []models.Caso) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		SanitizeCaso(&records[i])
		if err := ValidateCaso(&records[i]); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		records[i].UserID = ownerID
	}

	if err := db.CreateInBatches(&records, 100).Error; err != nil {
		log.Printf("[CASOS] Batch insert failed for owner %s: %v", ownerID, err)
		return fmt.Errorf("failed to create casos: %w", err)
	}
	return nil
}

// UpdateCaso overwrites the editable fields of id with input and recomputes
// the stored total.
func UpdateCaso(db *gorm.DB, ownerID, id string, input *models.Caso) (*models.Caso, error) {
	SanitizeCaso(input)
	if err := ValidateCaso(input); err != nil {
		return nil, err
	}

	result := db.Model(&models.Caso{}).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Updates(casoColumns(input))
	if result.Error != nil {
		log.Printf("[CASOS] Update %s failed for owner %s: %v", id, ownerID, result.Error)
		return nil, fmt.Errorf("failed to update caso: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return GetCaso(db, ownerID, id)
}

func casoColumns(c *models.Caso) map[string]interface{} {
	return map[string]interface{}{
		"corresponsalid":          c.CorresponsalID,
		"nrocasoassistravel":      c.NroCasoAssistravel,
		"nrocasocorresponsal":     c.NroCasoCorresponsal,
		"fechadeinicio":           c.FechaDeInicio,
		"pais":                    c.Pais,
		"informemedico":           c.InformeMedico,
		"fee":                     c.Fee,
		"costousd":                c.CostoUSD,
		"costomonedalocal":        c.CostoMonedaLocal,
		"simbolomoneda":           c.SimboloMoneda,
		"montoagregado":           c.MontoAgregado,
		"total":                   c.ComputeTotal(),
		"tienefactura":            c.TieneFactura,
		"nrofactura":              c.NroFactura,
		"fechaemisionfactura":     c.FechaEmisionFactura,
		"fechavencimientofactura": c.FechaVencimientoFactura,
		"fechapagofactura":        c.FechaPagoFactura,
		"estadointerno":           c.EstadoInterno,
		"estadodelcaso":           c.EstadoDelCaso,
		"observaciones":           c.Observaciones,
	}
}

// DeleteCaso removes id permanently
func DeleteCaso(db *gorm.DB, ownerID, id string) error {
	result := db.Scopes(OwnerScope(ownerID)).Where("id = ?", id).Delete(&models.Caso{})
	if result.Error != nil {
		log.Printf("[CASOS] Delete %s failed for owner %s: %v", id, ownerID, result.Error)
		return fmt.Errorf("failed to delete caso: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// NewDuplicate copies src into a new unsaved caso: no id, case number with
// DuplicateSuffix and internal state reset to activo. Every other field,
// including the financials, is preserved.
func NewDuplicate(src models.Caso) models.Caso {
	dup := src
	dup.ID = ""
	dup.CreatedAt = time.Time{}
	dup.NroCasoAssistravel = src.NroCasoAssistravel + DuplicateSuffix
	dup.EstadoInterno = models.EstadoActivo

	dup.NroCasoCorresponsal = clonePtr(src.NroCasoCorresponsal)
	dup.FechaDeInicio = clonePtr(src.FechaDeInicio)
	dup.Pais = clonePtr(src.Pais)
	dup.Fee = clonePtr(src.Fee)
	dup.CostoUSD = clonePtr(src.CostoUSD)
	dup.CostoMonedaLocal = clonePtr(src.CostoMonedaLocal)
	dup.SimboloMoneda = clonePtr(src.SimboloMoneda)
	dup.MontoAgregado = clonePtr(src.MontoAgregado)
	dup.Total = clonePtr(src.Total)
	dup.NroFactura = clonePtr(src.NroFactura)
	dup.FechaEmisionFactura = clonePtr(src.FechaEmisionFactura)
	dup.FechaVencimientoFactura = clonePtr(src.FechaVencimientoFactura)
	dup.FechaPagoFactura = clonePtr(src.FechaPagoFactura)
	dup.EstadoDelCaso = clonePtr(src.EstadoDelCaso)
	dup.Observaciones = clonePtr(src.Observaciones)
	return dup
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DuplicateCaso stores a copy of the owner's caso id
func DuplicateCaso(db *gorm.DB, ownerID, id string) (*models.Caso, error) {
	src, err := GetCaso(db, ownerID, id)
	if err != nil {
		return nil, err
	}

	dup := NewDuplicate(*src)
	if err := CreateCaso(db, ownerID, &dup); err != nil {
		return nil, err
	}
	return &dup, nil
}
