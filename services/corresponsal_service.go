package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/orelvisrguez/assistravel/models"

	"gorm.io/gorm"
)

// OwnerScope restricts a query to rows whose user_id is ownerID. An empty
// owner matches nothing.
func OwnerScope(ownerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ownerID == "" {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", ownerID)
	}
}

// CorresponsalOrder selects the list ordering
type CorresponsalOrder int

const (
	// OrderByNombre sorts by name ascending (case list lookups)
	OrderByNombre CorresponsalOrder = iota
	// OrderByNewest sorts by creation time descending (correspondents view)
	OrderByNewest
)

// ListCorresponsales returns every corresponsal of ownerID
func ListCorresponsales(db *gorm.DB, ownerID string, order CorresponsalOrder) ([]models.Corresponsal, error) {
	query := db.Scopes(OwnerScope(ownerID))
	switch order {
	case OrderByNewest:
		query = query.Order("created_at DESC")
	default:
		query = query.Order("nombre ASC")
	}

	var corresponsales []models.Corresponsal
	if err := query.Find(&corresponsales).Error; err != nil {
		log.Printf("[CORRESPONSALES] List failed for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("failed to list corresponsales: %w", err)
	}
	return corresponsales, nil
}

// GetCorresponsal returns one corresponsal of ownerID
func GetCorresponsal(db *gorm.DB, ownerID, id string) (*models.Corresponsal, error) {
	var c models.Corresponsal
	if err := db.Scopes(OwnerScope(ownerID)).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load corresponsal: %w", err)
	}
	return &c, nil
}

// ValidateCorresponsal checks required fields
func ValidateCorresponsal(c *models.Corresponsal) error {
	if strings.TrimSpace(c.Nombre) == "" {
		return fmt.Errorf("nombre is required")
	}
	return nil
}

// CreateCorresponsal inserts c owned by ownerID
func CreateCorresponsal(db *gorm.DB, ownerID string, c *models.Corresponsal) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	SanitizeCorresponsal(c)
	if err := ValidateCorresponsal(c); err != nil {
		return err
	}
	c.UserID = ownerID

	if err := db.Create(c).Error; err != nil {
		log.Printf("[CORRESPONSALES] Create failed for owner %s: %v", ownerID, err)
		return fmt.Errorf("failed to create corresponsal: %w", err)
	}
	return nil
}

// CreateCorresponsales batch-inserts records owned by ownerID
func CreateCorresponsales(db *gorm.DB, ownerID string, records []models.Corresponsal) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		SanitizeCorresponsal(&records[i])
		if err := ValidateCorresponsal(&records[i]); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		records[i].UserID = ownerID
	}

	if err := db.CreateInBatches(&records, 100).Error; err != nil {
		log.Printf("[CORRESPONSALES] Batch insert failed for owner %s: %v", ownerID, err)
		return fmt.Errorf("failed to create corresponsales: %w", err)
	}
	return nil
}

// UpdateCorresponsal overwrites the editable fields of id with input
func UpdateCorresponsal(db *gorm.DB, ownerID, id string, input *models.Corresponsal) (*models.Corresponsal, error) {
	SanitizeCorresponsal(input)
	if err := ValidateCorresponsal(input); err != nil {
		return nil, err
	}

	result := db.Model(&models.Corresponsal{}).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"nombre":            input.Nombre,
			"contactoprincipal": input.ContactoPrincipal,
			"emailcontacto":     input.EmailContacto,
			"telefonocontacto":  input.TelefonoContacto,
			"direccion":         input.Direccion,
			"pais":              input.Pais,
			"observaciones":     input.Observaciones,
		})
	if result.Error != nil {
		log.Printf("[CORRESPONSALES] Update %s failed for owner %s: %v", id, ownerID, result.Error)
		return nil, fmt.Errorf("failed to update corresponsal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return GetCorresponsal(db, ownerID, id)
}

// DeleteCorresponsal removes id permanently. Cases pointing at it are left
// untouched and show the not-found label afterwards.
func DeleteCorresponsal(db *gorm.DB, ownerID, id string) error {
	result := db.Scopes(OwnerScope(ownerID)).Where("id = ?", id).Delete(&models.Corresponsal{})
	if result.Error != nil {
		log.Printf("[CORRESPONSALES] Delete %s failed for owner %s: %v", id, ownerID, result.Error)
		return fmt.Errorf("failed to delete corresponsal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// CountCasosForCorresponsal counts the owner's cases still referencing id
func CountCasosForCorresponsal(db *gorm.DB, ownerID, id string) (int64, error) {
	var count int64
	err := db.Model(&models.Caso{}).Scopes(OwnerScope(ownerID)).Where("corresponsalid = ?", id).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count casos: %w", err)
	}
	return count, nil
}
