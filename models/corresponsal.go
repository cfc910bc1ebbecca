package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Corresponsal is a partner medical/assistance agency owned by one user.
type Corresponsal struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_corresponsal_owner_created" json:"created_at"`

	// Owner scoping
	UserID string `gorm:"column:user_id;type:uuid;not null;index:idx_corresponsal_owner_created;index:idx_corresponsal_owner_nombre" json:"user_id"`

	Nombre            string  `gorm:"column:nombre;not null;index:idx_corresponsal_owner_nombre" json:"nombre"`
	ContactoPrincipal *string `gorm:"column:contactoprincipal" json:"contactoprincipal"`
	EmailContacto     *string `gorm:"column:emailcontacto" json:"emailcontacto"`
	TelefonoContacto  *string `gorm:"column:telefonocontacto" json:"telefonocontacto"`
	Direccion         *string `gorm:"column:direccion" json:"direccion"`
	Pais              *string `gorm:"column:pais" json:"pais"`
	Observaciones     *string `gorm:"column:observaciones;type:text" json:"observaciones"`
}

// BeforeCreate hook to generate UUID
func (c *Corresponsal) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Corresponsal model
func (Corresponsal) TableName() string {
	return "corresponsales"
}
