package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Estado interno constants
const (
	EstadoActivo     = "activo"
	EstadoEnProceso  = "en_proceso"
	EstadoCompletado = "completado"
	EstadoCancelado  = "cancelado"
	EstadoPendiente  = "pendiente"
)

// EstadosInternos lists the known internal states in display order
var EstadosInternos = []string{
	EstadoActivo,
	EstadoEnProceso,
	EstadoCompletado,
	EstadoCancelado,
	EstadoPendiente,
}

// Informe medico values
const (
	InformeMedicoSi = "si"
	InformeMedicoNo = "no"
)

// Monedas lists the accepted currency codes for local costs
var Monedas = []string{"USD", "ARS", "BRL", "EUR", "MXN", "CLP", "COP", "PEN", "UYU", "PYG"}

// Paises are the country suggestions offered on forms
var Paises = []string{
	"Argentina", "Bolivia", "Brasil", "Chile", "Colombia", "Costa Rica",
	"Ecuador", "El Salvador", "Guatemala", "Honduras", "México", "Nicaragua",
	"Panamá", "Paraguay", "Perú", "Uruguay", "Venezuela",
}

// Caso represents a medical assistance case handled through a corresponsal
type Caso struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_caso_owner_created" json:"created_at"`

	// Owner scoping
	UserID string `gorm:"column:user_id;type:uuid;not null;index:idx_caso_owner_created;index:idx_caso_owner_corresponsal" json:"user_id"`

	// Soft reference, not enforced: the corresponsal may have been deleted
	CorresponsalID string `gorm:"column:corresponsalid;type:uuid;not null;index:idx_caso_owner_corresponsal" json:"corresponsalid"`

	// Identification
	NroCasoAssistravel  string     `gorm:"column:nrocasoassistravel;not null" json:"nrocasoassistravel"`
	NroCasoCorresponsal *string    `gorm:"column:nrocasocorresponsal" json:"nrocasocorresponsal"`
	FechaDeInicio       *time.Time `gorm:"column:fechadeinicio" json:"fechadeinicio"`
	Pais                *string    `gorm:"column:pais" json:"pais"`
	InformeMedico       string     `gorm:"column:informemedico;not null;default:no" json:"informemedico"`

	// Financials
	Fee              *float64 `gorm:"column:fee" json:"fee"`
	CostoUSD         *float64 `gorm:"column:costousd" json:"costousd"`
	CostoMonedaLocal *float64 `gorm:"column:costomonedalocal" json:"costomonedalocal"`
	SimboloMoneda    *string  `gorm:"column:simbolomoneda" json:"simbolomoneda"`
	MontoAgregado    *float64 `gorm:"column:montoagregado" json:"montoagregado"`
	Total            *float64 `gorm:"column:total" json:"total"`

	// Invoice
	TieneFactura            bool       `gorm:"column:tienefactura;not null;default:false" json:"tienefactura"`
	NroFactura              *string    `gorm:"column:nrofactura" json:"nrofactura"`
	FechaEmisionFactura     *time.Time `gorm:"column:fechaemisionfactura" json:"fechaemisionfactura"`
	FechaVencimientoFactura *time.Time `gorm:"column:fechavencimientofactura" json:"fechavencimientofactura"`
	FechaPagoFactura        *time.Time `gorm:"column:fechapagofactura" json:"fechapagofactura"`

	// State
	EstadoInterno string  `gorm:"column:estadointerno;not null;default:activo" json:"estadointerno"`
	EstadoDelCaso *string `gorm:"column:estadodelcaso" json:"estadodelcaso"`
	Observaciones *string `gorm:"column:observaciones;type:text" json:"observaciones"`
}

// BeforeCreate hook to generate UUID
func (c *Caso) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.EstadoInterno == "" {
		c.EstadoInterno = EstadoActivo
	}
	if c.InformeMedico == "" {
		c.InformeMedico = InformeMedicoNo
	}
	return nil
}

// BeforeSave maintains the stored total on inserts and full saves. The
// local-currency cost is informative only and never added. Map updates must
// carry "total" themselves.
func (c *Caso) BeforeSave(tx *gorm.DB) error {
	c.Total = c.ComputeTotal()
	return nil
}

// TableName specifies the table name for Caso model
func (Caso) TableName() string {
	return "casos"
}

// ComputeTotal returns fee + costousd + montoagregado, or nil when all are empty
func (c *Caso) ComputeTotal() *float64 {
	if c.Fee == nil && c.CostoUSD == nil && c.MontoAgregado == nil {
		return nil
	}
	var sum float64
	for _, v := range []*float64{c.Fee, c.CostoUSD, c.MontoAgregado} {
		if v != nil {
			sum += *v
		}
	}
	return &sum
}

// TotalValue returns the stored total, treating null as zero
func (c *Caso) TotalValue() float64 {
	if c.Total == nil {
		return 0
	}
	return *c.Total
}

// IsCompletado checks if the case is completed
func (c *Caso) IsCompletado() bool {
	return c.EstadoInterno == EstadoCompletado
}

// HasInformeMedico checks if a medical report was received
func (c *Caso) HasInformeMedico() bool {
	return c.InformeMedico == InformeMedicoSi
}

// IsFacturaPendiente reports an issued invoice with no payment date
func (c *Caso) IsFacturaPendiente() bool {
	return c.TieneFactura && c.FechaPagoFactura == nil
}

// IsValidEstadoInterno checks if the internal state is one of the known values
func IsValidEstadoInterno(estado string) bool {
	for _, e := range EstadosInternos {
		if e == estado {
			return true
		}
	}
	return false
}

// IsValidMoneda checks if the currency code is accepted
func IsValidMoneda(code string) bool {
	for _, m := range Monedas {
		if m == code {
			return true
		}
	}
	return false
}
