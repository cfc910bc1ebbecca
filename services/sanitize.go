package services

import (
	"html"
	"strings"

	"github.com/orelvisrguez/assistravel/models"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user text. The policy escapes entities,
// which are decoded back since templates escape on output.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// SanitizeOptional sanitizes an optional field; blank results become nil
func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

// SanitizeCorresponsal cleans every free-text field in place
func SanitizeCorresponsal(c *models.Corresponsal) {
	c.Nombre = SanitizeText(c.Nombre)
	c.ContactoPrincipal = SanitizeOptional(c.ContactoPrincipal)
	c.EmailContacto = SanitizeOptional(c.EmailContacto)
	c.TelefonoContacto = SanitizeOptional(c.TelefonoContacto)
	c.Direccion = SanitizeOptional(c.Direccion)
	c.Pais = SanitizeOptional(c.Pais)
	c.Observaciones = SanitizeOptional(c.Observaciones)
}

// SanitizeCaso cleans every free-text field in place
func SanitizeCaso(c *models.Caso) {
	c.NroCasoAssistravel = SanitizeText(c.NroCasoAssistravel)
	c.NroCasoCorresponsal = SanitizeOptional(c.NroCasoCorresponsal)
	c.Pais = SanitizeOptional(c.Pais)
	c.SimboloMoneda = SanitizeOptional(c.SimboloMoneda)
	c.NroFactura = SanitizeOptional(c.NroFactura)
	c.EstadoInterno = SanitizeText(c.EstadoInterno)
	c.EstadoDelCaso = SanitizeOptional(c.EstadoDelCaso)
	c.Observaciones = SanitizeOptional(c.Observaciones)
}
