package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"

	"github.com/labstack/echo/v4"
)

func formOptional(c echo.Context, name string) *string {
	v := strings.TrimSpace(c.FormValue(name))
	if v == "" {
		return nil
	}
	return &v
}

// bindCorresponsal reads the corresponsal form fields
func bindCorresponsal(c echo.Context) *models.Corresponsal {
	return &models.Corresponsal{
		Nombre:            strings.TrimSpace(c.FormValue("nombre")),
		ContactoPrincipal: formOptional(c, "contactoprincipal"),
		EmailContacto:     formOptional(c, "emailcontacto"),
		TelefonoContacto:  formOptional(c, "telefonocontacto"),
		Direccion:         formOptional(c, "direccion"),
		Pais:              formOptional(c, "pais"),
		Observaciones:     formOptional(c, "observaciones"),
	}
}

// bindCaso reads the caso form fields. The returned caso is always usable to
// re-render the form, even when err reports a malformed amount or date.
func bindCaso(c echo.Context) (*models.Caso, error) {
	caso := &models.Caso{
		CorresponsalID:      strings.TrimSpace(c.FormValue("corresponsalid")),
		NroCasoAssistravel:  strings.TrimSpace(c.FormValue("nrocasoassistravel")),
		NroCasoCorresponsal: formOptional(c, "nrocasocorresponsal"),
		Pais:                formOptional(c, "pais"),
		InformeMedico:       c.FormValue("informemedico"),
		SimboloMoneda:       formOptional(c, "simbolomoneda"),
		TieneFactura:        c.FormValue("tienefactura") == "true",
		NroFactura:          formOptional(c, "nrofactura"),
		EstadoInterno:       strings.TrimSpace(c.FormValue("estadointerno")),
		EstadoDelCaso:       formOptional(c, "estadodelcaso"),
		Observaciones:       formOptional(c, "observaciones"),
	}

	var problems []string
	amounts := map[string]**float64{
		"fee":              &caso.Fee,
		"costousd":         &caso.CostoUSD,
		"costomonedalocal": &caso.CostoMonedaLocal,
		"montoagregado":    &caso.MontoAgregado,
	}
	for _, name := range []string{"fee", "costousd", "costomonedalocal", "montoagregado"} {
		v, err := services.ParseAmount(c.FormValue(name))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		*amounts[name] = v
	}

	dates := map[string]**time.Time{
		"fechadeinicio":           &caso.FechaDeInicio,
		"fechaemisionfactura":     &caso.FechaEmisionFactura,
		"fechavencimientofactura": &caso.FechaVencimientoFactura,
		"fechapagofactura":        &caso.FechaPagoFactura,
	}
	for _, name := range []string{"fechadeinicio", "fechaemisionfactura", "fechavencimientofactura", "fechapagofactura"} {
		v, err := services.ParseDate(strings.TrimSpace(c.FormValue(name)))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		*dates[name] = v
	}

	caso.Total = caso.ComputeTotal()
	if len(problems) > 0 {
		return caso, errors.New(strings.Join(problems, "; "))
	}
	return caso, nil
}
