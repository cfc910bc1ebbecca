package pages

import (
	"context"
	"strconv"
	"strings"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/templates/components"
)

func authTabClass(mode, current string) string {
	if mode == current {
		return "flex-1 py-2 text-center text-sm font-medium text-blue-600 border-b-2 border-blue-600"
	}
	return "flex-1 py-2 text-center text-sm font-medium text-gray-500 hover:text-gray-700"
}

func (f AuthForm) action() string {
	if f.Mode == AuthModeSignUp {
		return "/auth/signup"
	}
	return "/auth/signin"
}

func (f AuthForm) button() string {
	if f.Mode == AuthModeSignUp {
		return "auth.signup_button"
	}
	return "auth.signin_button"
}

func (f AuthForm) normalized() AuthForm {
	if f.Mode != AuthModeSignUp {
		f.Mode = AuthModeSignIn
	}
	return f
}

func exportHref(f services.CasoFilter) string {
	if q := f.Query(); q != "" {
		return "/casos/export?" + q
	}
	return "/casos/export"
}

// allOption is the leading "Label: all" entry of a filter select
func allOption(ctx context.Context, key string) components.Option {
	return components.Option{Value: "", Label: components.T(ctx, key) + ": " + components.T(ctx, "common.all")}
}

func estadoFilterOptions(ctx context.Context) []components.Option {
	opts := []components.Option{allOption(ctx, "casos.filters.estado")}
	for _, e := range models.EstadosInternos {
		opts = append(opts, components.Option{Value: e, Label: components.EstadoLabel(ctx, e)})
	}
	return opts
}

func corresponsalOptions(lead components.Option, list []models.Corresponsal) []components.Option {
	opts := []components.Option{lead}
	for _, c := range list {
		opts = append(opts, components.Option{Value: c.ID, Label: c.Nombre})
	}
	return opts
}

func paisFilterOptions(ctx context.Context, paises []string) []components.Option {
	opts := []components.Option{allOption(ctx, "casos.filters.pais")}
	for _, p := range paises {
		opts = append(opts, components.Option{Value: p, Label: p})
	}
	return opts
}

func monedaOptions() []components.Option {
	opts := make([]components.Option, len(models.Monedas))
	for i, m := range models.Monedas {
		opts[i] = components.Option{Value: m, Label: m}
	}
	return opts
}

// estadoFormOptions lists the known states plus the stored one when it is
// not among them, so editing never silently rewrites it.
func estadoFormOptions(ctx context.Context, stored string) []components.Option {
	opts := make([]components.Option, 0, len(models.EstadosInternos)+1)
	for _, e := range models.EstadosInternos {
		opts = append(opts, components.Option{Value: e, Label: components.EstadoLabel(ctx, e)})
	}
	if stored != "" && !models.IsValidEstadoInterno(stored) {
		opts = append(opts, components.Option{Value: stored, Label: stored})
	}
	return opts
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func amountField(ctx context.Context, name string, v *float64) components.Field {
	value := ""
	if v != nil {
		value = strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return components.Field{Name: name, Label: components.T(ctx, "casos.fields."+name), Type: "number", Step: "0.01", Value: value}
}

func casoField(ctx context.Context, name, value, typ string) components.Field {
	return components.Field{Name: name, Label: components.T(ctx, "casos.fields."+name), Value: value, Type: typ}
}

func corresponsalField(ctx context.Context, name, value, typ string) components.Field {
	return components.Field{Name: name, Label: components.T(ctx, "corresponsales.fields."+name), Value: value, Type: typ}
}

func casoCancelHref(form CasoForm) string {
	if form.IsNew() {
		return "/casos"
	}
	return "/casos/" + form.Caso.ID
}

func corresponsalCancelHref(form CorresponsalForm) string {
	if form.IsNew() {
		return "/corresponsales"
	}
	return "/corresponsales/" + form.Corresponsal.ID
}

// deleteConfirm warns about linked cases before a correspondent is removed
func deleteConfirm(ctx context.Context, casos int) string {
	if casos == 0 {
		return ""
	}
	return components.T(ctx, "corresponsales.delete_with_casos", map[string]interface{}{"count": casos})
}

func joinList(label string, values []string) string {
	return label + " " + strings.Join(values, ", ")
}

type sheetEntry struct {
	key   string
	value string
}

type sheetSection struct {
	key     string
	entries []sheetEntry
}

func yesNo(ctx context.Context, b bool) string {
	if b {
		return components.T(ctx, "common.yes")
	}
	return components.T(ctx, "common.no")
}

// casoSheetSections lays out every field of a case in display order
func casoSheetSections(ctx context.Context, row services.CasoRow) []sheetSection {
	c := row.Caso
	symbol := components.Deref(c.SimboloMoneda)
	return []sheetSection{
		{"casos.sections.general", []sheetEntry{
			{"casos.fields.nrocasoassistravel", c.NroCasoAssistravel},
			{"casos.fields.corresponsal", row.CorresponsalNombre},
			{"casos.fields.nrocasocorresponsal", components.OrDash(c.NroCasoCorresponsal)},
			{"casos.fields.fechadeinicio", components.FormatDate(ctx, c.FechaDeInicio)},
			{"casos.fields.pais", components.OrDash(c.Pais)},
			{"casos.fields.informemedico", yesNo(ctx, c.HasInformeMedico())},
		}},
		{"casos.sections.financiero", []sheetEntry{
			{"casos.fields.fee", components.FormatAmount(ctx, c.Fee, "$")},
			{"casos.fields.costousd", components.FormatAmount(ctx, c.CostoUSD, "$")},
			{"casos.fields.costomonedalocal", components.FormatAmount(ctx, c.CostoMonedaLocal, symbol)},
			{"casos.fields.montoagregado", components.FormatAmount(ctx, c.MontoAgregado, "$")},
			{"casos.fields.total", components.FormatMoney(ctx, c.TotalValue())},
		}},
		{"casos.sections.factura", []sheetEntry{
			{"casos.fields.tienefactura", yesNo(ctx, c.TieneFactura)},
			{"casos.fields.nrofactura", components.OrDash(c.NroFactura)},
			{"casos.fields.fechaemisionfactura", components.FormatDate(ctx, c.FechaEmisionFactura)},
			{"casos.fields.fechavencimientofactura", components.FormatDate(ctx, c.FechaVencimientoFactura)},
			{"casos.fields.fechapagofactura", components.FormatDate(ctx, c.FechaPagoFactura)},
		}},
		{"casos.sections.estado", []sheetEntry{
			{"casos.fields.estadointerno", components.EstadoLabel(ctx, c.EstadoInterno)},
			{"casos.fields.estadodelcaso", components.OrDash(c.EstadoDelCaso)},
			{"casos.fields.observaciones", components.OrDash(c.Observaciones)},
		}},
	}
}

func corresponsalEntries(c models.Corresponsal) []sheetEntry {
	return []sheetEntry{
		{"corresponsales.fields.contactoprincipal", components.OrDash(c.ContactoPrincipal)},
		{"corresponsales.fields.emailcontacto", components.OrDash(c.EmailContacto)},
		{"corresponsales.fields.telefonocontacto", components.OrDash(c.TelefonoContacto)},
		{"corresponsales.fields.direccion", components.OrDash(c.Direccion)},
		{"corresponsales.fields.observaciones", components.OrDash(c.Observaciones)},
	}
}

var importInstructions = []string{"line_1", "line_2", "line_3", "line_4", "line_5", "line_6", "line_7"}
