package services

import (
	"net/url"
	"sort"
	"strings"

	"github.com/orelvisrguez/assistravel/models"

	"gorm.io/gorm"
)

// CorresponsalNoEncontrado labels cases whose corresponsal no longer exists
const CorresponsalNoEncontrado = "Corresponsal no encontrado"

// CasoRow is a caso joined in memory with its corresponsal name
type CasoRow struct {
	models.Caso
	CorresponsalNombre string `json:"corresponsalnombre"`
	CorresponsalFound  bool   `json:"corresponsalfound"`
}

// EnrichCasos resolves each caso's corresponsal against corresponsales. A
// miss yields the CorresponsalNoEncontrado label.
func EnrichCasos(casos []models.Caso, corresponsales []models.Corresponsal) []CasoRow {
	names := make(map[string]string, len(corresponsales))
	for _, c := range corresponsales {
		names[c.ID] = c.Nombre
	}

	rows := make([]CasoRow, len(casos))
	for i, c := range casos {
		name, ok := names[c.CorresponsalID]
		if !ok {
			name = CorresponsalNoEncontrado
		}
		rows[i] = CasoRow{Caso: c, CorresponsalNombre: name, CorresponsalFound: ok}
	}
	return rows
}

// CasoFilter holds the search term and discrete filters of the cases view
type CasoFilter struct {
	Search         string `query:"q"`
	Estado         string `query:"estado"`
	CorresponsalID string `query:"corresponsal"`
	Pais           string `query:"pais"`
}

// Active reports whether any filter narrows the list
func (f CasoFilter) Active() bool {
	return f.Search != "" || f.Estado != "" || f.CorresponsalID != "" || f.Pais != ""
}

// Query encodes the non-empty filters as URL query parameters
func (f CasoFilter) Query() string {
	v := url.Values{}
	for key, val := range map[string]string{
		"q": f.Search, "estado": f.Estado, "corresponsal": f.CorresponsalID, "pais": f.Pais,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v.Encode()
}

// containsFold reports whether any field contains term, ignoring case. The
// term is matched as typed, surrounding spaces included.
func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Matches applies the filter to one row
func (f CasoFilter) Matches(row CasoRow) bool {
	if !containsFold(f.Search,
		row.NroCasoAssistravel,
		row.CorresponsalNombre,
		deref(row.Pais),
		deref(row.NroCasoCorresponsal),
	) {
		return false
	}
	if f.Estado != "" && row.EstadoInterno != f.Estado {
		return false
	}
	if f.CorresponsalID != "" && row.CorresponsalID != f.CorresponsalID {
		return false
	}
	if f.Pais != "" && deref(row.Pais) != f.Pais {
		return false
	}
	return true
}

// FilterCasos returns the rows matching f, preserving order. It never
// re-queries and is idempotent.
func FilterCasos(rows []CasoRow, f CasoFilter) []CasoRow {
	out := make([]CasoRow, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// CasoStats are the aggregate cards of the cases view
type CasoStats struct {
	Total              int     `json:"total"`
	Completados        int     `json:"completados"`
	MontoTotal         float64 `json:"monto_total"`
	FacturasPendientes int     `json:"facturas_pendientes"`
}

// ComputeCasoStats aggregates the stored totals of casos; null totals count as 0
func ComputeCasoStats(casos []models.Caso) CasoStats {
	stats := CasoStats{Total: len(casos)}
	for i := range casos {
		c := &casos[i]
		if c.IsCompletado() {
			stats.Completados++
		}
		stats.MontoTotal += c.TotalValue()
		if c.IsFacturaPendiente() {
			stats.FacturasPendientes++
		}
	}
	return stats
}

// DistinctPaises lists the non-empty countries of rows, sorted
func DistinctPaises(rows []CasoRow) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		if p := deref(r.Pais); p != "" {
			seen[p] = struct{}{}
		}
	}
	paises := make([]string, 0, len(seen))
	for p := range seen {
		paises = append(paises, p)
	}
	sort.Strings(paises)
	return paises
}

// EstadoBadge describes how an internal state is displayed
type EstadoBadge struct {
	Estado string
	Known  bool
	Class  string
}

var estadoBadgeClasses = map[string]string{
	models.EstadoActivo:     "bg-blue-100 text-blue-800",
	models.EstadoEnProceso:  "bg-yellow-100 text-yellow-800",
	models.EstadoCompletado: "bg-green-100 text-green-800",
	models.EstadoCancelado:  "bg-red-100 text-red-800",
	models.EstadoPendiente:  "bg-gray-100 text-gray-800",
}

// DefaultBadgeClass styles unknown states
const DefaultBadgeClass = "bg-gray-100 text-gray-800"

// BadgeForEstado never fails: unknown states keep their raw value and get
// the default style.
func BadgeForEstado(estado string) EstadoBadge {
	if class, ok := estadoBadgeClasses[estado]; ok {
		return EstadoBadge{Estado: estado, Known: true, Class: class}
	}
	return EstadoBadge{Estado: estado, Class: DefaultBadgeClass}
}

// Factura display states
const (
	FacturaPagada     = "pagada"
	FacturaPendiente  = "pendiente"
	FacturaSinFactura = "sin_factura"
)

// FacturaStatus classifies the invoice of c
func FacturaStatus(c *models.Caso) string {
	switch {
	case !c.TieneFactura:
		return FacturaSinFactura
	case c.FechaPagoFactura != nil:
		return FacturaPagada
	default:
		return FacturaPendiente
	}
}

// CasosView is everything the cases page renders
type CasosView struct {
	Filter         CasoFilter
	Rows           []CasoRow
	Corresponsales []models.Corresponsal
	Paises         []string
	// Stats cover the full owner set, not the filtered rows
	Stats CasoStats
}

// LoadCasosView fetches the owner's corresponsales and casos, enriches and
// filters them.
func LoadCasosView(db *gorm.DB, ownerID string, filter CasoFilter) (*CasosView, error) {
	corresponsales, err := ListCorresponsales(db, ownerID, OrderByNombre)
	if err != nil {
		return nil, err
	}
	casos, err := ListCasos(db, ownerID)
	if err != nil {
		return nil, err
	}

	all := EnrichCasos(casos, corresponsales)
	return &CasosView{
		Filter:         filter,
		Rows:           FilterCasos(all, filter),
		Corresponsales: corresponsales,
		Paises:         DistinctPaises(all),
		Stats:          ComputeCasoStats(casos),
	}, nil
}
