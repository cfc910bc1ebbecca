package services

import (
	"github.com/orelvisrguez/assistravel/models"

	"gorm.io/gorm"
)

// CorresponsalStats summarizes the cases referencing one corresponsal
type CorresponsalStats struct {
	TotalCasos       int     `json:"total_casos"`
	CasosCompletados int     `json:"casos_completados"`
	MontoTotal       float64 `json:"monto_total"`
}

// CorresponsalRow is a corresponsal with its case statistics
type CorresponsalRow struct {
	models.Corresponsal
	Stats CorresponsalStats `json:"stats"`
}

// ReduceCorresponsalStats groups casos by corresponsal id
func ReduceCorresponsalStats(casos []models.Caso) map[string]CorresponsalStats {
	stats := make(map[string]CorresponsalStats)
	for i := range casos {
		c := &casos[i]
		s := stats[c.CorresponsalID]
		s.TotalCasos++
		if c.IsCompletado() {
			s.CasosCompletados++
		}
		s.MontoTotal += c.TotalValue()
		stats[c.CorresponsalID] = s
	}
	return stats
}

// FilterCorresponsales matches search against name, country and email
func FilterCorresponsales(rows []CorresponsalRow, search string) []CorresponsalRow {
	out := make([]CorresponsalRow, 0, len(rows))
	for _, r := range rows {
		if containsFold(search, r.Nombre, deref(r.Pais), deref(r.EmailContacto)) {
			out = append(out, r)
		}
	}
	return out
}

// CorresponsalesView is everything the correspondents page renders
type CorresponsalesView struct {
	Search string
	Rows   []CorresponsalRow
	// Totals cover every corresponsal, not only the filtered ones
	Count  int
	Totals CorresponsalStats
}

// LoadCorresponsalesView fetches the owner's corresponsales newest first and
// attaches their stats from a single owner-scoped case query.
func LoadCorresponsalesView(db *gorm.DB, ownerID, search string) (*CorresponsalesView, error) {
	corresponsales, err := ListCorresponsales(db, ownerID, OrderByNewest)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(corresponsales))
	for i, c := range corresponsales {
		ids[i] = c.ID
	}
	casos, err := ListCasosForCorresponsales(db, ownerID, ids)
	if err != nil {
		return nil, err
	}
	stats := ReduceCorresponsalStats(casos)

	view := &CorresponsalesView{Search: search, Count: len(corresponsales)}
	rows := make([]CorresponsalRow, len(corresponsales))
	for i, c := range corresponsales {
		s := stats[c.ID]
		rows[i] = CorresponsalRow{Corresponsal: c, Stats: s}
		view.Totals.TotalCasos += s.TotalCasos
		view.Totals.CasosCompletados += s.CasosCompletados
		view.Totals.MontoTotal += s.MontoTotal
	}
	view.Rows = FilterCorresponsales(rows, search)
	return view, nil
}

// CorresponsalDetail is a corresponsal with its own cases
type CorresponsalDetail struct {
	Corresponsal models.Corresponsal
	Casos        []CasoRow
	Stats        CorresponsalStats
}

// LoadCorresponsalDetail fetches one corresponsal and its owner-scoped cases
func LoadCorresponsalDetail(db *gorm.DB, ownerID, id string) (*CorresponsalDetail, error) {
	c, err := GetCorresponsal(db, ownerID, id)
	if err != nil {
		return nil, err
	}
	casos, err := ListCasosForCorresponsales(db, ownerID, []string{c.ID})
	if err != nil {
		return nil, err
	}
	return &CorresponsalDetail{
		Corresponsal: *c,
		Casos:        EnrichCasos(casos, []models.Corresponsal{*c}),
		Stats:        ReduceCorresponsalStats(casos)[c.ID],
	}, nil
}
