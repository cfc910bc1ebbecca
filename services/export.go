package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/i18n"

	"github.com/xuri/excelize/v2"
)

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(importDateLayout)
}

func amountValue(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "si"
	}
	return "no"
}

func casoExportRow(r CasoRow) []interface{} {
	return []interface{}{
		r.CorresponsalNombre,
		r.NroCasoAssistravel,
		deref(r.NroCasoCorresponsal),
		formatDate(r.FechaDeInicio),
		deref(r.Pais),
		r.InformeMedico,
		amountValue(r.Fee),
		amountValue(r.CostoUSD),
		amountValue(r.CostoMonedaLocal),
		deref(r.SimboloMoneda),
		amountValue(r.MontoAgregado),
		yesNo(r.TieneFactura),
		deref(r.NroFactura),
		formatDate(r.FechaEmisionFactura),
		formatDate(r.FechaVencimientoFactura),
		formatDate(r.FechaPagoFactura),
		r.EstadoInterno,
		deref(r.EstadoDelCaso),
		deref(r.Observaciones),
		amountValue(r.Total),
	}
}

// ExportCasos writes rows, plus the corresponsales they reference, in the
// import workbook layout so the file can be imported again. The Casos sheet
// carries an extra trailing total column.
func ExportCasos(ctx context.Context, rows []CasoRow, corresponsales []models.Corresponsal) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	// --- Summary Sheet ---
	sheetSummary := i18n.T(ctx, "import.sheets.instructions")
	f.SetSheetName("Sheet1", sheetSummary)
	casos := make([]models.Caso, len(rows))
	for i, r := range rows {
		casos[i] = r.Caso
	}
	stats := ComputeCasoStats(casos)
	f.SetSheetRow(sheetSummary, "A1", &[]interface{}{i18n.T(ctx, "export.title"), time.Now().Format(importDateLayout)})
	f.SetSheetRow(sheetSummary, "A3", &[]interface{}{i18n.T(ctx, "casos.stats.total"), stats.Total})
	f.SetSheetRow(sheetSummary, "A4", &[]interface{}{i18n.T(ctx, "casos.stats.completados"), stats.Completados})
	f.SetSheetRow(sheetSummary, "A5", &[]interface{}{i18n.T(ctx, "casos.stats.monto_total"), stats.MontoTotal})
	f.SetSheetRow(sheetSummary, "A6", &[]interface{}{i18n.T(ctx, "casos.stats.facturas_pendientes"), stats.FacturasPendientes})
	f.SetColWidth(sheetSummary, "A", "B", 30)

	// --- Corresponsales Sheet ---
	sheetCorresponsales := i18n.T(ctx, "import.sheets.corresponsales")
	f.NewSheet(sheetCorresponsales)
	writeHeaderRow(ctx, f, sheetCorresponsales, corresponsalColumns, headerStyle)

	referenced := make(map[string]bool, len(rows))
	for _, r := range rows {
		referenced[r.CorresponsalID] = true
	}
	line := 2
	for _, c := range corresponsales {
		if !referenced[c.ID] {
			continue
		}
		cellName, _ := excelize.CoordinatesToCellName(1, line)
		f.SetSheetRow(sheetCorresponsales, cellName, &[]interface{}{
			c.Nombre, deref(c.ContactoPrincipal), deref(c.EmailContacto), deref(c.TelefonoContacto),
			deref(c.Direccion), deref(c.Pais), deref(c.Observaciones),
		})
		line++
	}

	// --- Casos Sheet ---
	sheetCasos := i18n.T(ctx, "import.sheets.casos")
	f.NewSheet(sheetCasos)
	writeHeaderRow(ctx, f, sheetCasos, append(append([]string{}, casoColumnKeys...), "total"), headerStyle)
	for i, r := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+2)
		values := casoExportRow(r)
		if err := f.SetSheetRow(sheetCasos, cellName, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if len(rows) > 0 {
		f.SetCellStyle(sheetCasos, "G2", fmt.Sprintf("K%d", len(rows)+1), amountStyle)
		f.SetCellStyle(sheetCasos, "T2", fmt.Sprintf("T%d", len(rows)+1), amountStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}
