package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/i18n"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ErrInvalidWorkbook is returned when the uploaded file is not an import workbook
var ErrInvalidWorkbook = errors.New("invalid excel format: missing sheets")

// ErrNothingImported is returned when every row of the workbook failed
var ErrNothingImported = errors.New("all rows failed")

// ImportResult contains the summary of the import process
type ImportResult struct {
	CorresponsalesCreated int
	CorresponsalesMatched int
	CasosCreated          int
	TotalProcessed        int
	FailedCount           int
	Errors                []string
	ArchiveKey            string
}

// Column layout of the Corresponsales sheet
var corresponsalColumns = []string{
	"nombre", "contactoprincipal", "emailcontacto", "telefonocontacto", "direccion", "pais", "observaciones",
}

// Column layout of the Casos sheet, shared by the export
var casoColumnKeys = []string{
	"corresponsal", "nrocasoassistravel", "nrocasocorresponsal", "fechadeinicio", "pais", "informemedico",
	"fee", "costousd", "costomonedalocal", "simbolomoneda", "montoagregado",
	"tienefactura", "nrofactura", "fechaemisionfactura", "fechavencimientofactura", "fechapagofactura",
	"estadointerno", "estadodelcaso", "observaciones",
}

var requiredColumns = map[string]bool{"nombre": true, "corresponsal": true, "nrocasoassistravel": true}

const importDateLayout = "2006-01-02"

func headerLabel(ctx context.Context, key string) string {
	label := i18n.T(ctx, "import.headers."+key)
	if requiredColumns[key] {
		label += "*"
	}
	return label
}

func writeHeaderRow(ctx context.Context, f *excelize.File, sheet string, keys []string, style int) {
	for i, key := range keys {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, headerLabel(ctx, key))
	}
	last, _ := excelize.ColumnNumberToName(len(keys))
	f.SetCellStyle(sheet, "A1", last+"1", style)
	f.SetColWidth(sheet, "A", last, 20)
}

// GenerateImportTemplate builds the workbook users fill in for bulk import
func GenerateImportTemplate(ctx context.Context) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})

	// --- Instructions Sheet ---
	sheetInstructions := i18n.T(ctx, "import.sheets.instructions")
	f.SetSheetName("Sheet1", sheetInstructions)
	f.SetCellValue(sheetInstructions, "A1", i18n.T(ctx, "import.instructions.title"))
	f.SetCellStyle(sheetInstructions, "A1", "A1", titleStyle)
	for i := 1; i <= 7; i++ {
		f.SetCellValue(sheetInstructions, fmt.Sprintf("A%d", i+2), "- "+i18n.T(ctx, fmt.Sprintf("import.instructions.line_%d", i)))
	}
	f.SetCellValue(sheetInstructions, "A10", i18n.T(ctx, "import.instructions.estados")+" "+strings.Join(models.EstadosInternos, ", "))
	f.SetCellValue(sheetInstructions, "A11", i18n.T(ctx, "import.instructions.monedas")+" "+strings.Join(models.Monedas, ", "))
	f.SetColWidth(sheetInstructions, "A", "A", 100)

	// --- Corresponsales Sheet ---
	sheetCorresponsales := i18n.T(ctx, "import.sheets.corresponsales")
	f.NewSheet(sheetCorresponsales)
	writeHeaderRow(ctx, f, sheetCorresponsales, corresponsalColumns, headerStyle)
	f.SetSheetRow(sheetCorresponsales, "A2", &[]interface{}{
		"Andes Salud", "María Pérez", "ops@andessalud.com", "+56 2 2345 6789", "Av. Providencia 123", "Chile", "",
	})

	// --- Casos Sheet ---
	sheetCasos := i18n.T(ctx, "import.sheets.casos")
	f.NewSheet(sheetCasos)
	writeHeaderRow(ctx, f, sheetCasos, casoColumnKeys, headerStyle)
	f.SetSheetRow(sheetCasos, "A2", &[]interface{}{
		"Andes Salud", "AT-0001", "AS-778", time.Now().Format(importDateLayout), "Chile", models.InformeMedicoSi,
		50, 320, 295000, "CLP", 0,
		"si", "F-0001", time.Now().Format(importDateLayout), "", "",
		models.EstadoActivo, "", "",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// cell returns the trimmed value at index i of row, or ""
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ParseAmount accepts "1234.5", "1,234.50", "1.234,50" and "1234,5". When
// both separators appear the last one is the decimal mark. A lone separator
// followed by groups of exactly three digits ("1,234", "1.234.567") is read
// as thousands grouping.
func ParseAmount(s string) (*float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return nil, nil
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma > dot:
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case comma >= 0 && dot > comma:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && thousandsGrouped(s, ","):
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1 && thousandsGrouped(s, "."):
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return &v, nil
}

// thousandsGrouped reports whether sep splits s into a leading group of one
// to three digits (not a bare zero) followed by groups of exactly three.
func thousandsGrouped(s, sep string) bool {
	parts := strings.Split(strings.TrimLeft(s, "+-"), sep)
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 || parts[0] == "0" {
		return false
	}
	for i, p := range parts {
		if i > 0 && len(p) != 3 {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

var dateLayouts = []string{importDateLayout, "02/01/2006", "01-02-06", "2006-01-02 15:04:05"}

// ParseDate accepts ISO dates, dd/mm/yyyy and the default excel date format
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

func parseYesNo(s string) bool {
	switch strings.ToLower(s) {
	case "si", "sí", "yes", "true", "1", "x":
		return true
	}
	return false
}

// parseCasoRow maps one Casos sheet row onto a caso. The corresponsal name
// is returned separately for resolution.
func parseCasoRow(row []string) (string, models.Caso, error) {
	var c models.Caso
	var problems []string

	amount := func(i int) *float64 {
		v, err := ParseAmount(cell(row, i))
		if err != nil {
			problems = append(problems, err.Error())
		}
		return v
	}
	date := func(i int) *time.Time {
		v, err := ParseDate(cell(row, i))
		if err != nil {
			problems = append(problems, err.Error())
		}
		return v
	}

	nombre := cell(row, 0)
	c.NroCasoAssistravel = cell(row, 1)
	c.NroCasoCorresponsal = optional(cell(row, 2))
	c.FechaDeInicio = date(3)
	c.Pais = optional(cell(row, 4))
	if parseYesNo(cell(row, 5)) {
		c.InformeMedico = models.InformeMedicoSi
	}
	c.Fee = amount(6)
	c.CostoUSD = amount(7)
	c.CostoMonedaLocal = amount(8)
	if moneda := strings.ToUpper(cell(row, 9)); moneda != "" {
		c.SimboloMoneda = &moneda
	}
	c.MontoAgregado = amount(10)
	c.TieneFactura = parseYesNo(cell(row, 11))
	c.NroFactura = optional(cell(row, 12))
	c.FechaEmisionFactura = date(13)
	c.FechaVencimientoFactura = date(14)
	c.FechaPagoFactura = date(15)
	c.EstadoInterno = strings.ToLower(cell(row, 16))
	c.EstadoDelCaso = optional(cell(row, 17))
	c.Observaciones = optional(cell(row, 18))

	if nombre == "" {
		problems = append(problems, "corresponsal is required")
	}
	if len(problems) > 0 {
		return nombre, c, errors.New(strings.Join(problems, "; "))
	}
	return nombre, c, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ImportWorkbook reads the Corresponsales and Casos sheets and stores them
// for ownerID inside one transaction. Corresponsales are matched by name,
// case-insensitively, against existing ones and earlier rows. Cases link to
// corresponsales by name. Invalid rows are reported and skipped.
func ImportWorkbook(db *gorm.DB, ownerID string, file io.Reader) (*ImportResult, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < 3 {
		return nil, ErrInvalidWorkbook
	}

	corresponsalRows, err := f.GetRows(sheets[1])
	if err != nil {
		return nil, fmt.Errorf("failed to read corresponsales sheet: %w", err)
	}
	casoRows, err := f.GetRows(sheets[2])
	if err != nil {
		return nil, fmt.Errorf("failed to read casos sheet: %w", err)
	}

	result := &ImportResult{Errors: []string{}}

	err = db.Transaction(func(tx *gorm.DB) error {
		existing, err := ListCorresponsales(tx, ownerID, OrderByNombre)
		if err != nil {
			return err
		}
		nameToID := make(map[string]string, len(existing))
		for _, c := range existing {
			nameToID[strings.ToLower(c.Nombre)] = c.ID
		}

		// --- Phase 1: Corresponsales ---
		var newCorresponsales []models.Corresponsal
		pending := make(map[string]bool)
		for i, row := range corresponsalRows {
			if i == 0 || isBlankRow(row) {
				continue
			}
			result.TotalProcessed++

			c := models.Corresponsal{
				Nombre:            cell(row, 0),
				ContactoPrincipal: optional(cell(row, 1)),
				EmailContacto:     optional(cell(row, 2)),
				TelefonoContacto:  optional(cell(row, 3)),
				Direccion:         optional(cell(row, 4)),
				Pais:              optional(cell(row, 5)),
				Observaciones:     optional(cell(row, 6)),
			}
			SanitizeCorresponsal(&c)
			if err := ValidateCorresponsal(&c); err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d (Corresponsal): %v", i+1, err))
				continue
			}

			key := strings.ToLower(c.Nombre)
			if _, ok := nameToID[key]; ok || pending[key] {
				result.CorresponsalesMatched++
				continue
			}
			pending[key] = true
			newCorresponsales = append(newCorresponsales, c)
		}

		if err := CreateCorresponsales(tx, ownerID, newCorresponsales); err != nil {
			return err
		}
		for _, c := range newCorresponsales {
			nameToID[strings.ToLower(c.Nombre)] = c.ID
		}
		result.CorresponsalesCreated = len(newCorresponsales)

		// --- Phase 2: Casos ---
		var newCasos []models.Caso
		for i, row := range casoRows {
			if i == 0 || isBlankRow(row) {
				continue
			}
			result.TotalProcessed++

			nombre, c, err := parseCasoRow(row)
			if err == nil {
				id, ok := nameToID[strings.ToLower(SanitizeText(nombre))]
				if !ok {
					err = fmt.Errorf("corresponsal %q not found", nombre)
				}
				c.CorresponsalID = id
			}
			if err == nil {
				SanitizeCaso(&c)
				err = ValidateCaso(&c)
			}
			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d (Caso): %v", i+1, err))
				continue
			}
			newCasos = append(newCasos, c)
		}

		if err := CreateCasos(tx, ownerID, newCasos); err != nil {
			return err
		}
		result.CasosCreated = len(newCasos)

		if result.FailedCount > 0 && result.CasosCreated == 0 && result.CorresponsalesCreated == 0 {
			return ErrNothingImported
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNothingImported) {
			return result, err
		}
		log.Printf("[IMPORT] Import failed for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("failed to import workbook: %w", err)
	}

	log.Printf("[IMPORT] Owner %s imported %d corresponsales (%d matched) and %d casos, %d rows failed",
		ownerID, result.CorresponsalesCreated, result.CorresponsalesMatched, result.CasosCreated, result.FailedCount)
	return result, nil
}

// ArchiveWorkbook stores the uploaded workbook for later reference
func ArchiveWorkbook(ctx context.Context, storage StorageProvider, ownerID, filename string, content []byte) (string, error) {
	if storage == nil {
		return "", fmt.Errorf("storage not initialized")
	}
	key := GenerateImportArchiveKey(ownerID, filename)
	if _, err := storage.UploadReader(ctx, bytes.NewReader(content), key, XLSXContentType, int64(len(content))); err != nil {
		return "", err
	}
	return key, nil
}
