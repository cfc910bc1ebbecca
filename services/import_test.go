package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/orelvisrguez/assistravel/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook returns a three-sheet workbook with the given data rows under
// a header row.
func buildWorkbook(t *testing.T, corresponsales, casos [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Instrucciones")
	f.NewSheet("Corresponsales")
	f.NewSheet("Casos")

	write := func(sheet string, rows [][]interface{}) {
		f.SetSheetRow(sheet, "A1", &[]interface{}{"header"})
		for i, row := range rows {
			cellName, _ := excelize.CoordinatesToCellName(1, i+2)
			r := row
			assert.NoError(t, f.SetSheetRow(sheet, cellName, &r))
		}
	}
	write("Corresponsales", corresponsales)
	write("Casos", casos)

	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)
	return buf
}

func casoRow(corresponsal, nro string, extra map[int]interface{}) []interface{} {
	row := make([]interface{}, len(casoColumnKeys))
	for i := range row {
		row[i] = ""
	}
	row[0] = corresponsal
	row[1] = nro
	for i, v := range extra {
		row[i] = v
	}
	return row
}

func TestGenerateImportTemplate(t *testing.T) {
	buf, err := GenerateImportTemplate(context.Background())
	assert.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, []string{"Instrucciones", "Corresponsales", "Casos"}, sheets)

	header, err := f.GetRows("Casos")
	assert.NoError(t, err)
	assert.Len(t, header[0], len(casoColumnKeys))
	assert.Contains(t, header[0][0], "*")

	amounts, err := f.GetCellValue("Instrucciones", "A9")
	assert.NoError(t, err)
	assert.Contains(t, amounts, "1,234")
}

func TestImportTemplateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()

	buf, err := GenerateImportTemplate(context.Background())
	assert.NoError(t, err)

	result, err := ImportWorkbook(db, owner, buf)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.CorresponsalesCreated)
	assert.Equal(t, 1, result.CasosCreated)
	assert.Zero(t, result.FailedCount)

	casos, err := ListCasos(db, owner)
	assert.NoError(t, err)
	if assert.Len(t, casos, 1) {
		c := casos[0]
		assert.Equal(t, "AT-0001", c.NroCasoAssistravel)
		assert.True(t, c.HasInformeMedico())
		assert.True(t, c.IsFacturaPendiente())
		if assert.NotNil(t, c.Total) {
			assert.InDelta(t, 370.0, *c.Total, 0.001)
		}
	}
}

func TestImportWorkbook(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()
	existing := seedCorresponsal(t, db, owner, "Andes Salud")

	buf := buildWorkbook(t,
		[][]interface{}{
			{"ANDES SALUD", "", "", "", "", "Chile"}, // matches existing
			{"Pampa Assist", "Juan", "ops@pampa.com", "", "", "Argentina"},
			{"pampa assist"}, // duplicate within sheet
			{"", "sin nombre"},
		},
		[][]interface{}{
			casoRow("Andes Salud", "AT-1", map[int]interface{}{6: 40, 7: "1.234,5", 9: "usd", 3: "15/03/2024"}),
			casoRow("Pampa Assist", "AT-2", map[int]interface{}{11: "si", 16: "completado"}),
			casoRow("Desconocido", "AT-3", nil),
			casoRow("Pampa Assist", "", nil),
			casoRow("Pampa Assist", "AT-5", map[int]interface{}{6: "abc"}),
			casoRow("Pampa Assist", "AT-6", map[int]interface{}{9: "JPY"}),
		},
	)

	result, err := ImportWorkbook(db, owner, buf)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.CorresponsalesCreated)
	assert.Equal(t, 2, result.CorresponsalesMatched)
	assert.Equal(t, 2, result.CasosCreated)
	assert.Equal(t, 5, result.FailedCount)
	assert.Len(t, result.Errors, 5)
	assert.Equal(t, 10, result.TotalProcessed)

	corresponsales, err := ListCorresponsales(db, owner, OrderByNombre)
	assert.NoError(t, err)
	assert.Len(t, corresponsales, 2)

	casos, err := ListCasos(db, owner)
	assert.NoError(t, err)
	assert.Len(t, casos, 2)

	byNro := map[string]models.Caso{}
	for _, c := range casos {
		byNro[c.NroCasoAssistravel] = c
	}
	at1 := byNro["AT-1"]
	assert.Equal(t, existing.ID, at1.CorresponsalID)
	assert.Equal(t, "USD", *at1.SimboloMoneda)
	assert.InDelta(t, 1274.5, *at1.Total, 0.001)
	assert.Equal(t, 2024, at1.FechaDeInicio.Year())

	at2 := byNro["AT-2"]
	assert.Equal(t, models.EstadoCompletado, at2.EstadoInterno)
	assert.True(t, at2.TieneFactura)
	assert.Nil(t, at2.Total)
}

func TestImportWorkbookAllRowsFailedRollsBack(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()

	buf := buildWorkbook(t, nil, [][]interface{}{casoRow("Nadie", "AT-1", nil)})

	result, err := ImportWorkbook(db, owner, buf)
	assert.ErrorIs(t, err, ErrNothingImported)
	if assert.NotNil(t, result) {
		assert.Equal(t, 1, result.FailedCount)
	}

	casos, _ := ListCasos(db, owner)
	assert.Empty(t, casos)
}

func TestImportWorkbookInvalidFiles(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New().String()

	_, err := ImportWorkbook(db, owner, bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)

	f := excelize.NewFile()
	buf, _ := f.WriteToBuffer()
	f.Close()
	_, err = ImportWorkbook(db, owner, buf)
	assert.ErrorIs(t, err, ErrInvalidWorkbook)

	_, err = ImportWorkbook(db, "", buildWorkbook(t, nil, nil))
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]float64{
		"1234.5":     1234.5,
		"1,234.50":   1234.5,
		"1234,5":     1234.5,
		"1.234,50":   1234.5,
		" 12 000 ":   12000,
		"1,234":      1234,
		"12,345,678": 12345678,
		"1.234.567":  1234567,
		"0,125":      0.125,
		"1,2345":     1.2345,
		"-1,500":     -1500,
	}
	for in, want := range tests {
		got, err := ParseAmount(in)
		assert.NoError(t, err, in)
		assert.InDelta(t, want, *got, 0.001, in)
	}

	got, err := ParseAmount("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseAmount("doce")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-15", "15/03/2024", "03-15-24"} {
		d, err := ParseDate(in)
		assert.NoError(t, err, in)
		assert.Equal(t, 15, d.Day(), in)
		assert.Equal(t, 3, int(d.Month()), in)
	}

	_, err := ParseDate("mañana")
	assert.Error(t, err)
}

func TestArchiveWorkbook(t *testing.T) {
	storage := NewLocalStorage(t.TempDir())

	key, err := ArchiveWorkbook(context.Background(), storage, "owner-1", "datos.xlsx", []byte("PK"))
	assert.NoError(t, err)
	assert.Contains(t, key, "imports/owner-1/")

	_, err = ArchiveWorkbook(context.Background(), nil, "owner-1", "datos.xlsx", []byte("PK"))
	assert.Error(t, err)
}
