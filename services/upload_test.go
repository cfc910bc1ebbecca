package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createMockFileHeader(filename string, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", filename)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(32 * 1024 * 1024)
	return form.File["file"][0]
}

func TestReadWorkbookUpload(t *testing.T) {
	tpl, err := GenerateImportTemplate(context.Background())
	assert.NoError(t, err)

	t.Run("Valid workbook", func(t *testing.T) {
		content, err := ReadWorkbookUpload(createMockFileHeader("datos.XLSX", tpl.Bytes()))
		assert.NoError(t, err)
		assert.Equal(t, tpl.Len(), len(content))
	})

	t.Run("Wrong extension", func(t *testing.T) {
		_, err := ReadWorkbookUpload(createMockFileHeader("datos.csv", tpl.Bytes()))
		assert.ErrorIs(t, err, ErrNotAWorkbook)
	})

	t.Run("Not a zip archive", func(t *testing.T) {
		_, err := ReadWorkbookUpload(createMockFileHeader("datos.xlsx", []byte("nombre;pais\n")))
		assert.ErrorIs(t, err, ErrNotAWorkbook)
	})

	t.Run("Too large", func(t *testing.T) {
		big := append([]byte("PK\x03\x04"), make([]byte, MaxWorkbookSize)...)
		_, err := ReadWorkbookUpload(createMockFileHeader("datos.xlsx", big))
		assert.ErrorIs(t, err, ErrUploadTooLarge)
	})
}
