package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxWorkbookSize caps uploaded import workbooks
const MaxWorkbookSize = 10 * 1024 * 1024 // 10MB

var (
	ErrUploadTooLarge = errors.New("file size exceeds maximum allowed size of 10MB")
	ErrNotAWorkbook   = errors.New("only .xlsx workbooks are allowed")
)

// xlsx files are zip archives
var zipMagic = []byte("PK\x03\x04")

// ReadWorkbookUpload checks extension, size and signature of an uploaded
// workbook and returns its content.
func ReadWorkbookUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	if fileHeader.Size > MaxWorkbookSize {
		return nil, ErrUploadTooLarge
	}
	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".xlsx" {
		return nil, ErrNotAWorkbook
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, MaxWorkbookSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if len(content) > MaxWorkbookSize {
		return nil, ErrUploadTooLarge
	}
	if !bytes.HasPrefix(content, zipMagic) {
		return nil, ErrNotAWorkbook
	}
	return content, nil
}
