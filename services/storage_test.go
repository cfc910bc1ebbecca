package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "PK fake workbook"
	key := "imports/owner-1/libro.xlsx"
	size := int64(len(content))

	t.Run("UploadReader creates file", func(t *testing.T) {
		result, err := storage.UploadReader(ctx, strings.NewReader(content), key, XLSXContentType, size)
		assert.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, "libro.xlsx", result.FileName)
		assert.Equal(t, size, result.FileSize)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves file content", func(t *testing.T) {
		reader, contentType, err := storage.Get(ctx, key)
		assert.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
		assert.Equal(t, XLSXContentType, contentType)
	})

	t.Run("Get unknown extension", func(t *testing.T) {
		_, err := storage.UploadReader(ctx, strings.NewReader("x"), "misc/notes.txt", "text/plain", 1)
		assert.NoError(t, err)
		reader, contentType, err := storage.Get(ctx, "misc/notes.txt")
		assert.NoError(t, err)
		reader.Close()
		assert.Equal(t, "application/octet-stream", contentType)
	})

	t.Run("Delete removes file and tolerates missing", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, key))
		_, err := os.Stat(filepath.Join(tempDir, key))
		assert.True(t, os.IsNotExist(err))

		assert.NoError(t, storage.Delete(ctx, key))
	})

	t.Run("signed URL is the local path", func(t *testing.T) {
		signed, err := storage.GetSignedURL(ctx, "some/key", time.Hour)
		assert.NoError(t, err)
		assert.Equal(t, "/"+filepath.ToSlash(filepath.Join(tempDir, "some/key")), signed)
	})

	assert.Equal(t, "local", storage.Name())
}

func TestKeyGeneration(t *testing.T) {
	t.Run("GenerateStorageKey", func(t *testing.T) {
		key := GenerateStorageKey("prefix", "casos.xlsx")
		assert.True(t, strings.HasPrefix(key, "prefix/"))
		assert.True(t, strings.HasSuffix(key, ".xlsx"))
		parts := strings.Split(filepath.Base(key), "_")
		assert.Len(t, parts, 2)
	})

	t.Run("GenerateImportArchiveKey", func(t *testing.T) {
		key := GenerateImportArchiveKey("owner-1", "importacion.xlsx")
		assert.True(t, strings.HasPrefix(key, "imports/owner-1/"))
		assert.True(t, strings.HasSuffix(key, ".xlsx"))
	})
}

func TestInitializeStorageFallsBackToLocal(t *testing.T) {
	prev := Storage
	defer func() { Storage = prev }()

	cfg := testConfig()
	cfg.UploadDir = t.TempDir()
	InitializeStorage(cfg)

	assert.Equal(t, "local", Storage.Name())
}
