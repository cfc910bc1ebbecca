package middleware

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFileHash(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "style.css")
	assert.NoError(t, os.WriteFile(tmpFile, []byte("body { color: red; }"), 0644))

	hash := computeFileHash(tmpFile)
	assert.Len(t, hash, 8)
	assert.Equal(t, hash, computeFileHash(tmpFile))

	assert.Equal(t, "", computeFileHash("non_existent_file.css"))
}

func TestGetVersionsDefault(t *testing.T) {
	// Either a computed hash or the "1" fallback, never empty
	assert.NotEmpty(t, GetCSSVersion())
	assert.NotEmpty(t, GetAppJSVersion())
}
