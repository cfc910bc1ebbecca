package db

import (
	"net/url"
	"path/filepath"
	"testing"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	t.Run("Libsql", func(t *testing.T) {
		driver, dsn, err := BuildDSN("libsql://asistitravel-org.turso.io", "secret-token")
		assert.NoError(t, err)
		assert.Equal(t, "libsql", driver)

		u, err := url.Parse(dsn)
		assert.NoError(t, err)
		assert.Equal(t, "secret-token", u.Query().Get("authToken"))
		assert.Equal(t, "asistitravel-org.turso.io", u.Host)
	})

	t.Run("LocalFile", func(t *testing.T) {
		driver, dsn, err := BuildDSN("file:db/app.db", "unused")
		assert.NoError(t, err)
		assert.Equal(t, "sqlite3", driver)
		assert.Equal(t, "file:db/app.db?_journal_mode=WAL", dsn)
	})

	t.Run("LocalFileWithParams", func(t *testing.T) {
		_, dsn, err := BuildDSN("file:app.db?_busy_timeout=5000", "unused")
		assert.NoError(t, err)
		assert.Equal(t, "file:app.db?_busy_timeout=5000&_journal_mode=WAL", dsn)
	})

	t.Run("UnsupportedScheme", func(t *testing.T) {
		_, _, err := BuildDSN("postgres://localhost/app", "token")
		assert.Error(t, err)
	})
}

func TestInitializeLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	cfg := &config.Config{Environment: "test", RepositoryURL: "file:" + path, RepositoryKey: "local"}

	err := Initialize(cfg)
	assert.NoError(t, err)
	defer Close()

	type probe struct {
		ID   uint
		Name string
	}
	assert.NoError(t, AutoMigrate(&probe{}))
	assert.NoError(t, DB.Create(&probe{Name: "ok"}).Error)

	var count int64
	DB.Model(&probe{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
