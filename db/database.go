package db

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/orelvisrguez/assistravel/config"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the repository connection. Remote libsql endpoints go
// through the libsql driver; file: URLs use the embedded sqlite driver with WAL.
func Initialize(cfg *config.Config) error {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	driverName, dsn, err := BuildDSN(cfg.RepositoryURL, cfg.RepositoryKey)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(sqlite.New(sqlite.Config{DriverName: driverName, DSN: dsn}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to repository: %w", err)
	}

	log.Printf("Repository connection established (driver: %s)", driverName)
	return nil
}

// BuildDSN picks the sql driver for the repository URL and returns the DSN to open.
func BuildDSN(repositoryURL, authToken string) (string, string, error) {
	u, err := url.Parse(repositoryURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "libsql", "https", "http", "wss", "ws":
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
		return "libsql", u.String(), nil
	case "file":
		dsn := repositoryURL
		if !strings.Contains(dsn, "_journal_mode") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_journal_mode=WAL"
		}
		return "sqlite3", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported repository url scheme %q", u.Scheme)
	}
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
