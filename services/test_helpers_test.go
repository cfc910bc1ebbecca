package services

import (
	"testing"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an isolated shared-cache in-memory database so async
// writers (audit log) see the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	// shared-cache table locks ignore busy_timeout; serialize writers instead
	sqlDB, err := testDB.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = testDB.AutoMigrate(models.All()...)
	assert.NoError(t, err)

	return testDB
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:   "test",
		AppURL:        "http://localhost:8080",
		SessionSecret: "test-secret-with-enough-entropy-0123456789",
		EmailTestMode: true,
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

// createConfirmedUser inserts a confirmed identity and, when role is not
// empty, its profile.
func createConfirmedUser(t *testing.T, database *gorm.DB, email, password string, role models.Role) *models.User {
	hash, err := HashPassword(password)
	assert.NoError(t, err)

	now := time.Now()
	user := &models.User{Email: email, Password: hash, ConfirmedAt: &now}
	assert.NoError(t, database.Create(user).Error)

	if role != "" {
		assert.NoError(t, database.Create(&models.UserProfile{ID: user.ID, Email: email, Role: role}).Error)
	}
	return user
}
