package services

import (
	"encoding/json"
	"testing"

	"github.com/orelvisrguez/assistravel/models"

	"github.com/stretchr/testify/assert"
)

func TestLogAuditEvent(t *testing.T) {
	db := setupTestDB(t)
	user := createConfirmedUser(t, db, "auditor@asistitravel.com", "Asistencia2024!", models.RoleEditor)

	ctx := AuditContext{
		UserID:    user.ID,
		UserEmail: user.Email,
		UserRole:  string(models.RoleEditor),
		IPAddress: "10.0.0.1",
	}

	LogAuditEvent(db, ctx, AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: models.AuditResourceCaso,
		ResourceID:   "caso-123",
		ResourceName: "AT-123",
		Description:  "Caso actualizado",
		OldValues:    map[string]interface{}{"estadointerno": "activo"},
		NewValues:    map[string]interface{}{"estadointerno": "completado"},
	})
	WaitForAuditWrites()

	var entry models.AuditLog
	assert.NoError(t, db.First(&entry, "resource_id = ?", "caso-123").Error)
	assert.Equal(t, user.ID, *entry.UserID)
	assert.Equal(t, "auditor@asistitravel.com", entry.UserEmail)
	assert.Equal(t, models.AuditActionUpdate, entry.Action)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)

	var newVals map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(entry.NewValues), &newVals))
	assert.Equal(t, "completado", newVals["estadointerno"])

	changes := entry.Changes()
	if assert.Len(t, changes, 1) {
		assert.Equal(t, "estadointerno", changes[0].Field)
	}
}

func TestGetResourceAuditHistoryIsOwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	a := createConfirmedUser(t, db, "a@asistitravel.com", "Asistencia2024!", models.RoleAdmin)
	b := createConfirmedUser(t, db, "b@asistitravel.com", "Asistencia2024!", models.RoleAdmin)

	for _, owner := range []string{a.ID, a.ID, b.ID} {
		LogAuditEvent(db, AuditContext{UserID: owner}, AuditEntry{
			Action:       models.AuditActionCreate,
			ResourceType: models.AuditResourceCorresponsal,
			ResourceID:   "corr-1",
		})
	}
	WaitForAuditWrites()

	history, err := GetResourceAuditHistory(db, a.ID, models.AuditResourceCorresponsal, "corr-1")
	assert.NoError(t, err)
	assert.Len(t, history, 2)

	none, err := GetResourceAuditHistory(db, "", models.AuditResourceCorresponsal, "corr-1")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestLogSecurityEvent(t *testing.T) {
	db := setupTestDB(t)

	LogSecurityEvent(db, AuditContext{UserEmail: "x@y.com", IPAddress: "1.2.3.4"}, "LOGIN_FAILED", "bad password")
	WaitForAuditWrites()

	var entry models.AuditLog
	assert.NoError(t, db.First(&entry, "resource_type = ?", models.AuditResourceSecurity).Error)
	assert.Equal(t, models.AuditActionSecurity, entry.Action)
	assert.Equal(t, "LOGIN_FAILED", entry.ResourceID)
	assert.Nil(t, entry.UserID)
}
