package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/orelvisrguez/assistravel/models"

	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	UserID    string
	UserEmail string
	UserRole  string
	IPAddress string
	UserAgent string
}

// AuditEntry describes one audited operation
type AuditEntry struct {
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	ResourceName string
	Description  string
	OldValues    interface{}
	NewValues    interface{}
}

var auditWrites sync.WaitGroup

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(db *gorm.DB, ctx AuditContext, entry AuditEntry) {
	auditWrites.Add(1)
	go func() {
		defer auditWrites.Done()

		auditLog := models.AuditLog{
			UserID:       ptrIfNotEmpty(ctx.UserID),
			UserEmail:    ctx.UserEmail,
			UserRole:     ctx.UserRole,
			ResourceType: entry.ResourceType,
			ResourceID:   entry.ResourceID,
			ResourceName: entry.ResourceName,
			Action:       entry.Action,
			Description:  entry.Description,
			OldValues:    marshalAuditValues(entry.OldValues),
			NewValues:    marshalAuditValues(entry.NewValues),
			IPAddress:    ctx.IPAddress,
			UserAgent:    ctx.UserAgent,
		}

		if err := db.Create(&auditLog).Error; err != nil {
			log.Printf("[AUDIT] Failed to create audit log: %v", err)
		}
	}()
}

// WaitForAuditWrites blocks until pending audit writes finish
func WaitForAuditWrites() {
	auditWrites.Wait()
}

func marshalAuditValues(v interface{}) string {
	if v == nil {
		return ""
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(bytes)
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetResourceAuditHistory retrieves the owner's audit history for a resource
func GetResourceAuditHistory(db *gorm.DB, ownerID, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Scopes(OwnerScope(ownerID)).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// LogSecurityEvent logs security-related events to the database and standard log
func LogSecurityEvent(db *gorm.DB, ctx AuditContext, eventType, details string) {
	log.Printf("[SECURITY] %s | User: %s | IP: %s | Details: %s", eventType, ctx.UserEmail, ctx.IPAddress, details)

	LogAuditEvent(db, ctx, AuditEntry{
		Action:       models.AuditActionSecurity,
		ResourceType: models.AuditResourceSecurity,
		ResourceID:   eventType,
		Description:  details,
	})
}
