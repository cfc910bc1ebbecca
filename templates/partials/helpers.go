package partials

import (
	"context"
	"fmt"
	"time"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/i18n"
)

// Helper function to format file size
func formatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Helper function to format relative time in the request locale
func formatRelativeTime(ctx context.Context, t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return i18n.T(ctx, "time.just_now")
	case duration < time.Hour:
		return i18n.T(ctx, "time.minutes_ago", map[string]interface{}{"count": int(duration.Minutes())})
	case duration < 24*time.Hour:
		return i18n.T(ctx, "time.hours_ago", map[string]interface{}{"count": int(duration.Hours())})
	case duration < 7*24*time.Hour:
		return i18n.T(ctx, "time.days_ago", map[string]interface{}{"count": int(duration.Hours() / 24)})
	default:
		return t.Format("02/01/2006")
	}
}

// ImportOutcome is what the import page shows after an upload
type ImportOutcome struct {
	FileName string
	FileSize int64
	Result   *services.ImportResult
	Error    string
}

func (o ImportOutcome) fileLabel() string {
	return o.FileName + " (" + formatFileSize(o.FileSize) + ")"
}

var casosColumns = []string{
	"casos.fields.nrocasoassistravel", "casos.fields.corresponsal", "casos.fields.pais",
	"casos.fields.fechadeinicio", "casos.fields.total", "casos.fields.estadointerno",
	"casos.fields.factura", "common.actions",
}

func corresponsalCellClass(found bool) string {
	if found {
		return "px-4 py-3 text-sm"
	}
	return "px-4 py-3 text-sm italic text-gray-400"
}

// deleteConfirm warns about linked cases before a correspondent is removed
func deleteConfirm(ctx context.Context, casos int) string {
	if casos == 0 {
		return ""
	}
	return i18n.T(ctx, "corresponsales.delete_with_casos", map[string]interface{}{"count": casos})
}

func usuarioRole(user models.User) models.Role {
	if user.Profile == nil {
		return ""
	}
	return user.Profile.Role
}

func usuarioRowID(user models.User) string {
	return "usuario-" + user.ID
}
