package handlers

import (
	"log"
	"net/http"

	"github.com/orelvisrguez/assistravel/db"
	"github.com/orelvisrguez/assistravel/middleware"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/templates/pages"
	"github.com/orelvisrguez/assistravel/templates/partials"

	"github.com/labstack/echo/v4"
)

// CorresponsalesHandler renders the correspondents page; HTMX searches get
// only the results block.
func CorresponsalesHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	view, err := services.LoadCorresponsalesView(db.DB, ownerID, c.QueryParam("q"))
	if err != nil {
		log.Printf("[CORRESPONSALES] List failed for owner %s: %v", ownerID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}

	if isHTMX(c) && c.Request().Header.Get("HX-Target") == "corresponsales-results" {
		return render(c, partials.CorresponsalesResults(view))
	}
	return render(c, pages.CorresponsalesPage(view))
}

// CorresponsalDetailHandler renders one correspondent with its cases
func CorresponsalDetailHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	id := c.Param("id")

	detail, err := services.LoadCorresponsalDetail(db.DB, ownerID, id)
	if err != nil {
		return notFoundOr(c, err, "load corresponsal "+id)
	}

	history, err := services.GetResourceAuditHistory(db.DB, ownerID, models.AuditResourceCorresponsal, id)
	if err != nil {
		log.Printf("[AUDIT] History for corresponsal %s failed: %v", id, err)
	}
	return render(c, pages.CorresponsalDetailPage(detail, history))
}

// NewCorresponsalHandler renders the empty form
func NewCorresponsalHandler(c echo.Context) error {
	return render(c, pages.CorresponsalFormPage(pages.CorresponsalForm{Corresponsal: models.Corresponsal{}}))
}

// CreateCorresponsalHandler stores a new correspondent for the current user
func CreateCorresponsalHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	input := bindCorresponsal(c)

	if err := services.ValidateCorresponsal(input); err != nil {
		return renderStatus(c, http.StatusUnprocessableEntity, pages.CorresponsalFormPage(pages.CorresponsalForm{
			Corresponsal: *input, Error: t(c, "common.required") + ": " + t(c, "corresponsales.fields.nombre"),
		}))
	}
	if err := services.CreateCorresponsal(db.DB, ownerID, input); err != nil {
		log.Printf("[CORRESPONSALES] Create failed for owner %s: %v", ownerID, err)
		return renderStatus(c, http.StatusInternalServerError, pages.CorresponsalFormPage(pages.CorresponsalForm{
			Corresponsal: *input, Error: t(c, "common.error"),
		}))
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: models.AuditResourceCorresponsal,
		ResourceID:   input.ID,
		ResourceName: input.Nombre,
		Description:  "Corresponsal created",
		NewValues:    input,
	})
	return redirectTo(c, "/corresponsales/"+input.ID)
}

// EditCorresponsalHandler renders the form filled with the stored values
func EditCorresponsalHandler(c echo.Context) error {
	existing, err := services.GetCorresponsal(db.DB, middleware.GetOwnerID(c), c.Param("id"))
	if err != nil {
		return notFoundOr(c, err, "load corresponsal "+c.Param("id"))
	}
	return render(c, pages.CorresponsalFormPage(pages.CorresponsalForm{Corresponsal: *existing}))
}

// UpdateCorresponsalHandler saves the edited fields
func UpdateCorresponsalHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	id := c.Param("id")

	before, err := services.GetCorresponsal(db.DB, ownerID, id)
	if err != nil {
		return notFoundOr(c, err, "load corresponsal "+id)
	}

	input := bindCorresponsal(c)
	input.ID = id
	if err := services.ValidateCorresponsal(input); err != nil {
		return renderStatus(c, http.StatusUnprocessableEntity, pages.CorresponsalFormPage(pages.CorresponsalForm{
			Corresponsal: *input, Error: t(c, "common.required") + ": " + t(c, "corresponsales.fields.nombre"),
		}))
	}

	updated, err := services.UpdateCorresponsal(db.DB, ownerID, id, input)
	if err != nil {
		return notFoundOr(c, err, "update corresponsal "+id)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: models.AuditResourceCorresponsal,
		ResourceID:   id,
		ResourceName: updated.Nombre,
		Description:  "Corresponsal updated",
		OldValues:    before,
		NewValues:    updated,
	})
	return redirectTo(c, "/corresponsales/"+id)
}

// DeleteCorresponsalHandler removes a correspondent after explicit
// confirmation. Its cases stay and show the not-found label.
func DeleteCorresponsalHandler(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return echo.NewHTTPError(http.StatusBadRequest, t(c, "common.confirm_delete"))
	}

	ownerID := middleware.GetOwnerID(c)
	id := c.Param("id")

	existing, err := services.GetCorresponsal(db.DB, ownerID, id)
	if err != nil {
		return notFoundOr(c, err, "load corresponsal "+id)
	}
	remaining, err := services.CountCasosForCorresponsal(db.DB, ownerID, id)
	if err != nil {
		log.Printf("[CORRESPONSALES] Counting casos of %s failed: %v", id, err)
	}
	if err := services.DeleteCorresponsal(db.DB, ownerID, id); err != nil {
		return notFoundOr(c, err, "delete corresponsal "+id)
	}
	if remaining > 0 {
		log.Printf("[CORRESPONSALES] Deleted %s leaving %d casos without corresponsal", id, remaining)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionDelete,
		ResourceType: models.AuditResourceCorresponsal,
		ResourceID:   id,
		ResourceName: existing.Nombre,
		Description:  "Corresponsal deleted",
		OldValues:    existing,
	})
	return redirectTo(c, "/corresponsales")
}
