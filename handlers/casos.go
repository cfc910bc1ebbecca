package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/db"
	"github.com/orelvisrguez/assistravel/middleware"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/templates/pages"

	"github.com/labstack/echo/v4"
)

// casoFilterFromQuery reads the list filters from the query string
func casoFilterFromQuery(c echo.Context) services.CasoFilter {
	return services.CasoFilter{
		Search:         c.QueryParam("q"),
		Estado:         c.QueryParam("estado"),
		CorresponsalID: c.QueryParam("corresponsal"),
		Pais:           c.QueryParam("pais"),
	}
}

// CasosHandler renders the cases page; HTMX filter changes get the results
// block and the refreshed export link.
func CasosHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	view, err := services.LoadCasosView(db.DB, ownerID, casoFilterFromQuery(c))
	if err != nil {
		log.Printf("[CASOS] List failed for owner %s: %v", ownerID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}

	if isHTMX(c) && c.Request().Header.Get("HX-Target") == "casos-results" {
		return render(c, pages.CasosResultsSwap(view))
	}
	return render(c, pages.CasosPage(view))
}

// loadCasoRow fetches one case with its corresponsal name resolved
func loadCasoRow(c echo.Context, id string) (*services.CasoRow, error) {
	ownerID := middleware.GetOwnerID(c)
	caso, err := services.GetCaso(db.DB, ownerID, id)
	if err != nil {
		return nil, err
	}

	var corresponsales []models.Corresponsal
	if corr, err := services.GetCorresponsal(db.DB, ownerID, caso.CorresponsalID); err == nil {
		corresponsales = append(corresponsales, *corr)
	}
	rows := services.EnrichCasos([]models.Caso{*caso}, corresponsales)
	return &rows[0], nil
}

// CasoDetailHandler renders one case with its history
func CasoDetailHandler(c echo.Context) error {
	id := c.Param("id")
	row, err := loadCasoRow(c, id)
	if err != nil {
		return notFoundOr(c, err, "load caso "+id)
	}

	history, err := services.GetResourceAuditHistory(db.DB, middleware.GetOwnerID(c), models.AuditResourceCaso, id)
	if err != nil {
		log.Printf("[AUDIT] History for caso %s failed: %v", id, err)
	}
	return render(c, pages.CasoDetailPage(*row, history))
}

// casoFormPage renders the form with the owner's correspondents to pick from
func casoFormPage(c echo.Context, status int, caso models.Caso, formErr string) error {
	ownerID := middleware.GetOwnerID(c)
	corresponsales, err := services.ListCorresponsales(db.DB, ownerID, services.OrderByNombre)
	if err != nil {
		log.Printf("[CASOS] Loading corresponsales for owner %s failed: %v", ownerID, err)
	}
	return renderStatus(c, status, pages.CasoFormPage(pages.CasoForm{
		Caso:           caso,
		Corresponsales: corresponsales,
		Error:          formErr,
	}))
}

// NewCasoHandler renders the empty form, preselecting ?corresponsal=
func NewCasoHandler(c echo.Context) error {
	return casoFormPage(c, http.StatusOK, models.Caso{CorresponsalID: c.QueryParam("corresponsal")}, "")
}

// CreateCasoHandler stores a new case for the current user
func CreateCasoHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	input, err := bindCaso(c)
	if err == nil {
		err = services.ValidateCaso(input)
	}
	if err != nil {
		return casoFormPage(c, http.StatusUnprocessableEntity, *input, err.Error())
	}

	if err := services.CreateCaso(db.DB, ownerID, input); err != nil {
		log.Printf("[CASOS] Create failed for owner %s: %v", ownerID, err)
		return casoFormPage(c, http.StatusInternalServerError, *input, t(c, "common.error"))
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: models.AuditResourceCaso,
		ResourceID:   input.ID,
		ResourceName: input.NroCasoAssistravel,
		Description:  "Caso created",
		NewValues:    input,
	})
	return redirectTo(c, "/casos/"+input.ID)
}

// EditCasoHandler renders the form filled with the stored values
func EditCasoHandler(c echo.Context) error {
	caso, err := services.GetCaso(db.DB, middleware.GetOwnerID(c), c.Param("id"))
	if err != nil {
		return notFoundOr(c, err, "load caso "+c.Param("id"))
	}
	return casoFormPage(c, http.StatusOK, *caso, "")
}

// UpdateCasoHandler saves the edited fields and recomputes the total
func UpdateCasoHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	id := c.Param("id")

	before, err := services.GetCaso(db.DB, ownerID, id)
	if err != nil {
		return notFoundOr(c, err, "load caso "+id)
	}

	input, err := bindCaso(c)
	input.ID = id
	if err == nil {
		err = services.ValidateCaso(input)
	}
	if err != nil {
		return casoFormPage(c, http.StatusUnprocessableEntity, *input, err.Error())
	}

	updated, err := services.UpdateCaso(db.DB, ownerID, id, input)
	if err != nil {
		return notFoundOr(c, err, "update caso "+id)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: models.AuditResourceCaso,
		ResourceID:   id,
		ResourceName: updated.NroCasoAssistravel,
		Description:  "Caso updated",
		OldValues:    before,
		NewValues:    updated,
	})
	return redirectTo(c, "/casos/"+id)
}

// DuplicateCasoHandler copies a case and opens the copy for editing
func DuplicateCasoHandler(c echo.Context) error {
	id := c.Param("id")
	dup, err := services.DuplicateCaso(db.DB, middleware.GetOwnerID(c), id)
	if err != nil {
		return notFoundOr(c, err, "duplicate caso "+id)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionDuplicate,
		ResourceType: models.AuditResourceCaso,
		ResourceID:   dup.ID,
		ResourceName: dup.NroCasoAssistravel,
		Description:  "Caso duplicated from " + id,
		NewValues:    dup,
	})
	return redirectTo(c, "/casos/"+dup.ID+"/edit")
}

// DeleteCasoHandler removes a case after explicit confirmation
func DeleteCasoHandler(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return echo.NewHTTPError(http.StatusBadRequest, t(c, "common.confirm_delete"))
	}

	ownerID := middleware.GetOwnerID(c)
	id := c.Param("id")

	existing, err := services.GetCaso(db.DB, ownerID, id)
	if err != nil {
		return notFoundOr(c, err, "load caso "+id)
	}
	if err := services.DeleteCaso(db.DB, ownerID, id); err != nil {
		return notFoundOr(c, err, "delete caso "+id)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionDelete,
		ResourceType: models.AuditResourceCaso,
		ResourceID:   id,
		ResourceName: existing.NroCasoAssistravel,
		Description:  "Caso deleted",
		OldValues:    existing,
	})
	return redirectTo(c, "/casos")
}

// ExportCasosHandler downloads the filtered case list as a workbook
func ExportCasosHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	view, err := services.LoadCasosView(db.DB, ownerID, casoFilterFromQuery(c))
	if err != nil {
		log.Printf("[CASOS] Export failed for owner %s: %v", ownerID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}

	buf, err := services.ExportCasos(c.Request().Context(), view.Rows, view.Corresponsales)
	if err != nil {
		log.Printf("[CASOS] Building export for owner %s failed: %v", ownerID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionExport,
		ResourceType: models.AuditResourceCaso,
		Description:  fmt.Sprintf("Exported %d casos", len(view.Rows)),
		NewValues:    view.Filter,
	})

	filename := fmt.Sprintf("casos_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, services.XLSXContentType, buf.Bytes())
}

// CasoPDFHandler renders the printable case sheet through headless Chrome
func CasoPDFHandler(c echo.Context) error {
	id := c.Param("id")
	row, err := loadCasoRow(c, id)
	if err != nil {
		return notFoundOr(c, err, "load caso "+id)
	}

	ctx := c.Request().Context()
	var body bytes.Buffer
	generated := time.Now().Format("02/01/2006 15:04")
	if err := pages.CasoPDFBody(*row, generated).Render(ctx, &body); err != nil {
		log.Printf("[CASOS] Rendering sheet for %s failed: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}

	opts := services.DefaultPDFOptions()
	if cfg, ok := c.Get("config").(*config.Config); ok {
		opts.ChromePath = cfg.ChromePath
	}

	pdf, err := services.GeneratePDF(ctx, services.WrapHTMLForPDF(row.NroCasoAssistravel, body.String()), opts)
	if err != nil {
		log.Printf("[CASOS] PDF for %s failed: %v", id, err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, t(c, "common.error"))
	}

	filename := fmt.Sprintf("caso_%s.pdf", row.NroCasoAssistravel)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
