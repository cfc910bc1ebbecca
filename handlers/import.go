package handlers

import (
	"bytes"
	"errors"
	"fmt"
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

// ImportPageHandler renders the upload page
func ImportPageHandler(c echo.Context) error {
	return render(c, pages.ImportPage(nil))
}

// ImportTemplateHandler downloads the empty import workbook
func ImportTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateImportTemplate(c.Request().Context())
	if err != nil {
		log.Printf("[IMPORT] Template generation failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="plantilla_importacion.xlsx"`)
	return c.Blob(http.StatusOK, services.XLSXContentType, buf.Bytes())
}

// importResponse renders the outcome as a fragment for HTMX or inside the page
func importResponse(c echo.Context, status int, out partials.ImportOutcome) error {
	if isHTMX(c) {
		return renderStatus(c, status, partials.ImportResult(out))
	}
	return renderStatus(c, status, pages.ImportPage(&out))
}

// ImportUploadHandler imports an uploaded workbook and archives it
func ImportUploadHandler(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return importResponse(c, http.StatusBadRequest, partials.ImportOutcome{Error: t(c, "import.missing_file")})
	}
	out := partials.ImportOutcome{FileName: fileHeader.Filename, FileSize: fileHeader.Size}

	content, err := services.ReadWorkbookUpload(fileHeader)
	if err != nil {
		log.Printf("[IMPORT] Upload %s from owner %s rejected: %v", fileHeader.Filename, ownerID, err)
		out.Error = t(c, "import.invalid_file")
		status := http.StatusUnprocessableEntity
		if errors.Is(err, services.ErrUploadTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return importResponse(c, status, out)
	}

	result, err := services.ImportWorkbook(db.DB, ownerID, bytes.NewReader(content))
	out.Result = result
	switch {
	case errors.Is(err, services.ErrNothingImported):
		out.Error = t(c, "import.nothing_imported")
		return importResponse(c, http.StatusUnprocessableEntity, out)
	case err != nil:
		log.Printf("[IMPORT] %s from owner %s rejected: %v", fileHeader.Filename, ownerID, err)
		out.Result = nil
		out.Error = t(c, "import.invalid_file")
		return importResponse(c, http.StatusUnprocessableEntity, out)
	}

	if key, err := services.ArchiveWorkbook(c.Request().Context(), services.Storage, ownerID, fileHeader.Filename, content); err != nil {
		log.Printf("[IMPORT] Archiving %s failed: %v", fileHeader.Filename, err)
	} else {
		result.ArchiveKey = key
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionImport,
		ResourceType: models.AuditResourceImport,
		ResourceID:   result.ArchiveKey,
		ResourceName: fileHeader.Filename,
		Description: fmt.Sprintf("Imported %d corresponsales and %d casos (%d failed)",
			result.CorresponsalesCreated, result.CasosCreated, result.FailedCount),
		NewValues: result,
	})
	return importResponse(c, http.StatusOK, out)
}
