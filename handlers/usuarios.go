package handlers

import (
	"errors"
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

// UsuariosHandler lists every identity with its role
func UsuariosHandler(c echo.Context) error {
	users, err := Auth.ListUsers(c.Request().Context())
	if err != nil {
		log.Printf("[AUTH] Listing users failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}
	return render(c, pages.UsuariosPage(users))
}

// SetRoleHandler assigns a role, creating the profile when missing. Live
// sessions of that user pick up the change through USER_UPDATED.
func SetRoleHandler(c echo.Context) error {
	id := c.Param("id")
	role := models.Role(c.FormValue("role"))

	var user models.User
	if err := db.DB.Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, t(c, "common.not_found"))
	}

	var previous models.Role
	if user.Profile != nil {
		previous = user.Profile.Role
	}

	profile, err := Auth.SetProfileRole(c.Request().Context(), id, role)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		log.Printf("[AUTH] Setting role of %s failed: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, t(c, "common.error"))
	}
	user.Profile = profile

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEntry{
		Action:       models.AuditActionRoleChange,
		ResourceType: models.AuditResourceUser,
		ResourceID:   id,
		ResourceName: user.Email,
		Description:  "Role changed to " + string(role),
		OldValues:    map[string]string{"role": string(previous)},
		NewValues:    map[string]string{"role": string(role)},
	})

	if isHTMX(c) {
		return render(c, partials.UsuarioRow(user, t(c, "usuarios.updated")))
	}
	return c.Redirect(http.StatusSeeOther, "/usuarios")
}
