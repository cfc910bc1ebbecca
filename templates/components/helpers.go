package components

import (
	"context"
	"strings"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/authz"
)

// Alert kinds
const (
	AlertError   = "error"
	AlertSuccess = "success"
	AlertInfo    = "info"
)

var alertClasses = map[string]string{
	AlertError:   "bg-red-50 border-red-200 text-red-700",
	AlertSuccess: "bg-green-50 border-green-200 text-green-700",
	AlertInfo:    "bg-blue-50 border-blue-200 text-blue-700",
}

const inputClass = "mt-1 w-full px-3 py-2 border border-gray-300 rounded-lg focus:ring-2 focus:ring-blue-500 focus:border-transparent"

// Field describes one labelled form control
type Field struct {
	Name     string
	Label    string
	Value    string
	Type     string
	Required bool
	List     string
	Step     string
}

func (f Field) inputType() string {
	if f.Type == "" {
		return "text"
	}
	return f.Type
}

// Option is one <option> of a Select
type Option struct {
	Value string
	Label string
}

// EstadoLabel translates a known internal state; unknown ones stay raw
func EstadoLabel(ctx context.Context, estado string) string {
	if models.IsValidEstadoInterno(estado) {
		return T(ctx, "casos.estados."+estado)
	}
	return estado
}

var facturaClasses = map[string]string{
	services.FacturaPagada:     "text-green-700",
	services.FacturaPendiente:  "text-yellow-700",
	services.FacturaSinFactura: "text-gray-400",
}

var roleClasses = map[models.Role]string{
	models.RoleAdmin:        "bg-purple-100 text-purple-800",
	models.RoleEditor:       "bg-blue-100 text-blue-800",
	models.RoleVisualizador: "bg-gray-100 text-gray-800",
}

// roleBadge returns the pill class and label; an unknown role shows "sin rol"
func roleBadge(ctx context.Context, role models.Role) (string, string) {
	if class, ok := roleClasses[role]; ok {
		return class, T(ctx, "roles."+string(role))
	}
	return "bg-red-50 text-red-700", T(ctx, "nav.sin_rol")
}

type navLink struct {
	href string
	key  string
}

func navLinks(caps authz.Capabilities) []navLink {
	links := []navLink{
		{"/corresponsales", "nav.corresponsales"},
		{"/casos", "nav.casos"},
	}
	if caps.CanEdit {
		links = append(links, navLink{"/import", "nav.import"})
	}
	if caps.IsAdmin {
		links = append(links, navLink{"/usuarios", "nav.usuarios"})
	}
	return links
}

func navClass(path, href string) string {
	if strings.HasPrefix(path, href) {
		return "px-3 py-2 rounded-md text-sm font-medium bg-blue-50 text-blue-700"
	}
	return "px-3 py-2 rounded-md text-sm font-medium text-gray-600 hover:text-gray-900"
}

func buttonClass(primary bool) string {
	if primary {
		return "px-4 py-2 rounded-lg text-sm font-medium bg-blue-600 text-white hover:bg-blue-700"
	}
	return "px-4 py-2 rounded-lg text-sm font-medium border border-gray-300 text-gray-700 bg-white hover:bg-gray-50"
}

func csrfHeaders(token string) string {
	return JSON(map[string]string{"X-CSRF-Token": token})
}
