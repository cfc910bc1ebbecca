package pages

import (
	"github.com/orelvisrguez/assistravel/models"
)

// Auth page modes
const (
	AuthModeSignIn = "signin"
	AuthModeSignUp = "signup"
)

// AuthForm is the state of the sign-in / sign-up page
type AuthForm struct {
	Mode   string
	Email  string
	Error  string
	Notice string
}

// CorresponsalForm is the create / edit form state
type CorresponsalForm struct {
	Corresponsal models.Corresponsal
	Error        string
}

// IsNew reports whether the form creates a record
func (f CorresponsalForm) IsNew() bool {
	return f.Corresponsal.ID == ""
}

// Action is the URL the form posts to
func (f CorresponsalForm) Action() string {
	if f.IsNew() {
		return "/corresponsales"
	}
	return "/corresponsales/" + f.Corresponsal.ID
}

// CasoForm is the create / edit form state
type CasoForm struct {
	Caso           models.Caso
	Corresponsales []models.Corresponsal
	Error          string
}

// IsNew reports whether the form creates a record
func (f CasoForm) IsNew() bool {
	return f.Caso.ID == ""
}

// Action is the URL the form posts to
func (f CasoForm) Action() string {
	if f.IsNew() {
		return "/casos"
	}
	return "/casos/" + f.Caso.ID
}
