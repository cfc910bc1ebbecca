// Package authz derives capability flags from a role profile and decides
// whether guarded content may be rendered. Everything here is pure.
package authz

import (
	"strings"

	"github.com/orelvisrguez/assistravel/models"
)

// Capabilities is the tagged result of evaluating a role, computed once per
// profile change and consulted through its predicates.
type Capabilities struct {
	Role           models.Role `json:"role"`
	IsAdmin        bool        `json:"isAdmin"`
	IsEditor       bool        `json:"isEditor"`
	IsVisualizador bool        `json:"isVisualizador"`
	CanEdit        bool        `json:"canEdit"`
	CanDelete      bool        `json:"canDelete"`
}

// Evaluate maps a role to its capability flags. An empty or unknown role
// yields all flags false.
func Evaluate(role models.Role) Capabilities {
	caps := Capabilities{
		IsAdmin:        role == models.RoleAdmin,
		IsEditor:       role == models.RoleEditor,
		IsVisualizador: role == models.RoleVisualizador,
	}
	if caps.IsAdmin || caps.IsEditor || caps.IsVisualizador {
		caps.Role = role
	}
	caps.CanEdit = caps.IsAdmin || caps.IsEditor
	caps.CanDelete = caps.IsAdmin
	return caps
}

// EvaluateProfile is Evaluate over an optional profile
func EvaluateProfile(profile *models.UserProfile) Capabilities {
	if profile == nil {
		return Capabilities{}
	}
	return Evaluate(profile.Role)
}

// HasRole reports whether the evaluated role is exactly role
func (c Capabilities) HasRole(role models.Role) bool {
	return c.Role != "" && c.Role == role
}

// HasAnyRole reports whether the evaluated role is one of roles
func (c Capabilities) HasAnyRole(roles ...models.Role) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// Requirement is the set of conditions protecting a route or action
type Requirement struct {
	RequiresEdit   bool
	RequiresDelete bool
	RequiredRoles  []models.Role
}

// Outcome of a guard evaluation
type Outcome int

const (
	// OutcomeLoading renders only a neutral loading indicator
	OutcomeLoading Outcome = iota
	// OutcomeHidden renders nothing; redirecting is the caller's job
	OutcomeHidden
	// OutcomeDenied renders the access-denied fallback
	OutcomeDenied
	// OutcomeAllowed renders the protected content
	OutcomeAllowed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeHidden:
		return "hidden"
	case OutcomeDenied:
		return "denied"
	case OutcomeAllowed:
		return "allowed"
	}
	return "unknown"
}

// Denial message keys, resolved through i18n
const (
	MsgRequiresAdmin = "guard.requires_admin"
	MsgRequiresEdit  = "guard.requires_edit"
	MsgRequiresRoles = "guard.requires_roles"
)

// Subject is what the guard knows about the current session
type Subject struct {
	Loading      bool
	Identity     *models.Identity
	Profile      *models.UserProfile
	Capabilities Capabilities
}

// Decision is the result of evaluating a Requirement
type Decision struct {
	Outcome    Outcome
	MessageKey string
	Args       map[string]interface{}
}

// Allowed is shorthand for Outcome == OutcomeAllowed
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed
}

// Evaluate checks requiresDelete, then requiresEdit, then requiredRoles; the
// first failing condition decides the denial message.
func (r Requirement) Evaluate(s Subject) Decision {
	if s.Loading {
		return Decision{Outcome: OutcomeLoading}
	}
	if s.Identity == nil || s.Profile == nil {
		return Decision{Outcome: OutcomeHidden}
	}

	caps := s.Capabilities
	if r.RequiresDelete && !caps.CanDelete {
		return Decision{Outcome: OutcomeDenied, MessageKey: MsgRequiresAdmin}
	}
	if r.RequiresEdit && !caps.CanEdit {
		return Decision{Outcome: OutcomeDenied, MessageKey: MsgRequiresEdit}
	}
	if len(r.RequiredRoles) > 0 && !caps.HasAnyRole(r.RequiredRoles...) {
		return Decision{
			Outcome:    OutcomeDenied,
			MessageKey: MsgRequiresRoles,
			Args:       map[string]interface{}{"roles": JoinRoles(r.RequiredRoles)},
		}
	}
	return Decision{Outcome: OutcomeAllowed}
}

// JoinRoles renders roles as "Admin, Editor"
func JoinRoles(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
