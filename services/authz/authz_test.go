package authz

import (
	"testing"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		role      models.Role
		canEdit   bool
		canDelete bool
	}{
		{models.RoleAdmin, true, true},
		{models.RoleEditor, true, false},
		{models.RoleVisualizador, false, false},
		{"", false, false},
		{"superuser", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			caps := Evaluate(tt.role)
			assert.Equal(t, tt.canEdit, caps.CanEdit)
			assert.Equal(t, tt.canDelete, caps.CanDelete)

			flags := 0
			for _, f := range []bool{caps.IsAdmin, caps.IsEditor, caps.IsVisualizador} {
				if f {
					flags++
				}
			}
			assert.LessOrEqual(t, flags, 1)
		})
	}
}

func TestEvaluateNoneIsEmpty(t *testing.T) {
	assert.Equal(t, Capabilities{}, Evaluate(""))
	assert.Equal(t, Capabilities{}, EvaluateProfile(nil))
	assert.Equal(t, Capabilities{}, Evaluate("Owner"))
}

func TestHasAnyRole(t *testing.T) {
	caps := Evaluate(models.RoleEditor)
	assert.True(t, caps.HasAnyRole(models.RoleAdmin, models.RoleEditor))
	assert.False(t, caps.HasAnyRole(models.RoleAdmin))
	assert.False(t, Capabilities{}.HasAnyRole(""))
}

func subjectFor(role models.Role) Subject {
	return Subject{
		Identity:     &models.Identity{ID: "u1", Email: "u1@asistitravel.com"},
		Profile:      &models.UserProfile{ID: "u1", Role: role},
		Capabilities: Evaluate(role),
	}
}

func TestRequirementEvaluate(t *testing.T) {
	t.Run("LoadingWinsOverEverything", func(t *testing.T) {
		s := subjectFor(models.RoleVisualizador)
		s.Loading = true
		d := Requirement{RequiresDelete: true}.Evaluate(s)
		assert.Equal(t, OutcomeLoading, d.Outcome)
	})

	t.Run("NoIdentityHidden", func(t *testing.T) {
		d := Requirement{}.Evaluate(Subject{})
		assert.Equal(t, OutcomeHidden, d.Outcome)
	})

	t.Run("NoProfileHidden", func(t *testing.T) {
		s := Subject{Identity: &models.Identity{ID: "u1"}}
		d := Requirement{}.Evaluate(s)
		assert.Equal(t, OutcomeHidden, d.Outcome)
	})

	t.Run("EditorDeniedDelete", func(t *testing.T) {
		d := Requirement{RequiresDelete: true}.Evaluate(subjectFor(models.RoleEditor))
		assert.Equal(t, OutcomeDenied, d.Outcome)
		assert.Equal(t, MsgRequiresAdmin, d.MessageKey)
	})

	t.Run("DeleteCheckedBeforeEdit", func(t *testing.T) {
		d := Requirement{RequiresDelete: true, RequiresEdit: true}.Evaluate(subjectFor(models.RoleVisualizador))
		assert.Equal(t, MsgRequiresAdmin, d.MessageKey)
	})

	t.Run("VisualizadorDeniedEdit", func(t *testing.T) {
		d := Requirement{RequiresEdit: true}.Evaluate(subjectFor(models.RoleVisualizador))
		assert.Equal(t, OutcomeDenied, d.Outcome)
		assert.Equal(t, MsgRequiresEdit, d.MessageKey)
	})

	t.Run("RolesListedInDenial", func(t *testing.T) {
		d := Requirement{RequiredRoles: []models.Role{models.RoleAdmin}}.Evaluate(subjectFor(models.RoleVisualizador))
		assert.Equal(t, OutcomeDenied, d.Outcome)
		assert.Equal(t, MsgRequiresRoles, d.MessageKey)
		assert.Equal(t, "Admin", d.Args["roles"])
	})

	t.Run("EditCheckedBeforeRoles", func(t *testing.T) {
		req := Requirement{RequiresEdit: true, RequiredRoles: []models.Role{models.RoleAdmin}}
		d := req.Evaluate(subjectFor(models.RoleVisualizador))
		assert.Equal(t, MsgRequiresEdit, d.MessageKey)
	})

	t.Run("AdminAllowedEverywhere", func(t *testing.T) {
		req := Requirement{RequiresDelete: true, RequiresEdit: true, RequiredRoles: []models.Role{models.RoleAdmin}}
		assert.True(t, req.Evaluate(subjectFor(models.RoleAdmin)).Allowed())
	})

	t.Run("EmptyRequirementAllowsVisualizador", func(t *testing.T) {
		assert.True(t, Requirement{}.Evaluate(subjectFor(models.RoleVisualizador)).Allowed())
	})
}

func TestJoinRoles(t *testing.T) {
	assert.Equal(t, "Admin, Editor", JoinRoles([]models.Role{models.RoleAdmin, models.RoleEditor}))
	assert.Equal(t, "", JoinRoles(nil))
}
