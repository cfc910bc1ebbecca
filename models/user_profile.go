package models

import "time"

// Role is the access level stored on a user profile
type Role string

// Role constants
const (
	RoleAdmin        Role = "Admin"
	RoleEditor       Role = "Editor"
	RoleVisualizador Role = "Visualizador"
)

// Roles lists every assignable role, highest privilege first
var Roles = []Role{RoleAdmin, RoleEditor, RoleVisualizador}

// UserProfile holds the role of an identity (1:1, same ID as the user).
type UserProfile struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	Email     string    `gorm:"not null" json:"email"`
	Role      Role      `gorm:"type:varchar(20);not null;default:Visualizador" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}

// IsValidRole checks if the role is one of the known roles
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if string(r) == role {
			return true
		}
	}
	return false
}
