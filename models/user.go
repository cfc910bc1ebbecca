package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authentication identity issued by the repository. Its role lives
// in UserProfile, which is provisioned separately.
type User struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	LastLoginAt *time.Time `json:"last_login_at"`

	Profile *UserProfile `gorm:"foreignKey:ID;references:ID" json:"profile,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// IsConfirmed reports whether the email confirmation link was followed
func (u *User) IsConfirmed() bool {
	return u.ConfirmedAt != nil
}

// Identity returns the read-only handle other layers work with
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email}
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Identity is the opaque user handle plus email exposed to the session layer.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
