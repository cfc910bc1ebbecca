package models

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Session{},
		&Corresponsal{},
		&Caso{},
		&AuditLog{},
	}
}
