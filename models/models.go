package models

// All returns every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&Workspace{},
		&User{},
		&Session{},
		&WorkspacePermission{},
		&Lead{},
		&Client{},
		&Activity{},
		&Task{},
		&Document{},
		&Agreement{},
		&IntakeForm{},
		&UserSetting{},
		&Notification{},
		&AuditLog{},
	}
}
