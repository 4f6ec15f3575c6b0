package models

import "time"

// Role is a named set of permissions assigned to users.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g. "superadmin", "manager").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSuperAdmin grants every permission and every store.
	IsSuperAdmin bool `gorm:"default:false"`
	// IsSystem marks roles created by the seed that can not be deleted.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is managed by GORM.
	CreatedAt time.Time
	// UpdatedAt is managed by GORM.
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
