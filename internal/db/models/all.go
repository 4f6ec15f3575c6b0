package models

// All returns every model for AutoMigrate, parents first.
func All() []any {
	return []any{
		&Role{},
		&Permission{},
		&RolePermission{},
		&User{},
		&Store{},
		&StoreMember{},
		&Cast{},
		&Shift{},
		&BaseSettings{},
	}
}
