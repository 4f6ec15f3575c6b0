package auth

// Permission keys in resource.action form.
const (
	// PermDashboardView allows viewing the dashboard of the current store.
	PermDashboardView = "dashboard.view"
	// PermStoreManage allows creating and editing stores.
	PermStoreManage = "store.manage"
	// PermCastManage allows managing the casts of a store.
	PermCastManage = "cast.manage"
	// PermShiftManage allows managing the shifts of a store.
	PermShiftManage = "shift.manage"
	// PermBaseSettings allows editing BASE credentials and running the OAuth connection.
	PermBaseSettings = "base.settings"
	// PermUserManage allows managing dashboard accounts.
	PermUserManage = "user.manage"
)

// PermissionInfo describes a permission for seeding.
type PermissionInfo struct {
	Name        string
	Description string
}

// AllPermissions lists every permission key.
func AllPermissions() []PermissionInfo {
	return []PermissionInfo{
		{PermDashboardView, "View the dashboard"},
		{PermStoreManage, "Create and edit stores"},
		{PermCastManage, "Manage casts"},
		{PermShiftManage, "Manage shifts"},
		{PermBaseSettings, "Manage the BASE connection"},
		{PermUserManage, "Manage dashboard users"},
	}
}
