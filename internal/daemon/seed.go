package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/db/models"
)

const (
	// RoleSuperAdmin holds every permission and every store.
	RoleSuperAdmin = "superadmin"
	// RoleManager runs stores.
	RoleManager = "manager"
	// RoleStaff maintains the shift schedule.
	RoleStaff = "staff"

	// DefaultAdminUser is created when the user table is empty.
	DefaultAdminUser = "admin"
	// DefaultAdminPassword is used when Seed is called without a password.
	DefaultAdminPassword = "changeme"
)

type roleSeed struct {
	name        string
	description string
	superAdmin  bool
	permissions []string
}

var roleSeeds = []roleSeed{
	{RoleSuperAdmin, "Full access to every store", true, nil},
	{RoleManager, "Runs stores, casts and the BASE connection", false, []string{
		auth.PermDashboardView, auth.PermStoreManage, auth.PermCastManage,
		auth.PermShiftManage, auth.PermBaseSettings,
	}},
	{RoleStaff, "Maintains the shift schedule", false, []string{
		auth.PermDashboardView, auth.PermShiftManage,
	}},
}

// Seed creates the permissions, the system roles and, on an empty user table,
// the admin account. It can be run repeatedly.
func Seed(db *gorm.DB, adminPassword string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		perms := make(map[string]uint)

		for _, info := range auth.AllPermissions() {
			perm := models.Permission{Name: info.Name}
			if err := tx.Where(models.Permission{Name: info.Name}).
				Attrs(models.Permission{Description: info.Description}).
				FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("seeding permission %s: %w", info.Name, err)
			}

			perms[info.Name] = perm.ID
		}

		var superAdminID uint

		for _, rs := range roleSeeds {
			role := models.Role{Name: rs.name}
			if err := tx.Where(models.Role{Name: rs.name}).
				Attrs(models.Role{Description: rs.description, IsSuperAdmin: rs.superAdmin, IsSystem: true}).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seeding role %s: %w", rs.name, err)
			}

			if rs.superAdmin {
				superAdminID = role.ID
			}

			for _, name := range rs.permissions {
				link := models.RolePermission{RoleID: role.ID, PermissionID: perms[name]}
				if err := tx.Where(link).FirstOrCreate(&link).Error; err != nil {
					return fmt.Errorf("seeding role %s: %w", rs.name, err)
				}
			}
		}

		var users int64
		if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
			return err
		}

		if users > 0 {
			return nil
		}

		if adminPassword == "" {
			adminPassword = DefaultAdminPassword
			log.Warn().Str("user", DefaultAdminUser).Msg("created admin account with the default password, change it")
		}

		_, err := auth.NewLocalProvider(tx).CreateUser(DefaultAdminUser, "", adminPassword, "管理者", superAdminID)

		return err
	})
}
