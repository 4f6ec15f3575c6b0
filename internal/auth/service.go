package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/db/models"
)

// DefaultDeniedRedirectDelay is the number of seconds the access denied page
// is shown before the browser goes back to the home route.
const DefaultDeniedRedirectDelay = 3

// Service provides authentication and authorization functionality.
type Service struct {
	db *gorm.DB

	// DeniedRedirectDelay is the Refresh delay of the access denied page in seconds.
	DeniedRedirectDelay int
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, DeniedRedirectDelay: DefaultDeniedRedirectDelay}
}

// Principal loads the user with its role and permissions.
func (s *Service) Principal(userID uint64) (*Principal, error) {
	var user models.User

	err := s.db.Preload("Role").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	perms, err := s.GetUserPermissions(userID)
	if err != nil {
		return nil, err
	}

	p := &Principal{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		SuperAdmin:  user.Role.IsSuperAdmin,
		Permissions: make(map[string]struct{}, len(perms)),
	}

	for _, perm := range perms {
		p.Permissions[perm] = struct{}{}
	}

	return p, nil
}

// HasPermission checks if the user's role has a specific permission.
// Superadmin roles have every permission.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	p, err := s.Principal(userID)
	if err != nil {
		return false, err
	}

	return p.Has(permission), nil
}

// GetUserPermissions retrieves the permissions granted by the user's role.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.Table("permissions").
		Distinct("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ?", userID).
		Order("permissions.name").
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}

// StoresFor lists the stores the principal may work on, ordered by name.
func (s *Service) StoresFor(p *Principal) ([]models.Store, error) {
	var stores []models.Store

	query := s.db.Model(&models.Store{}).Order("name")

	if !p.SuperAdmin {
		query = query.
			Joins("JOIN store_members ON store_members.store_id = stores.id").
			Where("store_members.user_id = ?", p.UserID)
	}

	if err := query.Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	return stores, nil
}

// CanAccessStore reports whether the principal may work on storeID.
func (s *Service) CanAccessStore(p *Principal, storeID uint) (bool, error) {
	if p == nil || storeID == 0 {
		return false, nil
	}

	if p.SuperAdmin {
		return true, nil
	}

	var count int64

	err := s.db.Model(&models.StoreMember{}).
		Where("user_id = ? AND store_id = ?", p.UserID, storeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check store membership: %w", err)
	}

	return count > 0, nil
}

// AddStoreMember grants userID access to storeID. Existing memberships are kept.
func (s *Service) AddStoreMember(userID uint64, storeID uint) error {
	return s.db.
		Where(models.StoreMember{UserID: userID, StoreID: storeID}).
		FirstOrCreate(&models.StoreMember{}).Error
}

// AssignRoleToUser assigns a role to a user.
func (s *Service) AssignRoleToUser(userID uint64, roleID uint) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID).Error
}

// StoreIDsOf returns the stores userID is a member of.
func (s *Service) StoreIDsOf(userID uint64) ([]uint, error) {
	var ids []uint

	err := s.db.Model(&models.StoreMember{}).
		Where("user_id = ?", userID).
		Order("store_id").
		Pluck("store_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list store memberships: %w", err)
	}

	return ids, nil
}

// SetStoreMembers replaces the store memberships of userID with storeIDs.
func (s *Service) SetStoreMembers(userID uint64, storeIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.StoreMember{}).Error; err != nil {
			return err
		}

		seen := make(map[uint]struct{}, len(storeIDs))

		for _, storeID := range storeIDs {
			if _, dup := seen[storeID]; dup || storeID == 0 {
				continue
			}

			seen[storeID] = struct{}{}

			if err := tx.Create(&models.StoreMember{UserID: userID, StoreID: storeID}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteUser removes a user and its store memberships. Users holding a
// superadmin role are refused with ErrProtectedUser.
func (s *Service) DeleteUser(userID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User

		err := tx.Preload("Role").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}

		if err != nil {
			return err
		}

		if user.Role.IsSuperAdmin {
			return ErrProtectedUser
		}

		if err = tx.Where("user_id = ?", userID).Delete(&models.StoreMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}
