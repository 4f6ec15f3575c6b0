// Package cast stores the casts of a store. Every call is scoped to one store.
package cast

import (
	"errors"

	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/db/models"
)

const whereStoreAndID = "store_id = ? AND id = ?"

var (
	// ErrCastNotFound is returned when the cast does not exist in the store.
	ErrCastNotFound = errors.New("cast not found")
	// ErrStoreIDZero is returned for the zero store id.
	ErrStoreIDZero = errors.New("store id cannot be zero")
)

// Form is the cast edit form.
type Form struct {
	Name       string `form:"name"        validate:"required,max=100"`
	Kana       string `form:"kana"        validate:"max=100"`
	HourlyWage int    `form:"hourly_wage" validate:"gte=0,lte=1000000"`
	Active     bool   `form:"active"`
}

// FormFrom returns the form prefilled with c.
func FormFrom(c *models.Cast) Form {
	return Form{Name: c.Name, Kana: c.Kana, HourlyWage: c.HourlyWage, Active: c.Active}
}

// List returns the casts of a store, active ones first, then by kana and name.
func List(db *gorm.DB, storeID uint, onlyActive bool) ([]models.Cast, error) {
	if storeID == 0 {
		return nil, ErrStoreIDZero
	}

	var casts []models.Cast

	query := db.Where("store_id = ?", storeID)
	if onlyActive {
		query = query.Where("active = ?", true)
	}

	err := query.Order("active DESC").Order("kana").Order("name").Find(&casts).Error

	return casts, err
}

// Get returns one cast of a store.
func Get(db *gorm.DB, storeID, id uint) (*models.Cast, error) {
	var c models.Cast

	err := db.Where(whereStoreAndID, storeID, id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCastNotFound
	}

	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Create adds a cast to a store.
func Create(db *gorm.DB, storeID uint, f Form) (*models.Cast, error) {
	if storeID == 0 {
		return nil, ErrStoreIDZero
	}

	c := models.Cast{
		StoreID:    storeID,
		Name:       f.Name,
		Kana:       f.Kana,
		HourlyWage: f.HourlyWage,
		Active:     f.Active,
	}

	// Select keeps a false Active from being replaced by the column default.
	if err := db.Select("StoreID", "Name", "Kana", "HourlyWage", "Active", "CreatedAt", "UpdatedAt").Create(&c).Error; err != nil {
		return nil, err
	}

	return &c, nil
}

// Update overwrites the editable fields of a cast.
func Update(db *gorm.DB, storeID, id uint, f Form) error {
	result := db.Model(&models.Cast{}).
		Where(whereStoreAndID, storeID, id).
		Updates(map[string]any{
			"name":        f.Name,
			"kana":        f.Kana,
			"hourly_wage": f.HourlyWage,
			"active":      f.Active,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCastNotFound
	}

	return nil
}

// Delete removes a cast and its shifts.
func Delete(db *gorm.DB, storeID, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ? AND cast_id = ?", storeID, id).Delete(&models.Shift{}).Error; err != nil {
			return err
		}

		result := tx.Where(whereStoreAndID, storeID, id).Delete(&models.Cast{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrCastNotFound
		}

		return nil
	})
}

// CountActive returns the number of active casts of a store.
func CountActive(db *gorm.DB, storeID uint) (int64, error) {
	var n int64

	err := db.Model(&models.Cast{}).Where("store_id = ? AND active = ?", storeID, true).Count(&n).Error

	return n, err
}
