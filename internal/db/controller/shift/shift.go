// Package shift stores the shifts of a store.
package shift

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/db/models"
	"github.com/castboard/castboard/internal/shifttime"
)

var (
	// ErrShiftNotFound is returned when the shift does not exist in the store.
	ErrShiftNotFound = errors.New("shift not found")
	// ErrCastNotInStore is returned when the cast belongs to another store.
	ErrCastNotInStore = errors.New("cast does not belong to the store")
	// ErrInvalidTime is returned for times that are not selectable options.
	ErrInvalidTime = errors.New("shift time is not a selectable option")
	// ErrOverlap is returned when the cast already works during the new shift.
	ErrOverlap = errors.New("shift overlaps another shift of the cast")
)

// Form is the new shift form. Times are display times ("19:00", "27:30").
type Form struct {
	CastID    uint   `form:"cast_id"    validate:"required"`
	Date      string `form:"date"       validate:"required,datetime=2006-01-02"`
	StartTime string `form:"start_time" validate:"required"`
	EndTime   string `form:"end_time"   validate:"required"`
	Note      string `form:"note"       validate:"max=255"`
}

// Check validates the times of f.
func (f Form) Check() error {
	if !shifttime.IsOption(f.StartTime) || !shifttime.IsOption(f.EndTime) {
		return ErrInvalidTime
	}

	if _, err := time.Parse(shifttime.DateLayout, f.Date); err != nil {
		return err
	}

	_, err := shifttime.Duration(f.StartTime, f.EndTime)

	return err
}

// ListByDate returns the shifts of a business date with their casts, by start time.
func ListByDate(db *gorm.DB, storeID uint, date string) ([]models.Shift, error) {
	var shifts []models.Shift

	err := db.Preload("Cast").
		Where("store_id = ? AND date = ?", storeID, date).
		Order("start_time").Order("id").
		Find(&shifts).Error

	return shifts, err
}

// Get returns one shift of a store.
func Get(db *gorm.DB, storeID, id uint) (*models.Shift, error) {
	var s models.Shift

	err := db.Preload("Cast").Where("store_id = ? AND id = ?", storeID, id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShiftNotFound
	}

	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Create validates f and stores the shift.
func Create(db *gorm.DB, storeID uint, f Form) (*models.Shift, error) {
	if err := f.Check(); err != nil {
		return nil, err
	}

	// rows hold display times only, early morning clock times become 24-29
	f.StartTime = shifttime.Normalize(f.StartTime)
	f.EndTime = shifttime.Normalize(f.EndTime)

	var created models.Shift

	err := db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Cast{}).Where("store_id = ? AND id = ?", storeID, f.CastID).Count(&n).Error; err != nil {
			return err
		}

		if n == 0 {
			return ErrCastNotInStore
		}

		var existing []models.Shift
		if err := tx.Where("cast_id = ? AND date = ?", f.CastID, f.Date).Find(&existing).Error; err != nil {
			return err
		}

		for i := range existing {
			if overlaps(f.StartTime, f.EndTime, existing[i].StartTime, existing[i].EndTime) {
				return ErrOverlap
			}
		}

		created = models.Shift{
			StoreID:   storeID,
			CastID:    f.CastID,
			Date:      f.Date,
			StartTime: f.StartTime,
			EndTime:   f.EndTime,
			Note:      f.Note,
		}

		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Delete removes a shift.
func Delete(db *gorm.DB, storeID, id uint) error {
	result := db.Where("store_id = ? AND id = ?", storeID, id).Delete(&models.Shift{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrShiftNotFound
	}

	return nil
}

func overlaps(aStart, aEnd, bStart, bEnd string) bool {
	as, errA := shifttime.ToMinutes(shifttime.Normalize(aStart))
	ae, errB := shifttime.ToMinutes(shifttime.Normalize(aEnd))
	bs, errC := shifttime.ToMinutes(shifttime.Normalize(bStart))
	be, errD := shifttime.ToMinutes(shifttime.Normalize(bEnd))

	if err := errors.Join(errA, errB, errC, errD); err != nil {
		return false
	}

	return as < be && bs < ae
}
