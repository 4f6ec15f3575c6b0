package models

import "time"

// Shift is a scheduled work period of a cast.
// StartTime and EndTime are display times of the 30 hour business day ("19:00", "27:30"),
// Date is the business date the shift starts on (YYYY-MM-DD).
type Shift struct {
	ID        uint   `gorm:"primaryKey"`
	StoreID   uint   `gorm:"index;not null"`
	CastID    uint   `gorm:"index;not null"`
	Cast      Cast   `gorm:"foreignKey:CastID;constraint:OnDelete:CASCADE" json:"-"`
	Date      string `gorm:"size:10;index;not null"`
	StartTime string `gorm:"size:5;not null"`
	EndTime   string `gorm:"size:5;not null"`
	Note      string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
