package models

import "time"

// Cast is a performer or host working at a store.
type Cast struct {
	ID         uint   `gorm:"primaryKey"`
	StoreID    uint   `gorm:"index;not null"`
	Store      Store  `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
	Name       string `gorm:"size:100;not null"`
	Kana       string `gorm:"size:100"`
	HourlyWage int    `gorm:"not null;default:0"`
	Active     bool   `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
