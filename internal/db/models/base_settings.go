package models

import "time"

// BaseSettings holds the BASE OAuth client and the tokens of one store.
type BaseSettings struct {
	ID           uint   `gorm:"primaryKey"`
	StoreID      uint   `gorm:"uniqueIndex;not null"`
	Store        Store  `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
	ClientID     string `gorm:"size:255"`
	ClientSecret string `gorm:"size:255" json:"-"`
	AccessToken  string `gorm:"size:1024" json:"-"`
	RefreshToken string `gorm:"size:1024" json:"-"`
	TokenExpiry  *time.Time
	ConnectedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the database table name for the BaseSettings model.
func (BaseSettings) TableName() string {
	return "base_settings"
}

// Connected reports whether an access token was obtained.
func (b *BaseSettings) Connected() bool {
	return b.AccessToken != ""
}
