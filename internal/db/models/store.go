package models

import "time"

// Store is a venue, the tenant unit for casts, shifts and BASE settings.
type Store struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"                 form:"name" validate:"required,max=100"`
	Code      string `gorm:"size:32;uniqueIndex;not null"      form:"code" validate:"required,alphanum,max=32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreMember grants a user access to a store.
type StoreMember struct {
	UserID    uint64 `gorm:"primaryKey;column:user_id"`
	StoreID   uint   `gorm:"primaryKey;column:store_id"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Store     Store  `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// TableName specifies the database table name for the StoreMember model.
func (StoreMember) TableName() string {
	return "store_members"
}
