// Package basesettings reads and writes the per store BASE OAuth settings.
package basesettings

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/db/models"
)

const storeQueryPattern = "store_id = ?"

var (
	// ErrSettingsNotFound is returned when a store has no base_settings row.
	ErrSettingsNotFound = errors.New("base settings not found")
	// ErrClientIDEmpty is returned when the row exists but carries no client id.
	ErrClientIDEmpty = errors.New("base client id is empty")
	// ErrStoreIDZero is returned for the zero store id.
	ErrStoreIDZero = errors.New("store id cannot be zero")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Token is the result of a BASE token exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

func check(db *gorm.DB, storeID uint) error {
	if db == nil {
		return ErrDBNil
	}

	if storeID == 0 {
		return ErrStoreIDZero
	}

	return nil
}

// Get retrieves the settings of a store.
func Get(db *gorm.DB, storeID uint) (*models.BaseSettings, error) {
	if err := check(db, storeID); err != nil {
		return nil, err
	}

	var settings models.BaseSettings

	result := db.Where(storeQueryPattern, storeID).First(&settings)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}

		return nil, result.Error
	}

	return &settings, nil
}

// ClientID reads only the client_id column of a store's settings.
func ClientID(db *gorm.DB, storeID uint) (string, error) {
	if err := check(db, storeID); err != nil {
		return "", err
	}

	var settings models.BaseSettings

	result := db.Select("client_id").Where(storeQueryPattern, storeID).First(&settings)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrSettingsNotFound
		}

		return "", result.Error
	}

	if settings.ClientID == "" {
		return "", ErrClientIDEmpty
	}

	return settings.ClientID, nil
}

// SaveCredentials creates or updates the client credentials of a store.
// An empty clientSecret keeps the stored secret. Changing the client id drops the tokens.
func SaveCredentials(db *gorm.DB, storeID uint, clientID, clientSecret string) (*models.BaseSettings, error) {
	if err := check(db, storeID); err != nil {
		return nil, err
	}

	settings, err := Get(db, storeID)

	switch {
	case errors.Is(err, ErrSettingsNotFound):
		settings = &models.BaseSettings{
			StoreID:      storeID,
			ClientID:     clientID,
			ClientSecret: clientSecret,
		}

		if result := db.Create(settings); result.Error != nil {
			return nil, result.Error
		}

		return settings, nil
	case err != nil:
		return nil, err
	}

	if settings.ClientID != clientID {
		settings.AccessToken = ""
		settings.RefreshToken = ""
		settings.TokenExpiry = nil
		settings.ConnectedAt = nil
	}

	settings.ClientID = clientID
	if clientSecret != "" {
		settings.ClientSecret = clientSecret
	}

	if result := db.Save(settings); result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// SaveToken stores the tokens of a completed authorization.
func SaveToken(db *gorm.DB, storeID uint, token Token) error {
	settings, err := Get(db, storeID)
	if err != nil {
		return err
	}

	now := time.Now()
	settings.AccessToken = token.AccessToken
	settings.RefreshToken = token.RefreshToken
	settings.ConnectedAt = &now

	settings.TokenExpiry = nil
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		settings.TokenExpiry = &expiry
	}

	return db.Save(settings).Error
}

// Disconnect removes the tokens but keeps the client credentials.
func Disconnect(db *gorm.DB, storeID uint) error {
	if err := check(db, storeID); err != nil {
		return err
	}

	result := db.Model(&models.BaseSettings{}).Where(storeQueryPattern, storeID).
		Updates(map[string]any{
			"access_token":  "",
			"refresh_token": "",
			"token_expiry":  nil,
			"connected_at":  nil,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingsNotFound
	}

	return nil
}
