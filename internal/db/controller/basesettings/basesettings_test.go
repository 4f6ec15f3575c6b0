package basesettings

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database with one store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// every pooled connection would open its own empty memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Store{}, &models.BaseSettings{}))
	require.NoError(t, db.Create(&models.Store{ID: 1, Name: "Shibuya", Code: "SBY"}).Error)

	return db
}

func TestClientID(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Store{ID: 2, Name: "Ginza", Code: "GNZ"}).Error)
	require.NoError(t, db.Create(&models.BaseSettings{StoreID: 1, ClientID: "client-1"}).Error)
	require.NoError(t, db.Create(&models.BaseSettings{StoreID: 2}).Error)

	testCases := []struct {
		name          string
		db            *gorm.DB
		storeID       uint
		expected      string
		expectedError error
	}{
		{name: "nil database", db: nil, storeID: 1, expectedError: ErrDBNil},
		{name: "zero store", db: db, storeID: 0, expectedError: ErrStoreIDZero},
		{name: "no row", db: db, storeID: 99, expectedError: ErrSettingsNotFound},
		{name: "empty client id", db: db, storeID: 2, expectedError: ErrClientIDEmpty},
		{name: "found", db: db, storeID: 1, expected: "client-1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clientID, err := ClientID(tc.db, tc.storeID)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, clientID)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, clientID)
		})
	}
}

func TestSaveCredentials(t *testing.T) {
	db := setupTestDB(t)

	created, err := SaveCredentials(db, 1, "client-1", "secret-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", created.ClientID)
	assert.Equal(t, "secret-1", created.ClientSecret)

	require.NoError(t, SaveToken(db, 1, Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}))

	// same client id, empty secret keeps secret and tokens
	updated, err := SaveCredentials(db, 1, "client-1", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "secret-1", updated.ClientSecret)
	assert.Equal(t, "at", updated.AccessToken)

	// new client id drops the tokens
	changed, err := SaveCredentials(db, 1, "client-2", "secret-2")
	require.NoError(t, err)
	assert.Equal(t, "client-2", changed.ClientID)
	assert.Empty(t, changed.AccessToken)
	assert.Nil(t, changed.TokenExpiry)

	var count int64
	require.NoError(t, db.Model(&models.BaseSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSaveTokenAndDisconnect(t *testing.T) {
	db := setupTestDB(t)

	require.ErrorIs(t, SaveToken(db, 1, Token{AccessToken: "at"}), ErrSettingsNotFound)
	require.ErrorIs(t, Disconnect(db, 1), ErrSettingsNotFound)

	_, err := SaveCredentials(db, 1, "client-1", "secret-1")
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, SaveToken(db, 1, Token{AccessToken: "at", RefreshToken: "rt", Expiry: expiry}))

	settings, err := Get(db, 1)
	require.NoError(t, err)
	assert.True(t, settings.Connected())
	assert.Equal(t, "rt", settings.RefreshToken)
	require.NotNil(t, settings.TokenExpiry)
	assert.True(t, settings.TokenExpiry.Equal(expiry))
	assert.NotNil(t, settings.ConnectedAt)

	require.NoError(t, Disconnect(db, 1))

	settings, err = Get(db, 1)
	require.NoError(t, err)
	assert.False(t, settings.Connected())
	assert.Nil(t, settings.TokenExpiry)
	assert.Equal(t, "client-1", settings.ClientID)
}
