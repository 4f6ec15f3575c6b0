// Package session keeps the signed-in user and the selected store in a
// fiber.Storage backend, keyed by a random id carried in the session cookie.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/castboard/castboard/internal/uniuri"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

const (
	// LocalsKey holds the *Data of the current request.
	LocalsKey = "Session"
	// LocalsIDKey holds the session id of the current request.
	LocalsIDKey = "SessionID"
)

// sessionIDLen is the number of characters of a session id.
const sessionIDLen = 43

var (
	// ErrNoSession is returned when the request carries no session cookie.
	ErrNoSession = errors.New("no session cookie")
	// ErrSessionNotFound is returned when the cookie points to nothing in storage.
	ErrSessionNotFound = errors.New("session not found or expired")
	// ErrNilStorage is returned by NewManager without storage.
	ErrNilStorage = errors.New("session storage is nil")
)

// Data represents the session data structure.
type Data struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	StoreID  uint   `json:"store_id,omitempty"`
}

// Manager reads and writes sessions.
type Manager struct {
	storage fiber.Storage
	expiry  time.Duration
	secure  bool
}

// NewManager returns a Manager. secure sets the Secure flag on the cookie.
func NewManager(storage fiber.Storage, expiry time.Duration, secure bool) (*Manager, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}

	return &Manager{storage: storage, expiry: expiry, secure: secure}, nil
}

// Storage returns the backend, shared with other per-session data such as toasts.
func (m *Manager) Storage() fiber.Storage {
	return m.storage
}

// Create stores data under a new id and sets the session cookie.
func (m *Manager) Create(c *fiber.Ctx, data *Data) (string, error) {
	sessionID := GenerateSessionID()

	if err := m.Write(sessionID, data); err != nil {
		return "", err
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(m.expiry.Seconds()),
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return sessionID, nil
}

// Write replaces the data stored under sessionID.
func (m *Manager) Write(sessionID string, data *Data) error {
	out, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return m.storage.Set(sessionID, out, m.expiry)
}

// Read returns the data stored under sessionID.
func (m *Manager) Read(sessionID string) (*Data, error) {
	raw, err := m.storage.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, ErrSessionNotFound
	}

	data := new(Data)
	if err = json.Unmarshal(raw, data); err != nil {
		return nil, err
	}

	return data, nil
}

// Load reads the session of the current request.
func (m *Manager) Load(c *fiber.Ctx) (string, *Data, error) {
	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return "", nil, ErrNoSession
	}

	data, err := m.Read(sessionID)
	if err != nil {
		return sessionID, nil, err
	}

	return sessionID, data, nil
}

// Destroy deletes the session of the current request and expires its cookie.
func (m *Manager) Destroy(c *fiber.Ctx) error {
	var err error

	if sessionID := c.Cookies(CookieName); sessionID != "" {
		err = m.storage.Delete(sessionID)
	}

	c.ClearCookie(CookieName)

	return err
}

// From returns the session data stored in the request locals.
func From(c *fiber.Ctx) (*Data, bool) {
	data, ok := c.Locals(LocalsKey).(*Data)

	return data, ok && data != nil
}

// IDFrom returns the session id stored in the request locals.
func IDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsIDKey).(string)

	return id
}

// GenerateSessionID returns a new random session id.
func GenerateSessionID() string {
	return uniuri.NewLenChars(sessionIDLen, uniuri.URLChars)
}
