// Package handlertest wires handlers to an in-memory database, session store
// and a recording view engine for tests.
package handlertest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/config"
	"github.com/castboard/castboard/internal/confirm"
	"github.com/castboard/castboard/internal/db/models"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/handler"
	authmiddleware "github.com/castboard/castboard/internal/web/middleware/auth"
	"github.com/castboard/castboard/internal/web/session"
)

// StateSecret is the OAuth state secret of Config.
const StateSecret = "test-state-secret-0123456789"

// Render is one recorded Render call.
type Render struct {
	Name string
	Data fiber.Map
}

// Views is a fiber.Views that records renders and writes the template name,
// or the "error" value when present.
type Views struct {
	mu      sync.Mutex
	renders []Render
}

// Load implements fiber.Views.
func (v *Views) Load() error { return nil }

// Render implements fiber.Views.
func (v *Views) Render(w io.Writer, name string, data any, _ ...string) error {
	m, _ := data.(fiber.Map)

	v.mu.Lock()
	v.renders = append(v.renders, Render{Name: name, Data: m})
	v.mu.Unlock()

	if msg, ok := m["error"].(string); ok && msg != "" {
		_, err := io.WriteString(w, msg)
		return err
	}

	_, err := io.WriteString(w, name)

	return err
}

// Last returns the most recent render.
func (v *Views) Last() Render {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.renders) == 0 {
		return Render{}
	}

	return v.renders[len(v.renders)-1]
}

// Env is a ready to use handler environment.
type Env struct {
	App     *fiber.App
	Deps    *handler.Deps
	Views   *Views
	Storage *memory.Storage
}

// Config returns a valid configuration for tests.
func Config() *config.Config {
	return &config.Config{
		Title:  "castboard",
		Locale: "ja",
		Webserver: config.Webserver{
			Port:                8080,
			URL:                 "http://localhost:8080",
			DeniedRedirectDelay: 3,
			Session:             config.Session{ExpiryTime: time.Hour},
		},
		Base: config.Base{
			AuthURL:     config.DefaultBaseAuthURL,
			TokenURL:    config.DefaultBaseTokenURL,
			Scopes:      []string{"read_users", "read_items"},
			StateSecret: StateSecret,
		},
	}
}

// NewDB opens a migrated in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// a second pooled connection would see its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

// New builds an Env with the session and toast middleware installed.
func New(t *testing.T) *Env {
	t.Helper()

	cfg := Config()
	db := NewDB(t)
	storage := memory.New()

	sessions, err := session.NewManager(storage, cfg.Webserver.Session.ExpiryTime, false)
	require.NoError(t, err)

	authService := auth.NewService(db)
	authService.DeniedRedirectDelay = cfg.Webserver.DeniedRedirectDelay

	deps := &handler.Deps{
		Cfg:      cfg,
		DB:       db,
		Auth:     authService,
		Sessions: sessions,
		Confirm:  confirm.NewBroker(0),
		Notify:   notify.New(storage, cfg.Locale, session.CookieName),
		Validate: handler.NewValidator(),
	}

	views := &Views{}
	app := fiber.New(fiber.Config{Views: views, PassLocalsToViews: true})
	app.Use(authmiddleware.New(sessions, authService))
	app.Use(deps.Notify.Middleware())

	return &Env{App: app, Deps: deps, Views: views, Storage: storage}
}

// Role creates a role holding perms.
func (e *Env) Role(t *testing.T, name string, superAdmin bool, perms ...string) models.Role {
	t.Helper()

	role := models.Role{Name: name, IsSuperAdmin: superAdmin}
	require.NoError(t, e.Deps.DB.Create(&role).Error)

	for _, name := range perms {
		var perm models.Permission
		require.NoError(t, e.Deps.DB.Where(models.Permission{Name: name}).FirstOrCreate(&perm).Error)
		require.NoError(t, e.Deps.DB.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	}

	return role
}

// User creates an active user with role.
func (e *Env) User(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()

	user, err := auth.NewLocalProvider(e.Deps.DB).CreateUser(username, "", "password-"+username, "", role.ID)
	require.NoError(t, err)

	return user
}

// Store creates a store and adds members to it.
func (e *Env) Store(t *testing.T, name, code string, members ...*models.User) models.Store {
	t.Helper()

	st := models.Store{Name: name, Code: code}
	require.NoError(t, e.Deps.DB.Create(&st).Error)

	for _, u := range members {
		require.NoError(t, e.Deps.Auth.AddStoreMember(u.ID, st.ID))
	}

	return st
}

// Login writes a session for user with storeID selected and returns its id.
func (e *Env) Login(t *testing.T, user *models.User, storeID uint) string {
	t.Helper()

	sessionID := session.GenerateSessionID()
	require.NoError(t, e.Deps.Sessions.Write(sessionID, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		StoreID:  storeID,
	}))

	return sessionID
}

// Get performs a GET with the session cookie.
func (e *Env) Get(t *testing.T, target, sessionID string) *http.Response {
	t.Helper()

	return e.Do(t, httptest.NewRequest(fiber.MethodGet, target, nil), sessionID)
}

// PostForm performs a form POST with the session cookie.
func (e *Env) PostForm(t *testing.T, target, sessionID string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	return e.Do(t, req, sessionID)
}

// Do runs req against the app.
func (e *Env) Do(t *testing.T, req *http.Request, sessionID string) *http.Response {
	t.Helper()

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	return resp
}

// Toasts drains the queued toasts of a session.
func (e *Env) Toasts(t *testing.T, sessionID string) []notify.Toast {
	t.Helper()

	var toasts []notify.Toast

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		toasts = e.Deps.Notify.Drain(c)
		return nil
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})

	_, err := app.Test(req)
	require.NoError(t, err)

	return toasts
}

// Body reads the response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}
