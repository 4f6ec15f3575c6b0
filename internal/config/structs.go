package config

import (
	"time"

	"github.com/castboard/castboard/internal/logger"
)

// EnvProduction is the environment name that enables production only behaviour
// such as the Secure cookie flag.
const EnvProduction = "production"

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool   // enable dev mode for development
	Env       string // runtime environment, "production" enables secure cookies
	Locale    string // language used for toast messages (ja, en)
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Base      Base
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // public base url, used to build the OAuth callback
	DeniedRedirectDelay int     // seconds the access denied panel stays before redirecting home
	Session             Session // session settings
}

// Base holds the BASE commerce platform OAuth settings.
// Client credentials live per store in the base_settings table.
type Base struct {
	AuthURL     string   // authorization endpoint
	TokenURL    string   // token endpoint
	Scopes      []string // requested scopes
	StateSecret string   // HMAC key for the OAuth state value
}
