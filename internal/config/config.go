// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	// EnvConfigJSON holds a JSON document merged over the TOML config.
	EnvConfigJSON = "CASTBOARD_CONFIG_JSON"
	// EnvAppURL overrides Webserver.URL.
	EnvAppURL = "CASTBOARD_APP_URL"
	// EnvAppEnv overrides Env.
	EnvAppEnv = "CASTBOARD_ENV"

	// legacy names kept for deployments migrated from the previous dashboard
	legacyEnvAppURL = "NEXT_PUBLIC_APP_URL"
	legacyEnvAppEnv = "NODE_ENV"

	// DefaultBaseAuthURL is the BASE authorization endpoint.
	DefaultBaseAuthURL = "https://api.thebase.in/1/oauth/authorize"
	// DefaultBaseTokenURL is the BASE token endpoint.
	DefaultBaseTokenURL = "https://api.thebase.in/1/oauth/token"

	minStateSecretLen = 16
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	applyEnv(&c)

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// applyEnv takes the app url and environment from the process env.
func applyEnv(c *Config) {
	if v := firstEnv(EnvAppURL, legacyEnvAppURL); v != "" {
		c.Webserver.URL = v
	}

	if v := firstEnv(EnvAppEnv, legacyEnvAppEnv); v != "" {
		c.Env = v
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}

	return ""
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings castboard can not start without and fills defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if len(c.Base.StateSecret) < minStateSecretLen {
		return errors.Wrap(ErrStateSecretTooShort, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "", "mysql", "postgres", "sqlite":
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = 12 * time.Hour //nolint:mnd
	}

	if c.Webserver.DeniedRedirectDelay < 0 {
		c.Webserver.DeniedRedirectDelay = 0
	}

	if c.Base.AuthURL == "" {
		c.Base.AuthURL = DefaultBaseAuthURL
	}

	if c.Base.TokenURL == "" {
		c.Base.TokenURL = DefaultBaseTokenURL
	}

	if c.Locale == "" {
		c.Locale = "ja"
	}

	return nil
}
