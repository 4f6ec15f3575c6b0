package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfigPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.Webserver.Session.ExpiryTime != 12*time.Hour {
		t.Errorf("Session.ExpiryTime = %v, want 12h", cfg.Webserver.Session.ExpiryTime)
	}

	if cfg.DB.GormEngine != "sqlite" {
		t.Errorf("DB.GormEngine = %q, want sqlite", cfg.DB.GormEngine)
	}

	if len(cfg.Base.Scopes) == 0 {
		t.Error("Base.Scopes should not be empty")
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090}}`
	t.Setenv(EnvConfigJSON, jsonOverride)

	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Test Override" {
		t.Errorf("Title = %v, want %v", cfg.Title, "Test Override")
	}

	if cfg.Webserver.Port != 9090 {
		t.Errorf("Webserver.Port = %v, want %v", cfg.Webserver.Port, 9090)
	}
}

func TestReadConfigEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantURL string
		wantEnv string
		prod    bool
	}{
		{
			name:    "castboard names",
			env:     map[string]string{EnvAppURL: "https://admin.example.com", EnvAppEnv: "production"},
			wantURL: "https://admin.example.com",
			wantEnv: "production",
			prod:    true,
		},
		{
			name:    "legacy names",
			env:     map[string]string{"NEXT_PUBLIC_APP_URL": "https://legacy.example.com", "NODE_ENV": "production"},
			wantURL: "https://legacy.example.com",
			wantEnv: "production",
			prod:    true,
		},
		{
			name: "castboard names win over legacy",
			env: map[string]string{
				EnvAppURL:             "https://new.example.com",
				"NEXT_PUBLIC_APP_URL": "https://old.example.com",
				EnvAppEnv:             "staging",
				"NODE_ENV":            "production",
			},
			wantURL: "https://new.example.com",
			wantEnv: "staging",
			prod:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{EnvAppURL, EnvAppEnv, "NEXT_PUBLIC_APP_URL", "NODE_ENV"} {
				t.Setenv(name, "")
			}

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := ReadConfig(testConfigPath(t))
			if err != nil {
				t.Fatalf("ReadConfig() error = %v", err)
			}

			if cfg.Webserver.URL != tt.wantURL {
				t.Errorf("Webserver.URL = %q, want %q", cfg.Webserver.URL, tt.wantURL)
			}

			if cfg.Env != tt.wantEnv {
				t.Errorf("Env = %q, want %q", cfg.Env, tt.wantEnv)
			}

			if cfg.IsProduction() != tt.prod {
				t.Errorf("IsProduction() = %v, want %v", cfg.IsProduction(), tt.prod)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	secret := "0123456789abcdef"

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				Base:      Base{StateSecret: secret},
			},
			wantErr: false,
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{Port: 0, URL: "http://localhost:8080"},
				Base:      Base{StateSecret: secret},
			},
			wantErr: true,
		},
		{
			name: "missing URL",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: ""},
				Base:      Base{StateSecret: secret},
			},
			wantErr: true,
		},
		{
			name: "short state secret",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				Base:      Base{StateSecret: "short"},
			},
			wantErr: true,
		},
		{
			name: "unknown engine",
			config: Config{
				DB:        DB{GormEngine: "oracle"},
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				Base:      Base{StateSecret: secret},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080", DeniedRedirectDelay: -4},
		Base:      Base{StateSecret: "0123456789abcdef"},
	}

	if err := validate(&cfg); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.Webserver.ShutDownTime != 5 {
		t.Errorf("ShutDownTime = %d, want 5", cfg.Webserver.ShutDownTime)
	}

	if cfg.Webserver.DeniedRedirectDelay != 0 {
		t.Errorf("DeniedRedirectDelay = %d, want 0", cfg.Webserver.DeniedRedirectDelay)
	}

	if cfg.Base.AuthURL != DefaultBaseAuthURL || cfg.Base.TokenURL != DefaultBaseTokenURL {
		t.Errorf("BASE endpoints not defaulted: %q %q", cfg.Base.AuthURL, cfg.Base.TokenURL)
	}

	if cfg.Locale != "ja" {
		t.Errorf("Locale = %q, want ja", cfg.Locale)
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	tomlStr, err := DumpConfig(&cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if !strings.Contains(tomlStr, "Test") {
		t.Error("DumpConfig() output should contain Title")
	}
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title: "Test",
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	if err != nil {
		t.Fatalf("DumpConfigJSON() error = %v", err)
	}

	if !strings.Contains(jsonStr, `"Title": "Test"`) {
		t.Errorf("DumpConfigJSON() output should contain Title, got %s", jsonStr)
	}
}
