// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/config"
)

const (
	// EngineMySQL selects the mysql dialector.
	EngineMySQL = "mysql"
	// EnginePostgres selects the postgres dialector.
	EnginePostgres = "postgres"
	// EngineSQLite selects the pure go sqlite dialector.
	EngineSQLite = "sqlite"
)

// Engine returns the configured gorm engine, mysql when unset.
func Engine(cfg *config.Config) string {
	if cfg.DB.GormEngine == "" {
		return EngineMySQL
	}

	return cfg.DB.GormEngine
}

// Create builds the Data Source Name from the configuration.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch Engine(cfg) {
	case EnginePostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s %s",
			db.Host, db.Port, db.User, db.Password, db.Name, db.Extras)
	case EngineSQLite:
		if db.Name == "" {
			return ":memory:"
		}

		return db.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User, db.Password, db.Host, db.Port, db.Name, db.Extras)
	}
}

// URI builds a URL style connection string, used by the postgres session storage.
func URI(cfg *config.Config) string {
	db := cfg.DB

	u := url.URL{
		Scheme:   EnginePostgres,
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}

// Dialector returns the gorm dialector for the configured engine.
func Dialector(cfg *config.Config) gorm.Dialector {
	switch Engine(cfg) {
	case EnginePostgres:
		return postgres.Open(Create(cfg))
	case EngineSQLite:
		return sqlite.Open(Create(cfg))
	default:
		return mysql.Open(Create(cfg))
	}
}
