// Package daemon wires the database, session storage and web service together.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/config"
	"github.com/castboard/castboard/internal/confirm"
	"github.com/castboard/castboard/internal/db/dsn"
	"github.com/castboard/castboard/internal/db/models"
	gormlogger "github.com/castboard/castboard/internal/logger/adapter/gorm"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web"
	"github.com/castboard/castboard/internal/web/handler"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	sessionTable = "sessions"

	// sweepInterval is how often expired confirmation prompts are removed.
	sweepInterval = time.Minute
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	broker     *confirm.Broker
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.broker.Run(ctx, sweepInterval)

	go func() {
		d.webService.WaitShutdown()
		cancel()
	}()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// OpenDB connects to the configured database and migrates every model.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dsn.Dialector(cfg), &gorm.Config{
		Logger:         gormlogger.New(cfg.Log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// sqlite serializes writers, and every connection to ":memory:" is its own database
	if dsn.Engine(cfg) == dsn.EngineSQLite {
		sqlDB, errDB := db.DB()
		if errDB != nil {
			return nil, errDB
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SessionStorage returns the session storage matching the database engine.
// sqlite keeps sessions in memory.
func SessionStorage(cfg *config.Config) fiber.Storage {
	switch dsn.Engine(cfg) {
	case dsn.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.URI(cfg),
			Table:         sessionTable,
		})
	case dsn.EngineSQLite:
		return memory.New()
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	}
}

// NewDeps builds the handler dependencies on db and storage.
func NewDeps(cfg *config.Config, db *gorm.DB, storage fiber.Storage) (*handler.Deps, error) {
	sessions, err := session.NewManager(storage, cfg.Webserver.Session.ExpiryTime, cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(db)
	authService.DeniedRedirectDelay = cfg.Webserver.DeniedRedirectDelay

	return &handler.Deps{
		Cfg:      cfg,
		DB:       db,
		Auth:     authService,
		Sessions: sessions,
		Confirm:  confirm.NewBroker(confirm.DefaultTTL),
		Notify:   notify.New(storage, cfg.Locale, session.CookieName),
		Validate: handler.NewValidator(),
	}, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, handler.ErrNilDeps
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Seed(db, ""); err != nil {
		return nil, err
	}

	deps, err := NewDeps(cfg, db, SessionStorage(cfg))
	if err != nil {
		return nil, err
	}

	webService, err := web.New(deps)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("engine", dsn.Engine(cfg)).
		Int("port", cfg.Webserver.Port).
		Str("env", cfg.Env).
		Msg("castboard initialized")

	return &Daemon{cfg: cfg, webService: webService, broker: deps.Confirm}, nil
}
