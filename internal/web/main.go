// Package web builds the fiber application and runs the http server.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	fiberlogger "github.com/castboard/castboard/internal/logger/adapter/fiber"
	"github.com/castboard/castboard/internal/shifttime"
	"github.com/castboard/castboard/internal/web/handler"
	"github.com/castboard/castboard/internal/web/handler/baseapi"
	"github.com/castboard/castboard/internal/web/handler/cast"
	"github.com/castboard/castboard/internal/web/handler/confirm"
	"github.com/castboard/castboard/internal/web/handler/dashboard"
	"github.com/castboard/castboard/internal/web/handler/login"
	"github.com/castboard/castboard/internal/web/handler/logout"
	settingsbase "github.com/castboard/castboard/internal/web/handler/settings/base"
	"github.com/castboard/castboard/internal/web/handler/shift"
	"github.com/castboard/castboard/internal/web/handler/store"
	"github.com/castboard/castboard/internal/web/handler/user"
	authmiddleware "github.com/castboard/castboard/internal/web/middleware/auth"
)

const (
	// HealthPath answers 200 while the service is alive and 503 during shutdown.
	HealthPath = "/healthz"

	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	deps         *handler.Deps
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.deps.Cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.deps.Cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Views returns the template engine: embedded templates, or the local
// directory with reloading in dev mode.
func Views(devMode bool) *html.Engine {
	templateEngine := html.NewFileSystem(http.FS(templateEmbedFS{embeddedTemplates}), ".gohtml")

	if devMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("shiftTime", func(start, end string) string {
		return shifttime.FormatShiftTime(start, end)
	})
	templateEngine.AddFunc("hours", func(minutes int) string {
		return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})

	return templateEngine
}

// New creates the web service and registers every handler.
func New(deps *handler.Deps) (*Service, error) {
	if deps == nil || deps.Cfg == nil {
		return nil, handler.ErrNilDeps
	}

	cfg := deps.Cfg

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:    8192,
			AppName:           cfg.Title,
			CaseSensitive:     true,
			Prefork:           false,
			Immutable:         true,
			Views:             Views(cfg.DevMode),
			PassLocalsToViews: true,
		},
	)

	service := &Service{App: app, deps: deps, fastShutDown: cfg.DevMode}
	service.alive.Store(true)

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Log: cfg.Log, CheckAliveURI: HealthPath}))

	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Get(HealthPath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(authmiddleware.New(deps.Sessions, deps.Auth))
	app.Use(deps.Notify.Middleware())

	handlers := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&dashboard.Handler,
		&store.Handler,
		&cast.Handler,
		&shift.Handler,
		&confirm.Handler,
		&settingsbase.Handler,
		&baseapi.Handler,
		&user.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(dashboard.Path)
	})

	return service, nil
}
