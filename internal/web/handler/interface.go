package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/config"
	"github.com/castboard/castboard/internal/confirm"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/session"
)

// ErrNilDeps is returned by Init when a required dependency is missing.
var ErrNilDeps = errors.New(ErrNilACDFatalLogMsg)

// Deps are the shared services handed to every handler.
type Deps struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Auth     *auth.Service
	Sessions *session.Manager
	Confirm  *confirm.Broker
	Notify   *notify.Notifier
	Validate *validator.Validate
}

// Check returns ErrNilDeps unless app and every dependency are set.
func (d *Deps) Check(app *fiber.App) error {
	if app == nil || d == nil || d.Cfg == nil || d.DB == nil || d.Auth == nil ||
		d.Sessions == nil || d.Confirm == nil || d.Notify == nil || d.Validate == nil {
		return ErrNilDeps
	}

	return nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
