// Package base provides the BASE connection settings of the current store.
package base

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/baseoauth"
	"github.com/castboard/castboard/internal/db/controller/basesettings"
	"github.com/castboard/castboard/internal/db/models"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/handler"
	"github.com/castboard/castboard/internal/web/navigation"
)

const (
	// Path is the path to the BASE settings page.
	Path = handler.RootPath + "settings/base"

	// DisconnectPath drops the stored tokens.
	DisconnectPath = Path + "/disconnect"

	// TemplateName is the settings template.
	TemplateName = "settings/base"
)

// Form holds the client credentials. An empty secret keeps the stored one.
type Form struct {
	ClientID     string `form:"client_id"     validate:"required,max=255,printascii"`
	ClientSecret string `form:"client_secret" validate:"max=255"`
}

// Service is the BASE settings handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the BASE settings handler.
var Handler = Service{}

// Init initializes the BASE settings handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Use(
			auth.RequirePermission(deps.Auth, auth.PermBaseSettings),
			handler.RequireStore(deps),
		)

		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
		router.Post("/disconnect", s.Disconnect)
	})

	return nil
}

func (s *Service) render(c *fiber.Ctx, settings *models.BaseSettings, form Form, errMsg string) error {
	st, _ := handler.CurrentStore(c)

	nav := handler.Nav(c, "BASE連携", navigation.SectionSettings).
		AddBreadcrumb("設定", "#").
		AddBreadcrumb("BASE連携", Path)

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation":  nav,
		"Settings":    settings,
		"Form":        form,
		"Error":       errMsg,
		"RedirectURL": baseoauth.RedirectURL(s.deps.Cfg.Webserver.URL),
		"AuthURL":     baseoauth.AuthPath + "?store_id=" + strconv.FormatUint(uint64(st.ID), 10),
	})
}

// Get renders the settings of the current store. A store without a row gets
// an empty form.
func (s *Service) Get(c *fiber.Ctx) error {
	st, _ := handler.CurrentStore(c)

	settings, err := basesettings.Get(s.deps.DB, st.ID)
	if errors.Is(err, basesettings.ErrSettingsNotFound) {
		log.Debug().Uint("store_id", st.ID).Msg("BASE settings not found, rendering empty form")
		return s.render(c, &models.BaseSettings{StoreID: st.ID}, Form{}, "")
	}

	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadSettings}) {
		return c.Redirect(handler.RootPath)
	}

	return s.render(c, settings, Form{ClientID: settings.ClientID}, "")
}

// Post saves the client credentials.
func (s *Service) Post(c *fiber.Ctx) error {
	st, _ := handler.CurrentStore(c)
	current := &models.BaseSettings{StoreID: st.ID}

	if existing, err := basesettings.Get(s.deps.DB, st.ID); err == nil {
		current = existing
	}

	var form Form
	if err := c.BodyParser(&form); err != nil {
		log.Error().Err(err).Msg("failed to parse BASE settings form")
		return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
			"Navigation": handler.Nav(c, "BASE連携", navigation.SectionSettings),
			"Settings":   current,
			"Error":      s.deps.Notify.Sprintf(notify.MsgInvalidRequest),
		}, handler.BaseLayout)
	}

	if err := s.deps.Validate.Struct(&form); err != nil {
		details := handler.ValidationDetails(err)
		log.Warn().Err(err).Uint("store_id", st.ID).Msg("validation failed for BASE settings")

		c.Status(fiber.StatusBadRequest)

		return s.render(c, current, form, s.deps.Notify.Message(notify.Options{
			Operation: notify.OpSaveSettings,
			Details:   details,
		}))
	}

	saved, err := basesettings.SaveCredentials(s.deps.DB, st.ID, form.ClientID, form.ClientSecret)
	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveSettings}) {
		return c.Redirect(Path)
	}

	log.Info().
		Uint("store_id", st.ID).
		Bool("connected", saved.Connected()).
		Msg("BASE settings saved")

	s.deps.Notify.Success(c, notify.MsgSaved)

	return c.Redirect(Path)
}

// Disconnect forgets the tokens of the store.
func (s *Service) Disconnect(c *fiber.Ctx) error {
	st, _ := handler.CurrentStore(c)

	err := basesettings.Disconnect(s.deps.DB, st.ID)
	if !s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveSettings}) {
		log.Info().Uint("store_id", st.ID).Msg("BASE disconnected")
		s.deps.Notify.Success(c, notify.MsgSaved)
	}

	return c.Redirect(Path)
}
