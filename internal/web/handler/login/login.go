package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/web/handler"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = auth.LoginPath

	// TemplateName is the login template.
	TemplateName = "login"

	dashboardPath = handler.RootPath + "dashboard"
)

// Form is the login form.
type Form struct {
	Username string `form:"username" validate:"required,max=100"`
	Password string `form:"password" validate:"required"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	deps  *handler.Deps
	local *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps
	s.local = auth.NewLocalProvider(deps.DB)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{
		"Title": s.deps.Cfg.Title,
	})
}

func (s *Service) renderError(c *fiber.Ctx, username string, err error) error {
	return c.Render(TemplateName, fiber.Map{
		"Title":    s.deps.Cfg.Title,
		"Username": username,
		"error":    err.Error(),
	})
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.renderError(c, "", ErrInvalidFormData)
	}

	if err := s.deps.Validate.Struct(form); err != nil {
		return s.renderError(c, form.Username, ErrInvalidFormData)
	}

	user, err := s.local.Authenticate(form.Username, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound),
			errors.Is(err, auth.ErrInvalidPassword),
			errors.Is(err, auth.ErrUserAccountDisabled):
			log.Info().Str("username", form.Username).Err(err).Msg("login rejected")
			return s.renderError(c, form.Username, ErrInvalidCredentials)
		default:
			log.Error().Err(err).Msg("login failed")
			return s.renderError(c, form.Username, ErrInternalServerError)
		}
	}

	data := &session.Data{UserID: user.ID, Username: user.Username}

	// a user with exactly one store starts in it
	if principal, errPrincipal := s.deps.Auth.Principal(user.ID); errPrincipal == nil {
		if stores, errStores := s.deps.Auth.StoresFor(principal); errStores == nil && len(stores) == 1 {
			data.StoreID = stores[0].ID
		}
	}

	sessionID, err := s.deps.Sessions.Create(c, data)
	if err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return s.renderError(c, form.Username, ErrInternalServerError)
	}

	c.Locals(session.LocalsIDKey, sessionID)

	log.Info().Str("username", user.Username).Msg("user logged in")

	if data.StoreID == 0 {
		return c.Redirect(handler.StoresPath)
	}

	return c.Redirect(dashboardPath)
}
