package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	loginPath     = auth.LoginPath
	logoutPath    = "/logout"
	dashboardPath = "/dashboard"
)

var publicPrefixes = []string{"/static", "/healthz", "/metrics", logoutPath}

// New returns the session middleware.
func New(sessions *session.Manager, authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := strings.ToLower(c.Path())

		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		isLoginPage := IsLoginPage(c)

		sessionID, data, err := sessions.Load(c)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) && !errors.Is(err, session.ErrSessionNotFound) {
				log.Error().Err(err).Msg("failed to read session")
			}

			if isLoginPage {
				return c.Next()
			}

			return c.Redirect(loginPath)
		}

		principal, err := authService.Principal(data.UserID)
		if err != nil {
			log.Warn().Err(err).Uint64("user_id", data.UserID).Msg("dropping session of unusable account")

			if errDestroy := sessions.Destroy(c); errDestroy != nil {
				log.Error().Err(errDestroy).Msg("failed to delete session")
			}

			if isLoginPage {
				return c.Next()
			}

			return c.Redirect(loginPath)
		}

		if isLoginPage {
			return c.Redirect(dashboardPath)
		}

		c.Locals(session.LocalsKey, data)
		c.Locals(session.LocalsIDKey, sessionID)
		auth.SetPrincipal(c, principal)

		return c.Next()
	}
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Path()), loginPath)
}
