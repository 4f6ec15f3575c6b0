package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/db/models"
	"github.com/castboard/castboard/internal/web/session"
)

// LocalsStore holds the *models.Store selected for the request.
const LocalsStore = "CurrentStore"

// CurrentStore returns the store set by RequireStore.
func CurrentStore(c *fiber.Ctx) (*models.Store, bool) {
	st, ok := c.Locals(LocalsStore).(*models.Store)

	return st, ok && st != nil
}

// RequireStore makes sure the session has a store selected that the principal
// may access, and loads it. Otherwise the user is sent to the store picker.
func RequireStore(deps *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, ok := session.From(c)
		if !ok {
			return c.Redirect(auth.LoginPath)
		}

		p, _ := auth.PrincipalFrom(c)

		allowed, err := deps.Auth.CanAccessStore(p, data.StoreID)
		if err != nil {
			log.Error().Err(err).Uint("store_id", data.StoreID).Msg("failed to check store access")
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		if !allowed {
			return c.Redirect(StoresPath)
		}

		var st models.Store
		if err = deps.DB.First(&st, data.StoreID).Error; err != nil {
			log.Warn().Err(err).Uint("store_id", data.StoreID).Msg("selected store is gone")
			return c.Redirect(StoresPath)
		}

		c.Locals(LocalsStore, &st)

		return c.Next()
	}
}
