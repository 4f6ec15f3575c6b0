// Package baseapi starts the BASE OAuth authorization of a store and
// receives its callback.
package baseapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/baseoauth"
	"github.com/castboard/castboard/internal/db/controller/basesettings"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/handler"
)

// Error texts of the JSON responses.
const (
	ErrTextStoreIDRequired = "store_id is required"
	ErrTextStoreIDInvalid  = "store_id is invalid"
	ErrTextNotConfigured   = "BASE API credentials not configured"
	ErrTextStartFailed     = "Failed to start BASE authorization"
	ErrTextForbidden       = "store access denied"
	ErrTextCodeRequired    = "code and state are required"
	ErrTextInvalidState    = "invalid state"
	ErrTextStateExpired    = "state expired"

	// SettingsPath is where the callback returns to.
	SettingsPath = handler.RootPath + "settings/base"

	exchangeTimeout = 15 * time.Second
)

// Service is the BASE OAuth handler service.
type Service struct {
	handler.Service
	deps   *handler.Deps
	signer *baseoauth.Signer
}

// Handler is the BASE OAuth handler.
var Handler = Service{}

// Init initializes the BASE OAuth handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps

	if s.signer == nil {
		signer, err := baseoauth.NewSigner(deps.Cfg.Base.StateSecret)
		if err != nil {
			return err
		}

		s.signer = signer
	}

	gate := auth.RequirePermission(deps.Auth, auth.PermBaseSettings)

	app.Get(baseoauth.AuthPath, gate, s.Authorize)
	app.Get(baseoauth.CallbackPath, gate, s.Callback)

	return nil
}

func jsonError(c *fiber.Ctx, status int, text string) error {
	return c.Status(status).JSON(fiber.Map{"error": text})
}

// Authorize redirects to the BASE authorization page of the store named by
// the store_id query parameter.
func (s *Service) Authorize(c *fiber.Ctx) error {
	raw := c.Query("store_id")
	if raw == "" {
		return jsonError(c, fiber.StatusBadRequest, ErrTextStoreIDRequired)
	}

	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return jsonError(c, fiber.StatusBadRequest, ErrTextStoreIDInvalid)
	}

	storeID := uint(id)
	p, _ := auth.PrincipalFrom(c)

	allowed, err := s.deps.Auth.CanAccessStore(p, storeID)
	if err != nil {
		log.Error().Err(err).Uint("store_id", storeID).Msg("failed to check store access")
		return jsonError(c, fiber.StatusInternalServerError, ErrTextStartFailed)
	}

	if !allowed {
		log.Warn().Str("user", p.Name()).Uint("store_id", storeID).Msg("BASE authorization for foreign store")
		return jsonError(c, fiber.StatusForbidden, ErrTextForbidden)
	}

	clientID, err := basesettings.ClientID(s.deps.DB, storeID)
	if err != nil {
		log.Warn().Err(err).Uint("store_id", storeID).Msg("BASE API credentials not configured")
		return jsonError(c, fiber.StatusBadRequest, ErrTextNotConfigured)
	}

	state, err := s.signer.Issue(storeID)
	if err != nil {
		log.Error().Err(err).Uint("store_id", storeID).Msg("failed to issue oauth state")
		return jsonError(c, fiber.StatusInternalServerError, ErrTextStartFailed)
	}

	target, err := baseoauth.AuthCodeURL(s.deps.Cfg.Base, s.deps.Cfg.Webserver.URL,
		baseoauth.Credentials{ClientID: clientID}, state)
	if err != nil {
		log.Error().Err(err).Uint("store_id", storeID).Msg("failed to build authorization url")
		return jsonError(c, fiber.StatusInternalServerError, ErrTextStartFailed)
	}

	c.Cookie(baseoauth.StateCookie(state, s.deps.Cfg.IsProduction()))

	log.Info().Uint("store_id", storeID).Str("user", p.Name()).Msg("BASE authorization started")

	return c.Redirect(target, fiber.StatusFound)
}

func stateErrorText(err error) string {
	if errors.Is(err, baseoauth.ErrStateExpired) {
		return ErrTextStateExpired
	}

	return ErrTextInvalidState
}

// Callback verifies the state, exchanges the code and stores the tokens.
func (s *Service) Callback(c *fiber.Ctx) error {
	cookie := c.Cookies(baseoauth.StateCookieName)
	c.Cookie(baseoauth.ExpiredStateCookie(s.deps.Cfg.IsProduction()))

	code, state := c.Query("code"), c.Query("state")

	if providerErr := c.Query("error"); providerErr != "" && code == "" {
		log.Warn().Str("error", providerErr).Msg("BASE authorization refused")
		s.fail(c)

		return c.Redirect(SettingsPath)
	}

	if code == "" || state == "" {
		return jsonError(c, fiber.StatusBadRequest, ErrTextCodeRequired)
	}

	st, err := s.signer.VerifyPair(cookie, state)
	if err != nil {
		log.Warn().Err(err).Msg("rejected BASE callback state")
		return jsonError(c, fiber.StatusBadRequest, stateErrorText(err))
	}

	p, _ := auth.PrincipalFrom(c)

	allowed, err := s.deps.Auth.CanAccessStore(p, st.StoreID)
	if err != nil || !allowed {
		log.Warn().Err(err).Str("user", p.Name()).Uint("store_id", st.StoreID).Msg("BASE callback for foreign store")
		return jsonError(c, fiber.StatusForbidden, ErrTextForbidden)
	}

	settings, err := basesettings.Get(s.deps.DB, st.StoreID)
	if err != nil {
		s.deps.Notify.HandleDBError(c, err, notify.Options{
			Operation: notify.OpConnectBase,
			Details:   notify.DetailNotConfigured,
		})

		return c.Redirect(SettingsPath)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), exchangeTimeout)
	defer cancel()

	token, err := baseoauth.Exchange(ctx, s.deps.Cfg.Base, s.deps.Cfg.Webserver.URL, baseoauth.Credentials{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
	}, code)
	if err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{Operation: notify.OpConnectBase})
		return c.Redirect(SettingsPath)
	}

	err = basesettings.SaveToken(s.deps.DB, st.StoreID, basesettings.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	})
	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpConnectBase}) {
		return c.Redirect(SettingsPath)
	}

	log.Info().Uint("store_id", st.StoreID).Time("expiry", token.Expiry).Msg("BASE connected")
	s.deps.Notify.Success(c, notify.MsgBaseConnected)

	return c.Redirect(SettingsPath)
}

// fail queues the connection failure toast without internal details.
func (s *Service) fail(c *fiber.Ctx) {
	s.deps.Notify.Push(c, notify.Toast{
		Kind:    notify.KindError,
		Message: s.deps.Notify.Message(notify.Options{Operation: notify.OpConnectBase}),
	})
}
