// Package store lists the stores of the user, creates stores and switches the
// store the session works on.
package store

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/db/models"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/handler"
	"github.com/castboard/castboard/internal/web/navigation"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	// Path is the store list.
	Path = handler.StoresPath

	// TemplateName is the store list template.
	TemplateName = "stores/list"

	dashboardPath = handler.RootPath + "dashboard"
)

// Service is the store handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the store handler.
var Handler = Service{}

// Init initializes the store handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, auth.Gate(deps.Auth, auth.Requirement{}), s.List)
		router.Post(handler.RouterRootPath, auth.RequirePermission(deps.Auth, auth.PermStoreManage), s.Create)
		router.Post("/:id/select", auth.Gate(deps.Auth, auth.Requirement{}), s.Select)
	})

	return nil
}

// List renders the stores the user can work on.
func (s *Service) List(c *fiber.Ctx) error {
	p, _ := auth.PrincipalFrom(c)
	data, _ := session.From(c)

	stores, err := s.deps.Auth.StoresFor(p)
	s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadStores})

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation": handler.Nav(c, "店舗", navigation.SectionStores),
		"Stores":     stores,
		"CurrentID":  data.StoreID,
		"CanManage":  p.Has(auth.PermStoreManage),
		"Form":       models.Store{},
	})
}

// Create adds a store. Creators who are not superadmin become its members.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(models.Store)

	if err := c.BodyParser(form); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{Operation: notify.OpSaveStore})
		return c.Redirect(Path)
	}

	st := models.Store{Name: form.Name, Code: form.Code}

	if err := s.deps.Validate.Struct(&st); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{
			Operation: notify.OpSaveStore,
			Details:   handler.ValidationDetails(err),
		})

		return c.Redirect(Path)
	}

	if s.deps.Notify.HandleDBError(c, s.deps.DB.Create(&st).Error, notify.Options{Operation: notify.OpSaveStore}) {
		return c.Redirect(Path)
	}

	if p, ok := auth.PrincipalFrom(c); ok && !p.SuperAdmin {
		err := s.deps.Auth.AddStoreMember(p.UserID, st.ID)
		s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveStore})
	}

	log.Info().Uint("store_id", st.ID).Str("code", st.Code).Msg("store created")
	s.deps.Notify.Success(c, notify.MsgSaved)

	return c.Redirect(Path)
}

// Select makes a store the current store of the session.
func (s *Service) Select(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	p, _ := auth.PrincipalFrom(c)

	allowed, err := s.deps.Auth.CanAccessStore(p, uint(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check store access")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if !allowed {
		log.Warn().Uint64("user_id", p.UserID).Uint64("store_id", id).Msg("store switch denied")
		return auth.Deny(c, s.deps.Auth.DeniedRedirectDelay)
	}

	var st models.Store
	if s.deps.Notify.HandleDBError(c, s.deps.DB.First(&st, id).Error, notify.Options{Operation: notify.OpLoadStores}) {
		return c.Redirect(Path)
	}

	data, _ := session.From(c)
	updated := *data
	updated.StoreID = st.ID

	if err = s.deps.Sessions.Write(session.IDFrom(c), &updated); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	s.deps.Notify.Success(c, notify.MsgStoreSelected, st.Name)

	return c.Redirect(dashboardPath)
}
