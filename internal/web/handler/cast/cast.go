// Package cast provides the cast pages of the current store.
package cast

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/confirm"
	castdb "github.com/castboard/castboard/internal/db/controller/cast"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/handler"
	confirmhandler "github.com/castboard/castboard/internal/web/handler/confirm"
	"github.com/castboard/castboard/internal/web/navigation"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	// Path is the cast list.
	Path = handler.RootPath + "casts"

	// ListTemplate lists the casts.
	ListTemplate = "casts/list"
	// FormTemplate is the new/edit form.
	FormTemplate = "casts/form"
)

// Service is the cast handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the cast handler.
var Handler = Service{}

// Init initializes the cast handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Use(
			auth.RequirePermission(deps.Auth, auth.PermCastManage),
			handler.RequireStore(deps),
		)

		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/new", s.New)
		router.Get("/:id/edit", s.Edit)
		router.Post("/:id", s.Update)
		router.Post("/:id/delete", s.Delete)
	})

	return nil
}

func castID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

// List renders the casts of the store.
func (s *Service) List(c *fiber.Ctx) error {
	st, _ := handler.CurrentStore(c)

	casts, err := castdb.List(s.deps.DB, st.ID, false)
	s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadCasts})

	return handler.Render(c, ListTemplate, fiber.Map{
		"Navigation": handler.Nav(c, "キャスト", navigation.SectionCasts).AddBreadcrumb("キャスト", Path),
		"Casts":      casts,
	})
}

func (s *Service) renderForm(c *fiber.Ctx, id uint, form castdb.Form) error {
	title := "キャスト登録"
	action := Path

	if id != 0 {
		title = "キャスト編集"
		action = Path + "/" + strconv.FormatUint(uint64(id), 10)
	}

	return handler.Render(c, FormTemplate, fiber.Map{
		"Navigation": handler.Nav(c, title, navigation.SectionCasts).
			AddBreadcrumb("キャスト", Path).
			AddBreadcrumb(title, action),
		"Form":   form,
		"Action": action,
		"ID":     id,
	})
}

// New renders the empty form.
func (s *Service) New(c *fiber.Ctx) error {
	return s.renderForm(c, 0, castdb.Form{Active: true})
}

// Edit renders the form of an existing cast.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, ok := castID(c)
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	st, _ := handler.CurrentStore(c)

	existing, err := castdb.Get(s.deps.DB, st.ID, id)
	if errors.Is(err, castdb.ErrCastNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadCasts}) {
		return c.Redirect(Path)
	}

	return s.renderForm(c, id, castdb.FormFrom(existing))
}

// parse reads and validates the form; on failure it queues a toast and
// re-renders the form.
func (s *Service) parse(c *fiber.Ctx, id uint) (castdb.Form, bool, error) {
	var form castdb.Form

	if err := c.BodyParser(&form); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{Operation: notify.OpSaveCast})
		return form, false, c.Redirect(Path)
	}

	if err := s.deps.Validate.Struct(&form); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{
			Operation: notify.OpSaveCast,
			Details:   handler.ValidationDetails(err),
		})

		c.Status(fiber.StatusUnprocessableEntity)

		return form, false, s.renderForm(c, id, form)
	}

	return form, true, nil
}

// Create stores a new cast.
func (s *Service) Create(c *fiber.Ctx) error {
	form, ok, err := s.parse(c, 0)
	if !ok {
		return err
	}

	st, _ := handler.CurrentStore(c)

	created, err := castdb.Create(s.deps.DB, st.ID, form)
	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveCast}) {
		return c.Redirect(Path + "/new")
	}

	log.Info().Uint("store_id", st.ID).Uint("cast_id", created.ID).Msg("cast created")
	s.deps.Notify.Success(c, notify.MsgSaved)

	return c.Redirect(Path)
}

// Update stores the edited cast.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := castID(c)
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	form, ok, err := s.parse(c, id)
	if !ok {
		return err
	}

	st, _ := handler.CurrentStore(c)

	err = castdb.Update(s.deps.DB, st.ID, id, form)
	if errors.Is(err, castdb.ErrCastNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveCast}) {
		return c.Redirect(Path)
	}

	s.deps.Notify.Success(c, notify.MsgSaved)

	return c.Redirect(Path)
}

// Delete asks for confirmation before removing the cast and its shifts.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := castID(c)
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	st, _ := handler.CurrentStore(c)

	existing, err := castdb.Get(s.deps.DB, st.ID, id)
	if errors.Is(err, castdb.ErrCastNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpDeleteCast}) {
		return c.Redirect(Path)
	}

	storeID := st.ID
	db := s.deps.DB

	p := s.deps.Confirm.Ask(
		"キャスト「"+existing.Name+"」とそのシフトを削除しますか?",
		Path,
		func(ctx context.Context) error {
			return castdb.Delete(db.WithContext(ctx), storeID, id)
		},
		confirm.WithOperation(notify.OpDeleteCast),
		confirm.WithSuccess(notify.MsgDeleted),
		confirm.WithOwner(session.IDFrom(c)),
	)

	return c.Redirect(confirmhandler.URL(p))
}
