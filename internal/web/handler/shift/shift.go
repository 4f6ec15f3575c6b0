// Package shift provides the shift schedule of the current store.
package shift

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/confirm"
	castdb "github.com/castboard/castboard/internal/db/controller/cast"
	shiftdb "github.com/castboard/castboard/internal/db/controller/shift"
	"github.com/castboard/castboard/internal/db/models"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/shifttime"
	"github.com/castboard/castboard/internal/web/handler"
	confirmhandler "github.com/castboard/castboard/internal/web/handler/confirm"
	"github.com/castboard/castboard/internal/web/navigation"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	// Path is the shift schedule.
	Path = handler.RootPath + "shifts"

	// TemplateName is the schedule template.
	TemplateName = "shifts/list"
)

// Row is one displayed shift.
type Row struct {
	ID       uint
	CastName string
	Time     string
	Minutes  int
	Note     string
}

// Service is the shift handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
	now  func() time.Time
}

// Handler is the shift handler.
var Handler = Service{}

// Init initializes the shift handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps
	if s.now == nil {
		s.now = time.Now
	}

	app.Route(Path, func(router fiber.Router) {
		router.Use(
			auth.RequirePermission(deps.Auth, auth.PermShiftManage),
			handler.RequireStore(deps),
		)

		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Create)
		router.Post("/:id/delete", s.Delete)
	})

	return nil
}

// DateURL returns the schedule url of a business date.
func DateURL(date string) string {
	return Path + "?date=" + date
}

func (s *Service) date(c *fiber.Ctx) string {
	date := c.Query("date")
	if _, err := time.Parse(shifttime.DateLayout, date); err != nil {
		return shifttime.BusinessDate(s.now())
	}

	return date
}

// List renders the schedule of the requested business date, today by default.
func (s *Service) List(c *fiber.Ctx) error {
	st, _ := handler.CurrentStore(c)
	date := s.date(c)

	var rows []Row

	shifts, err := shiftdb.ListByDate(s.deps.DB, st.ID, date)
	if !s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadShifts}) {
		rows = toRows(shifts)
	}

	casts, err := castdb.List(s.deps.DB, st.ID, true)
	s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadCasts})

	day, _ := time.Parse(shifttime.DateLayout, date)

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation":  handler.Nav(c, "シフト", navigation.SectionShifts).AddBreadcrumb("シフト", DateURL(date)),
		"Date":        date,
		"PrevDate":    day.AddDate(0, 0, -1).Format(shifttime.DateLayout),
		"NextDate":    day.AddDate(0, 0, 1).Format(shifttime.DateLayout),
		"Rows":        rows,
		"Casts":       casts,
		"TimeOptions": shifttime.GenerateTimeOptions(),
	})
}

func toRows(shifts []models.Shift) []Row {
	rows := make([]Row, 0, len(shifts))

	for i := range shifts {
		minutes, _ := shifttime.Duration(shifts[i].StartTime, shifts[i].EndTime)

		rows = append(rows, Row{
			ID:       shifts[i].ID,
			CastName: shifts[i].Cast.Name,
			Time:     shifttime.FormatShiftTime(shifts[i].StartTime, shifts[i].EndTime),
			Minutes:  minutes,
			Note:     shifts[i].Note,
		})
	}

	return rows
}

// details maps shift validation errors to the text shown to the user.
func details(err error) string {
	switch {
	case errors.Is(err, shiftdb.ErrOverlap):
		return notify.DetailShiftOverlap
	case errors.Is(err, shiftdb.ErrInvalidTime), errors.Is(err, shifttime.ErrInvalidTime),
		errors.Is(err, shifttime.ErrOutOfRange):
		return notify.DetailShiftTime
	case errors.Is(err, shifttime.ErrEndNotAfterStart):
		return notify.DetailShiftOrder
	case errors.Is(err, shiftdb.ErrCastNotInStore):
		return notify.DetailCastNotInStore
	}

	return ""
}

// Create adds a shift and returns to the schedule of its date.
func (s *Service) Create(c *fiber.Ctx) error {
	var form shiftdb.Form

	if err := c.BodyParser(&form); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{Operation: notify.OpSaveShift})
		return c.Redirect(Path)
	}

	back := DateURL(form.Date)

	if err := s.deps.Validate.Struct(&form); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{
			Operation: notify.OpSaveShift,
			Details:   handler.ValidationDetails(err),
		})

		if _, errDate := time.Parse(shifttime.DateLayout, form.Date); errDate != nil {
			back = Path
		}

		return c.Redirect(back)
	}

	st, _ := handler.CurrentStore(c)

	created, err := shiftdb.Create(s.deps.DB, st.ID, form)
	if detail := details(err); detail != "" {
		log.Debug().Err(err).Uint("store_id", st.ID).Msg("shift rejected")
		s.deps.Notify.Push(c, notify.Toast{
			Kind:    notify.KindError,
			Message: s.deps.Notify.Message(notify.Options{Operation: notify.OpSaveShift, Details: detail}),
		})

		return c.Redirect(back)
	}

	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveShift}) {
		return c.Redirect(back)
	}

	log.Info().Uint("store_id", st.ID).Uint("shift_id", created.ID).Str("date", created.Date).Msg("shift created")
	s.deps.Notify.Success(c, notify.MsgSaved)

	return c.Redirect(back)
}

// Delete asks for confirmation before removing a shift.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	st, _ := handler.CurrentStore(c)

	existing, err := shiftdb.Get(s.deps.DB, st.ID, uint(id))
	if errors.Is(err, shiftdb.ErrShiftNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpDeleteShift}) {
		return c.Redirect(Path)
	}

	storeID := st.ID
	db := s.deps.DB

	p := s.deps.Confirm.Ask(
		existing.Cast.Name+"さんの"+existing.Date+" "+
			shifttime.FormatShiftTime(existing.StartTime, existing.EndTime)+"のシフトを削除しますか?",
		DateURL(existing.Date),
		func(ctx context.Context) error {
			return shiftdb.Delete(db.WithContext(ctx), storeID, existing.ID)
		},
		confirm.WithOperation(notify.OpDeleteShift),
		confirm.WithSuccess(notify.MsgDeleted),
		confirm.WithOwner(session.IDFrom(c)),
	)

	return c.Redirect(confirmhandler.URL(p))
}
