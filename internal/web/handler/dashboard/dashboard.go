// Package dashboard provides the dashboard of the current store.
package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/db/controller/basesettings"
	"github.com/castboard/castboard/internal/db/controller/cast"
	"github.com/castboard/castboard/internal/db/controller/shift"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/shifttime"
	"github.com/castboard/castboard/internal/web/handler"
	"github.com/castboard/castboard/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"
)

// ShiftRow is one line of today's shifts.
type ShiftRow struct {
	CastName string
	Time     string
	Minutes  int
	Note     string
}

// Data represents the complete dashboard data.
type Data struct {
	BusinessDate  string
	ActiveCasts   int64
	Shifts        []ShiftRow
	TotalMinutes  int
	BaseConnected bool
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
	now  func() time.Time
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps
	if s.now == nil {
		s.now = time.Now
	}

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(deps.Auth, auth.PermDashboardView),
		handler.RequireStore(deps),
		s.Get,
	)

	return nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	st, _ := handler.CurrentStore(c)
	nav := handler.Nav(c, "ダッシュボード", navigation.SectionDashboard)

	data := Data{BusinessDate: shifttime.BusinessDate(s.now())}

	var err error

	data.ActiveCasts, err = cast.CountActive(s.deps.DB, st.ID)
	s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadCasts})

	shifts, err := shift.ListByDate(s.deps.DB, st.ID, data.BusinessDate)
	if !s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadShifts}) {
		for i := range shifts {
			row := ShiftRow{
				CastName: shifts[i].Cast.Name,
				Time:     shifttime.FormatShiftTime(shifts[i].StartTime, shifts[i].EndTime),
				Note:     shifts[i].Note,
			}

			if minutes, errDuration := shifttime.Duration(shifts[i].StartTime, shifts[i].EndTime); errDuration == nil {
				row.Minutes = minutes
				data.TotalMinutes += minutes
			}

			data.Shifts = append(data.Shifts, row)
		}
	}

	if settings, errSettings := basesettings.Get(s.deps.DB, st.ID); errSettings == nil {
		data.BaseConnected = settings.Connected()
	}

	log.Debug().
		Uint("store_id", st.ID).
		Str("date", data.BusinessDate).
		Int("shifts", len(data.Shifts)).
		Msg("dashboard rendered")

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	})
}
