// Package confirm serves the confirmation dialog of destructive actions.
package confirm

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/confirm"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/handler"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	// Path is the prefix of prompt urls.
	Path = handler.RootPath + "confirm"

	// TemplateName is the dialog template.
	TemplateName = "confirm/dialog"
)

// URL returns the dialog url of a prompt.
func URL(p *confirm.Prompt) string {
	return Path + "/" + p.ID
}

// Service is the confirmation handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the confirmation handler.
var Handler = Service{}

// Init initializes the confirmation handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Get("/:id", auth.Gate(deps.Auth, auth.Requirement{}), s.Get)
		router.Post("/:id", auth.Gate(deps.Auth, auth.Requirement{}), s.Post)
	})

	return nil
}

func (s *Service) prompt(c *fiber.Ctx) (*confirm.Prompt, bool) {
	p, err := s.deps.Confirm.Get(c.Params("id"))
	if err != nil {
		return nil, false
	}

	if p.Owner != "" && p.Owner != session.IDFrom(c) {
		log.Warn().Str("prompt", p.ID).Msg("confirmation opened by another session")
		return nil, false
	}

	return p, true
}

// Get renders the dialog.
func (s *Service) Get(c *fiber.Ctx) error {
	p, ok := s.prompt(c)
	if !ok || p.Resolved() {
		s.deps.Notify.Push(c, notify.Toast{Kind: notify.KindError, Message: s.deps.Notify.Sprintf(notify.MsgPromptExpired)})
		return c.Redirect(handler.RootPath)
	}

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation": handler.Nav(c, "確認", ""),
		"Prompt":     p,
		"Action":     URL(p),
	})
}

// Post answers the prompt with the "accepted" form value and goes back to
// the prompt's return url.
func (s *Service) Post(c *fiber.Ctx) error {
	p, ok := s.prompt(c)
	if !ok {
		s.deps.Notify.Push(c, notify.Toast{Kind: notify.KindError, Message: s.deps.Notify.Sprintf(notify.MsgPromptExpired)})
		return c.Redirect(handler.RootPath)
	}

	accepted := strings.EqualFold(c.FormValue("accepted"), "true")

	_, err := s.deps.Confirm.Resolve(c.UserContext(), p.ID, accepted)

	switch {
	case errors.Is(err, confirm.ErrPromptResolved), errors.Is(err, confirm.ErrPromptNotFound):
		s.deps.Notify.Push(c, notify.Toast{Kind: notify.KindError, Message: s.deps.Notify.Sprintf(notify.MsgPromptExpired)})
	case err != nil:
		s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: p.Operation})
	case accepted && p.Success != "":
		s.deps.Notify.Success(c, p.Success)
	case accepted:
		s.deps.Notify.Success(c, notify.MsgDone)
	default:
		s.deps.Notify.Success(c, notify.MsgCancelled)
	}

	return c.Redirect(p.ReturnURL)
}
