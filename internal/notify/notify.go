package notify

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/message"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/web/session"
)

const (
	// LocalsToasts is the view variable holding the drained toasts.
	LocalsToasts = "Toasts"

	keyPrefix = "toast:"
)

// Kind is the severity of a toast.
type Kind string

// Toast kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Error codes attached to logged failures.
const (
	CodeNotFound   = "not_found"
	CodeDuplicate  = "duplicate"
	CodeForeignKey = "foreign_key"
	CodeDatabase   = "database"
	CodeUnexpected = "unexpected"
)

// Toast is a queued user message.
type Toast struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Options describe the failed operation. Details is shown to the user and
// must not carry internal error text.
type Options struct {
	Operation string
	Details   string
}

// Notifier queues toasts in the session storage.
type Notifier struct {
	storage fiber.Storage
	printer *message.Printer
	cookie  string
}

// New returns a Notifier for storage; cookie is the session cookie name.
func New(storage fiber.Storage, locale, cookie string) *Notifier {
	return &Notifier{storage: storage, printer: Printer(locale), cookie: cookie}
}

// Message renders the user text for a failed operation.
func (n *Notifier) Message(opts Options) string {
	op := n.printer.Sprintf(opts.Operation)
	if opts.Details == "" {
		return n.printer.Sprintf(msgFailed, op)
	}

	return n.printer.Sprintf(msgFailedWithDetails, op, n.printer.Sprintf(opts.Details))
}

// Sprintf localizes key with args.
func (n *Notifier) Sprintf(key string, args ...any) string {
	return n.printer.Sprintf(key, args...)
}

// HandleDBError logs a database error and queues an error toast.
// It returns false without doing anything when err is nil.
func (n *Notifier) HandleDBError(c *fiber.Ctx, err error, opts Options) bool {
	if err == nil {
		return false
	}

	code := Classify(err)

	log.Error().
		Err(err).
		Str("operation", opts.Operation).
		Str("details", opts.Details).
		Str("code", code).
		Str("path", c.Path()).
		Msg("database operation failed")

	n.Push(c, Toast{Kind: KindError, Message: n.Message(opts)})

	return true
}

// HandleError logs any error and queues an error toast. A nil err is ignored.
func (n *Notifier) HandleError(c *fiber.Ctx, err error, opts Options) {
	if err == nil {
		return
	}

	log.Error().
		Err(err).
		Str("operation", opts.Operation).
		Str("details", opts.Details).
		Str("code", CodeUnexpected).
		Str("path", c.Path()).
		Msg("operation failed")

	n.Push(c, Toast{Kind: KindError, Message: n.Message(opts)})
}

// Success queues a localized success toast.
func (n *Notifier) Success(c *fiber.Ctx, key string, args ...any) {
	n.Push(c, Toast{Kind: KindSuccess, Message: n.printer.Sprintf(key, args...)})
}

// Push appends t to the queue of the current session. Requests without a
// session drop the toast.
func (n *Notifier) Push(c *fiber.Ctx, t Toast) {
	sessionID := n.sessionID(c)
	if sessionID == "" {
		return
	}

	toasts, err := n.read(sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("reading toast queue")
	}

	toasts = append(toasts, t)

	raw, err := json.Marshal(toasts)
	if err != nil {
		log.Error().Err(err).Msg("encoding toast queue")
		return
	}

	if err = n.storage.Set(keyPrefix+sessionID, raw, 0); err != nil {
		log.Error().Err(err).Msg("writing toast queue")
	}
}

// Drain returns and clears the queued toasts of the current session.
func (n *Notifier) Drain(c *fiber.Ctx) []Toast {
	sessionID := n.sessionID(c)
	if sessionID == "" {
		return nil
	}

	toasts, err := n.read(sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("reading toast queue")
	}

	if len(toasts) == 0 {
		return nil
	}

	if err = n.storage.Delete(keyPrefix + sessionID); err != nil {
		log.Warn().Err(err).Msg("clearing toast queue")
	}

	return toasts
}

// Middleware drains the queue into the LocalsToasts local for GET requests,
// leaving it intact for posts that end in a redirect.
func (n *Notifier) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet {
			if toasts := n.Drain(c); len(toasts) > 0 {
				c.Locals(LocalsToasts, toasts)
			}
		}

		return c.Next()
	}
}

func (n *Notifier) read(sessionID string) ([]Toast, error) {
	raw, err := n.storage.Get(keyPrefix + sessionID)
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	var toasts []Toast
	if err = json.Unmarshal(raw, &toasts); err != nil {
		return nil, err
	}

	return toasts, nil
}

func (n *Notifier) sessionID(c *fiber.Ctx) string {
	if id := session.IDFrom(c); id != "" {
		return id
	}

	return c.Cookies(n.cookie)
}

// Classify maps gorm errors to an error code.
func Classify(err error) string {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return CodeDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return CodeForeignKey
	default:
		return CodeDatabase
	}
}
