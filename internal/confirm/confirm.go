package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long an unanswered prompt is kept.
const DefaultTTL = 10 * time.Minute

// AcceptFunc is run when a prompt is accepted.
type AcceptFunc func(ctx context.Context) error

// Prompt is a single pending confirmation.
type Prompt struct {
	ID        string
	Message   string
	ReturnURL string
	CreatedAt time.Time

	// Operation labels the accept action in notifications.
	Operation string
	// Success is the message key shown once the accept action succeeded.
	Success string
	// Owner is the session allowed to answer, empty means anyone.
	Owner string

	onAccept AcceptFunc
	done     chan struct{}

	mu       sync.Mutex
	resolved bool
	accepted bool
	err      error
}

// Wait blocks until the prompt is resolved or ctx is done.
// It returns the answer and the error of the accept action, if any.
func (p *Prompt) Wait(ctx context.Context) (bool, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()

		return p.accepted, p.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Done is closed once the prompt is resolved.
func (p *Prompt) Done() <-chan struct{} {
	return p.done
}

// Resolved reports whether the prompt has an answer.
func (p *Prompt) Resolved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.resolved
}

// Broker holds all prompts keyed by id.
type Broker struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	prompts map[string]*Prompt
}

// NewBroker returns a Broker; a ttl <= 0 uses DefaultTTL.
func NewBroker(ttl time.Duration) *Broker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Broker{
		ttl:     ttl,
		now:     time.Now,
		prompts: make(map[string]*Prompt),
	}
}

// Option configures a prompt in Ask.
type Option func(*Prompt)

// WithOperation sets the operation label of the accept action.
func WithOperation(op string) Option {
	return func(p *Prompt) { p.Operation = op }
}

// WithSuccess sets the message key shown after a successful accept action.
func WithSuccess(key string) Option {
	return func(p *Prompt) { p.Success = key }
}

// WithOwner restricts answering to one session.
func WithOwner(sessionID string) Option {
	return func(p *Prompt) { p.Owner = sessionID }
}

// Ask registers a new prompt. onAccept may be nil.
func (b *Broker) Ask(message, returnURL string, onAccept AcceptFunc, opts ...Option) *Prompt {
	p := &Prompt{
		ID:        uuid.NewString(),
		Message:   message,
		ReturnURL: returnURL,
		CreatedAt: b.now(),
		onAccept:  onAccept,
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	b.mu.Lock()
	b.prompts[p.ID] = p
	b.mu.Unlock()

	return p
}

// Get returns the prompt with id.
func (b *Broker) Get(id string) (*Prompt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.prompts[id]
	if !ok {
		return nil, ErrPromptNotFound
	}

	return p, nil
}

// Resolve answers the prompt with id. When accepted, the accept action runs
// with ctx before the prompt is released; its error is returned and is also
// what Wait reports.
func (b *Broker) Resolve(ctx context.Context, id string, accepted bool) (*Prompt, error) {
	p, err := b.Get(id)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return p, ErrPromptResolved
	}

	p.resolved = true
	p.accepted = accepted
	p.mu.Unlock()

	var actionErr error
	if accepted && p.onAccept != nil {
		actionErr = p.onAccept(ctx)
	}

	p.mu.Lock()
	p.err = actionErr
	p.mu.Unlock()

	close(p.done)

	log.Debug().Str("prompt", p.ID).Bool("accepted", accepted).Err(actionErr).Msg("confirmation resolved")

	return p, actionErr
}

// Sweep cancels unanswered prompts older than the TTL and forgets resolved
// ones past it. It returns the number of prompts removed.
func (b *Broker) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0

	for id, p := range b.prompts {
		if now.Sub(p.CreatedAt) < b.ttl {
			continue
		}

		p.mu.Lock()
		if !p.resolved {
			p.resolved = true
			p.err = ErrPromptExpired
			close(p.done)
		}
		p.mu.Unlock()

		delete(b.prompts, id)

		removed++
	}

	return removed
}

// Len returns the number of tracked prompts.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.prompts)
}

// Run sweeps every interval until ctx is done.
func (b *Broker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := b.Sweep(t); n > 0 {
				log.Debug().Int("count", n).Msg("swept confirmation prompts")
			}
		}
	}
}
