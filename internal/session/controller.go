package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"scholarship-test-service/internal/domain"
)

// DefaultDuration is the reference test length.
const DefaultDuration = 45 * time.Minute

// API is the server boundary a session talks to.
type API interface {
	Questions(ctx context.Context) ([]domain.SanitizedQuestion, error)
	SubmitTest(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResponse, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithTickPeriod changes the length of one countdown step (one second by default).
func WithTickPeriod(d time.Duration) Option {
	return func(c *Controller) { c.tickPeriod = d }
}

// WithObserver registers a callback invoked with a fresh snapshot after every change.
// Calls are serialized and arrive in the order the changes were applied; a snapshot
// overtaken by a newer one is skipped. The callback may read Snapshot but must not
// call mutating Controller methods.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) { c.observer = fn }
}

// Controller owns one test attempt end to end. A new attempt needs a new Controller.
type Controller struct {
	api        API
	tickPeriod time.Duration
	observer   func(Snapshot)
	sf         singleflight.Group

	notifyMu  sync.Mutex
	delivered uint64

	mu         sync.Mutex
	state      state
	countdown  *Countdown
	generation int
	seq        uint64
	done       chan struct{}
}

func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:        api,
		tickPeriod: time.Second,
		state:      newState(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current read-only view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{s: c.state}
}

// Done is closed once the attempt is scored.
func (c *Controller) Done() <-chan struct{} { return c.done }

// LoadQuestions fetches the sanitized question set once per session.
// Later and concurrent calls share the first result.
func (c *Controller) LoadQuestions(ctx context.Context) ([]domain.SanitizedQuestion, error) {
	if snap := c.Snapshot(); snap.Loaded() {
		return snap.Questions(), nil
	}
	v, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		if snap := c.Snapshot(); snap.Loaded() {
			return snap.Questions(), nil
		}
		c.dispatch(loadStarted{})
		qs, err := c.api.Questions(ctx)
		if err != nil {
			c.dispatch(loadFailed{err: err})
			return nil, err
		}
		snap, _ := c.dispatch(questionsLoaded{questions: qs})
		return snap.Questions(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.SanitizedQuestion), nil
}

// SelectAnswer records an option for a question, replacing any earlier choice.
func (c *Controller) SelectAnswer(questionID int64, option string) error {
	_, err := c.dispatch(answerSelected{questionID: questionID, option: option})
	return err
}

// ToggleFlag marks or unmarks a question for review.
func (c *Controller) ToggleFlag(questionID int64) error {
	_, err := c.dispatch(flagToggled{questionID: questionID})
	return err
}

// Navigate moves the pointer by delta. Moving outside the question set is a no-op.
func (c *Controller) Navigate(delta int) bool {
	c.mu.Lock()
	target := c.state.index + delta
	c.mu.Unlock()
	return c.GoTo(target)
}

// GoTo moves the pointer to index. Out of range is a no-op.
func (c *Controller) GoTo(index int) bool {
	_, err := c.dispatch(moved{index: index})
	return err == nil
}

// StartTimer starts the countdown, cancelling any countdown already running.
// Cancelling ctx stops the countdown without submitting; ctx is also used for
// the automatic submission on expiry.
func (c *Controller) StartTimer(ctx context.Context, seconds int) error {
	c.mu.Lock()
	next, err := reduce(c.state, timerStarted{seconds: seconds})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if c.countdown != nil {
		c.countdown.Stop()
	}
	c.generation++
	gen := c.generation
	cd := StartCountdown(seconds, c.tickPeriod)
	c.countdown = cd
	c.state = next
	snap, seq := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap, seq)
	go c.watch(ctx, gen, cd)
	return nil
}

// Submit sends the answer set once. Calls while a request is in flight or after
// completion are no-ops. On failure answers and flags stay intact for a retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	next, err := reduce(c.state, submitStarted{})
	if errors.Is(err, errSuppressed) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	req := next.request()
	snap, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap, seq)

	resp, err := c.api.SubmitTest(ctx, req)
	if err != nil {
		c.dispatch(submitFailed{err: err})
		return err
	}

	c.mu.Lock()
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	c.generation++
	c.state, _ = reduce(c.state, submitSucceeded{result: resp})
	close(c.done)
	snap, seq = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap, seq)
	return nil
}

// Acknowledge confirms the user has seen the result and lifts the navigation guard.
func (c *Controller) Acknowledge() {
	c.dispatch(acknowledged{})
}

// BlocksNavigation reports whether leaving now should prompt for confirmation.
func (c *Controller) BlocksNavigation() bool {
	return c.Snapshot().BlocksNavigation()
}

// Close stops the countdown of an abandoned attempt. Nothing is sent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	c.generation++
}

// watch turns countdown output into session actions. The expired signal is
// consumed here exactly once and becomes a single submission attempt.
func (c *Controller) watch(ctx context.Context, gen int, cd *Countdown) {
	ticks := cd.Ticks()
	for ticks != nil {
		select {
		case <-ctx.Done():
			cd.Stop()
			return
		case remaining, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			c.dispatchFor(gen, ticked{remaining: remaining})
		}
	}
	select {
	case <-cd.Expired():
	default:
		return
	}
	if !c.dispatchFor(gen, expired{}) {
		return
	}
	_ = c.Submit(ctx)
}

func (c *Controller) dispatch(action any) (Snapshot, error) {
	c.mu.Lock()
	next, err := reduce(c.state, action)
	if err != nil {
		snap := Snapshot{s: c.state}
		c.mu.Unlock()
		return snap, err
	}
	c.state = next
	snap, seq := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap, seq)
	return snap, nil
}

// dispatchFor applies a timer action only if it belongs to the current countdown.
func (c *Controller) dispatchFor(gen int, action any) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	next, err := reduce(c.state, action)
	if err != nil {
		c.mu.Unlock()
		return false
	}
	c.state = next
	snap, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap, seq)
	return true
}

// snapshotLocked numbers the current state for ordered delivery. c.mu must be held.
func (c *Controller) snapshotLocked() (Snapshot, uint64) {
	c.seq++
	return Snapshot{s: c.state}, c.seq
}

func (c *Controller) notify(snap Snapshot, seq uint64) {
	if c.observer == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.delivered {
		return
	}
	c.delivered = seq
	c.observer(snap)
}
