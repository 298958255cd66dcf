package view

import (
	"context"
	"sync"
	"time"

	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/service"
)

// Looker performs a pincode lookup
type Looker = service.Looker

// Recorder persists completed lookups
type Recorder = service.Recorder

// Option configures a Controller
type Option func(*Controller)

// WithRecorder stores every completed lookup
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger used for lookup events
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithOnChange registers a callback invoked after every asynchronous
// transition. It is called without the controller lock held.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller drives one form's State and owns its in-flight lookup.
// It is safe for concurrent use.
type Controller struct {
	looker   Looker
	recorder Recorder
	logger   *logging.Logger
	onChange func(State)

	mu         sync.Mutex
	state      State
	cancel     context.CancelFunc
	lastActive time.Time

	ctx     context.Context
	stop    context.CancelFunc
	running sync.WaitGroup
}

// NewController creates a Controller in the AwaitingInput phase
func NewController(looker Looker, opts ...Option) *Controller {
	ctx, stop := context.WithCancel(context.Background())
	c := &Controller{
		looker:     looker,
		logger:     logging.NopLogger(),
		ctx:        ctx,
		stop:       stop,
		lastActive: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = time.Now()
	return c.state
}

// LastActive returns when the controller was last used
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Submit validates input and, when valid, starts the lookup in the
// background. The returned bool is false when a submission is not allowed
// in the current phase.
func (c *Controller) Submit(input string) (State, bool) {
	c.mu.Lock()
	next, ok := Submit(c.state, input)
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("submission rejected", "phase", next.Phase.String())
		return next, false
	}
	c.state = next
	c.lastActive = time.Now()

	if next.Phase == Loading {
		ctx, cancel := context.WithCancel(c.ctx)
		c.cancel = cancel
		c.running.Add(1)
		go c.run(ctx, next.Generation, next.Code)
	}
	c.mu.Unlock()

	if next.Phase == Loading {
		c.logger.Info("lookup started", "pincode", next.Code.String())
	} else {
		c.logger.Debug("invalid pincode", "input", input)
	}
	return next, true
}

func (c *Controller) run(ctx context.Context, generation uint64, code model.PostalCode) {
	defer c.running.Done()

	start := time.Now()
	result := c.looker.Lookup(ctx, code)
	elapsed := time.Since(start)

	c.mu.Lock()
	applied := c.state.Phase == Loading && c.state.Generation == generation
	c.state = Complete(c.state, generation, result)
	if applied && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	snapshot := c.state
	c.mu.Unlock()

	if !applied {
		c.logger.Debug("stale lookup dropped", "pincode", code.String(), "generation", generation)
		return
	}

	log := c.logger.With("pincode", code.String(), "outcome", string(result.Outcome), "duration_ms", elapsed.Milliseconds())
	if result.Err != nil {
		log.Warn("lookup failed", "error", result.Err.Error(), "kind", string(service.KindOf(result.Err)))
	} else {
		log.Info("lookup completed", "records", len(result.Records))
	}

	c.record(code, result, elapsed)

	if c.onChange != nil {
		c.onChange(snapshot)
	}
}

func (c *Controller) record(code model.PostalCode, result model.QueryResult, elapsed time.Duration) {
	if c.recorder == nil || c.ctx.Err() != nil {
		return
	}

	rec := service.NewLookupRecord(code, result, elapsed)
	if err := c.recorder.Record(c.ctx, rec); err != nil {
		c.logger.Error("failed to record lookup", "pincode", rec.Pincode, "error", err.Error())
	}
}

// SetFilter re-filters the current results without fetching
func (c *Controller) SetFilter(text string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = SetFilter(c.state, text)
	c.lastActive = time.Now()
	return c.state
}

// Cancel abandons the in-flight lookup, if any
func (c *Controller) Cancel() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == Loading && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Cancel(c.state)
	c.lastActive = time.Now()
	return c.state
}

// Reset returns to the input stage after results are shown
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reset(c.state)
	c.lastActive = time.Now()
	return c.state
}

// Wait blocks until no lookup goroutine is running
func (c *Controller) Wait() {
	c.running.Wait()
}

// Close cancels any in-flight lookup and waits for it to return
func (c *Controller) Close() {
	c.stop()
	c.running.Wait()
}
