package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireloop/assessd/internal/model"
)

// Controller state errors.
var (
	ErrClosed         = errors.New("session is closed")
	ErrNotReady       = errors.New("session has already started")
	ErrNotRunning     = errors.New("session is not running")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// Option configures a Controller.
type Option func(*Controller)

// WithIntervals overrides the heartbeat and snapshot cadence.
func WithIntervals(heartbeat, snapshot time.Duration) Option {
	return func(c *Controller) {
		c.heartbeatEvery = heartbeat
		c.snapshotEvery = snapshot
	}
}

// WithSnapshotSource installs a capture source for proctoring snapshots.
// Without one, only heartbeats are reported.
func WithSnapshotSource(src SnapshotSource) Option {
	return func(c *Controller) { c.snapshots = src }
}

// WithBlockedCallback registers a callback fired on every intercepted
// back-navigation attempt after the session reaches Result. Intended for
// UX messaging only.
func WithBlockedCallback(fn func()) Option {
	return func(c *Controller) { c.onBlocked = fn }
}

// Controller drives one assessment session through its three phases:
// Ready → Running → Result, strictly in that order. It owns the answer
// drafts, the proctoring reporter's lifecycle, and the navigation guard
// arming. All methods are safe for concurrent use.
type Controller struct {
	client *Client
	guard  NavigationGuard
	log    zerolog.Logger

	heartbeatEvery time.Duration
	snapshotEvery  time.Duration
	snapshots      SnapshotSource
	onBlocked      func()

	rootCtx context.Context
	cancel  context.CancelFunc

	entryToken string

	mu         sync.Mutex
	phase      Phase
	submitting bool
	closed     bool
	reporter   *Reporter
}

// NewController builds a session in the Ready phase holding only the
// entry token. A nil guard degrades to a no-op, matching the behavior
// when the host has no history facility.
func NewController(client *Client, guard NavigationGuard, token string, log zerolog.Logger, opts ...Option) *Controller {
	if guard == nil {
		guard = NoopGuard{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		client:         client,
		guard:          guard,
		log:            log.With().Str("component", "session_controller").Logger(),
		heartbeatEvery: DefaultHeartbeatInterval,
		snapshotEvery:  DefaultSnapshotInterval,
		rootCtx:        ctx,
		cancel:         cancel,
		entryToken:     token,
		phase:          Ready{Token: token},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current phase tag.
func (c *Controller) Phase() PhaseKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase.Kind()
}

// Start performs the session bootstrap: one start call with the token.
// On success the session transitions to Running and the proctoring
// reporter begins. On any failure the session stays Ready and the error
// is surfaced; retrying is the caller's decision, never automatic.
//
// An empty question list is accepted: the Running phase handles zero
// questions by allowing immediate submission.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	ready, ok := c.phase.(Ready)
	if !ok {
		c.mu.Unlock()
		return ErrNotReady
	}
	c.mu.Unlock()

	resp, err := c.client.StartSession(ctx, ready.Token)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		// Closed while the request was in flight: discard the response
		// without touching state.
		return ErrClosed
	}
	if err != nil {
		return err
	}
	if _, stillReady := c.phase.(Ready); !stillReady {
		// A concurrent Start won the race; its session state stands.
		return ErrNotReady
	}

	running := &Running{
		TestID:      resp.TestID.String(),
		CandidateID: resp.CandidateID.String(),
		Questions:   resp.Questions,
		drafts:      make(map[int]string),
	}
	c.phase = running

	c.reporter = NewReporter(c.client, model.HeartbeatRequest{
		TestID:      resp.TestID,
		CandidateID: resp.CandidateID,
		Token:       ready.Token,
	}, c.heartbeatEvery, c.snapshotEvery, c.snapshots, c.log)
	c.reporter.Start(c.rootCtx)

	return nil
}

// Questions returns the running phase's question paper in served order.
func (c *Controller) Questions() ([]model.QuestionForCandidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	running, ok := c.phase.(*Running)
	if !ok {
		return nil, ErrNotRunning
	}
	return running.Questions, nil
}

// SetAnswer records the draft for a question ordinal. MCQ selections
// replace the prior value; free-text answers are stored verbatim with
// whitespace preserved. Drafts exist only in memory.
func (c *Controller) SetAnswer(ordinal int, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	running, ok := c.phase.(*Running)
	if !ok {
		return ErrNotRunning
	}
	if ordinal < 0 || ordinal >= len(running.Questions) {
		return fmt.Errorf("ordinal %d out of range [0,%d)", ordinal, len(running.Questions))
	}
	running.drafts[ordinal] = value
	return nil
}

// Draft returns the current draft for a question ordinal ("" if unset).
func (c *Controller) Draft(ordinal int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	running, ok := c.phase.(*Running)
	if !ok {
		return ""
	}
	return running.drafts[ordinal]
}

// Submit posts every answer in one atomic request. The payload is a
// fixed-length positional array: ordinal i maps to answers[i], with
// unanswered slots as empty strings, never omitted.
//
// Only one submission may be in flight; a second Submit during
// `submitting` returns ErrSubmitInFlight without issuing a request. On
// failure the session stays Running with drafts intact. On success the
// session reaches Result, the reporter stops, and the navigation guard
// arms exactly once.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	running, ok := c.phase.(*Running)
	if !ok {
		c.mu.Unlock()
		return ErrNotRunning
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.submitting = true

	token := c.token()
	answers := make([]string, len(running.Questions))
	for i := range answers {
		answers[i] = running.drafts[i]
	}
	c.mu.Unlock()

	result, err := c.client.SubmitAnswers(ctx, token, answers)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.submitting = false

	if c.closed {
		// Closed mid-flight: no state transitions after close.
		return ErrClosed
	}
	if err != nil {
		// Drafts are never cleared on failure; the candidate may retry.
		return err
	}

	c.phase = &Result{Outcome: result}
	c.stopReporterLocked()
	c.guard.Arm(c.onBlocked)

	return nil
}

// Result returns the graded outcome once the session reaches Result.
func (c *Controller) Result() (*model.AttemptResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.phase.(*Result)
	if !ok {
		return nil, errors.New("session has no result yet")
	}
	return res.Outcome, nil
}

// FetchReport downloads the PDF report for a completed session. Explicit
// user action only.
func (c *Controller) FetchReport(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	if _, ok := c.phase.(*Result); !ok {
		c.mu.Unlock()
		return nil, errors.New("session has no result yet")
	}
	token := c.token()
	c.mu.Unlock()

	return c.client.FetchReport(ctx, token)
}

// Close tears the session down: pending timers stop, in-flight requests
// are abandoned, and the navigation guard detaches so nothing leaks into
// the host after the session ends. Work completing after Close never
// mutates state. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.cancel()
	c.stopReporterLocked()
	c.guard.Disarm()
}

// token returns the session's entry token. Callers hold c.mu.
func (c *Controller) token() string {
	return c.entryToken
}

func (c *Controller) stopReporterLocked() {
	if c.reporter != nil {
		c.reporter.Stop()
		c.reporter = nil
	}
}
