// Package session drives one URL scan at a time from submission to
// verdict: it validates input, plays the progress announcements, calls the
// scanner and publishes the classified result as events.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phishguard/phishguard/pkg/duration"
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/scan"
)

// Scanner performs the remote analysis of one URL.
type Scanner interface {
	Scan(ctx context.Context, req scan.Request) (*scan.Response, error)
}

// Emitter receives session events. *dispatcher.Dispatcher satisfies it.
type Emitter interface {
	Dispatch(ctx context.Context, event events.Event) error
}

// State is the lifecycle state of a session.
type State int

const (
	// Idle accepts a new run.
	Idle State = iota
	// Announcing is walking the progress announcements.
	Announcing
	// AwaitingResponse has announced every stage and waits for the verdict.
	AwaitingResponse
	// Completed holds the last result until the next run.
	Completed
	// Failed ended without a verdict; the failure notice was emitted.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Announcing:
		return "announcing"
	case AwaitingResponse:
		return "awaiting_response"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Busy reports whether a scan is in flight.
func (s State) Busy() bool {
	return s == Announcing || s == AwaitingResponse
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	// Interval is how long each announcement is held (default 600ms).
	// A negative interval disables the hold.
	Interval time.Duration

	// Emitter receives session events (default: discard).
	Emitter Emitter

	// FailureKind labels scanner errors for events and metrics.
	FailureKind func(error) string

	Logger *slog.Logger

	// Now and Sleep replace the clock, mainly in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Session runs scans one at a time. It is safe for concurrent use; a second
// Run while one is in flight fails with ErrBusy.
type Session struct {
	scanner Scanner
	opts    Options
	logger  *slog.Logger

	// emitMu serializes state transitions with their dispatch so Close can
	// wait out an in-flight delivery.
	emitMu sync.Mutex

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	last   *scan.Result
	closed bool
}

// New creates a session bound to scanner.
func New(scanner Scanner, opts Options) *Session {
	if opts.Interval == 0 {
		opts.Interval = duration.Announcement
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if opts.FailureKind == nil {
		opts.FailureKind = func(error) string { return "other" }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{scanner: scanner, opts: opts, logger: logger}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the most recent completed result, or nil.
func (s *Session) Last() *scan.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reset returns a Completed or Failed session to Idle. It has no effect in
// any other state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Completed || s.state == Failed {
		s.state = Idle
	}
}

// Run scans rawURL and returns the classified result. It blocks through
// the announcements and the scanner call.
//
// Cancelling ctx, Cancel and Close all abort the run silently: the session
// returns to Idle, no further event is emitted and the context error is
// returned.
func (s *Session) Run(ctx context.Context, rawURL string) (*scan.Result, error) {
	req, err := scan.NewRequest(rawURL)
	if err != nil {
		return nil, ErrEmptyURL
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.state.Busy() {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.state = Announcing
	s.mu.Unlock()
	defer cancel()

	id := scan.NewID()
	started := s.opts.Now()
	total := len(announcements)

	if !s.emit(runCtx, gen, events.NewStart(string(id), req.URL, total), nil) {
		return nil, s.abort(runCtx, gen)
	}

	for i, a := range announcements {
		if runCtx.Err() != nil {
			return nil, s.abort(runCtx, gen)
		}
		if !s.emit(runCtx, gen, events.NewProgress(string(id), i+1, total, a.Icon, a.Text), nil) {
			return nil, s.abort(runCtx, gen)
		}
		if err := s.opts.Sleep(runCtx, s.opts.Interval); err != nil {
			return nil, s.abort(runCtx, gen)
		}
	}

	if !s.transition(gen, AwaitingResponse) {
		return nil, s.abort(runCtx, gen)
	}

	resp, err := s.scanner.Scan(runCtx, req)
	if runCtx.Err() != nil {
		return nil, s.abort(runCtx, gen)
	}
	if err == nil && resp == nil {
		err = errors.New("session: scanner returned no response")
	}
	if err != nil {
		return nil, s.fail(runCtx, gen, id, req, started, err)
	}

	res := scan.Normalize(id, req, resp, s.opts.Now())
	ev := events.NewComplete(res, NoticeFor(res.Tier), s.opts.Now().Sub(started))
	delivered := s.emit(runCtx, gen, ev, func() {
		s.state = Completed
		s.last = res
		s.cancel = nil
	})
	if !delivered {
		return nil, s.abort(runCtx, gen)
	}

	s.logger.Debug("scan completed",
		slog.String("scan_id", string(id)),
		slog.String("tier", res.Tier.String()))
	return res, nil
}

func (s *Session) fail(ctx context.Context, gen uint64, id scan.ID, req scan.Request, started time.Time, cause error) error {
	kind := s.opts.FailureKind(cause)
	s.logger.Warn("scan failed",
		slog.String("scan_id", string(id)),
		slog.String("kind", kind))
	s.logger.Debug("scan failure cause",
		slog.String("scan_id", string(id)),
		slog.String("error", cause.Error()))

	ev := events.NewError(string(id), req.URL, FailureNotice(), kind, cause, s.opts.Now().Sub(started))
	delivered := s.emit(ctx, gen, ev, func() {
		s.state = Failed
		s.cancel = nil
	})
	if !delivered {
		return s.abort(ctx, gen)
	}
	return fmt.Errorf("%w: %w", ErrUnreachable, cause)
}

// abort returns a cancelled run to Idle. Runs superseded by Close are
// already Idle.
func (s *Session) abort(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	if s.gen == gen && s.state.Busy() {
		s.state = Idle
		s.cancel = nil
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

// transition moves the current run to state, reporting false when the run
// has been superseded.
func (s *Session) transition(gen uint64, state State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.closed {
		return false
	}
	s.state = state
	return true
}

// emit applies apply (if any) and dispatches ev, atomically with respect to
// Cancel and Close. It reports false without side effects when the run has
// been superseded.
func (s *Session) emit(ctx context.Context, gen uint64, ev events.Event, apply func()) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.gen != gen || s.closed || ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	if apply != nil {
		apply()
	}
	s.mu.Unlock()

	if s.opts.Emitter == nil {
		return true
	}
	if err := s.opts.Emitter.Dispatch(ctx, ev); err != nil {
		s.logger.Debug("event dispatch failed",
			slog.String("event", string(ev.EventType())),
			slog.String("error", err.Error()))
	}
	return true
}

// Cancel aborts the in-flight run, if any. When Cancel returns no further
// event is emitted for that run and the session is Idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state.Busy() {
		s.gen++
		s.state = Idle
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	// Wait out a delivery that began before the generation changed.
	s.emitMu.Lock()
	s.emitMu.Unlock() //nolint:staticcheck // barrier
}

// Close cancels any in-flight run and disposes of the session. Run fails
// with ErrClosed afterwards. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Cancel()
	return nil
}
