package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/scan"
	"github.com/phishguard/phishguard/pkg/testutil"
)

type fakeScanner struct {
	calls atomic.Int32
	resp  *scan.Response
	err   error
	block chan struct{} // when set, Scan waits for it or ctx
	got   scan.Request
}

func (f *fakeScanner) Scan(ctx context.Context, req scan.Request) (*scan.Response, error) {
	f.calls.Add(1)
	f.got = req
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Dispatch(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestSession(sc Scanner, rec *recorder) *Session {
	return New(sc, Options{Emitter: rec, Sleep: noSleep})
}

func criticalResponse() *scan.Response {
	age := 3
	return &scan.Response{
		URL:             "http://paypa1-secure-login.xyz",
		RiskLevel:       "CRITICAL",
		Status:          "PHISHING",
		ConfidenceScore: 96,
		DomainAgeDays:   &age,
		Insights:        []string{"🚨 Brand impersonation", "⚠️ Newly registered"},
	}
}

func TestRun_CompletesWithAnnouncementsInOrder(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := &fakeScanner{resp: criticalResponse()}
	var holds []time.Duration
	s := New(sc, Options{Emitter: rec, Sleep: func(ctx context.Context, d time.Duration) error {
		holds = append(holds, d)
		return nil
	}})

	res, err := s.Run(context.Background(), "  http://paypa1-secure-login.xyz  ")
	require.NoError(t, err)

	assert.Equal(t, "http://paypa1-secure-login.xyz", sc.got.URL, "input is trimmed")
	assert.Equal(t, risk.Critical, res.Tier)
	assert.Equal(t, 96, res.ConfidenceScore)
	assert.Equal(t, Completed, s.State())
	assert.Same(t, res, s.Last())

	assert.Equal(t, []events.EventType{
		events.EventTypeStart,
		events.EventTypeProgress, events.EventTypeProgress, events.EventTypeProgress, events.EventTypeProgress,
		events.EventTypeComplete,
	}, rec.types())
	assert.Equal(t, []time.Duration{600 * time.Millisecond, 600 * time.Millisecond, 600 * time.Millisecond, 600 * time.Millisecond}, holds)

	for i, a := range Announcements() {
		p := rec.events[i+1].(*events.ProgressEvent)
		assert.Equal(t, i+1, p.Stage)
		assert.Equal(t, 4, p.Total)
		assert.Equal(t, a.Text, p.Text)
	}

	done := rec.events[5].(*events.CompleteEvent)
	assert.Equal(t, NoticeAlarm, done.Notice.Class)
	assert.Equal(t, "CRITICAL THREAT DETECTED", done.Notice.Title)
	assert.Equal(t, string(res.ID), done.ScanID())
	assert.Equal(t, rec.events[0].ScanID(), done.ScanID())
}

func TestRun_NoticeClassPerTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  events.NoticeClass
		title string
	}{
		{"SAFE", NoticeSuccess, "Domain Verified Safe"},
		{"medium", NoticeWarning, "Proceed with Caution"},
		{"HIGH", NoticeAlarm, "CRITICAL THREAT DETECTED"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			rec := &recorder{}
			s := newTestSession(&fakeScanner{resp: &scan.Response{URL: "u", RiskLevel: tt.label}}, rec)

			_, err := s.Run(context.Background(), "example.com")
			require.NoError(t, err)
			done := rec.events[len(rec.events)-1].(*events.CompleteEvent)
			assert.Equal(t, tt.want, done.Notice.Class)
			assert.Equal(t, tt.title, done.Notice.Title)
		})
	}
}

func TestRun_EmptyURL(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := &fakeScanner{resp: criticalResponse()}
	s := newTestSession(sc, rec)

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := s.Run(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyURL)
	}
	assert.Zero(t, sc.calls.Load())
	assert.Zero(t, rec.len())
	assert.Equal(t, Idle, s.State())
}

func TestRun_FailureIsGeneric(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	cause := errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")
	s := New(&fakeScanner{err: cause}, Options{
		Emitter:     rec,
		Sleep:       noSleep,
		FailureKind: func(error) string { return "connect" },
	})

	res, err := s.Run(context.Background(), "example.com")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Failed, s.State())
	assert.Nil(t, s.Last(), "partial state is dropped")

	last := rec.events[len(rec.events)-1].(*events.ErrorEvent)
	assert.Equal(t, "Error connecting to scanner engine", last.Message)
	assert.Equal(t, NoticeError, last.Notice.Class)
	assert.Equal(t, "connect", last.Kind)

	s.Reset()
	assert.Equal(t, Idle, s.State())
}

func TestRun_FailureCauseLoggedAtDebugOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cause := errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")
	s := New(&fakeScanner{err: cause}, Options{
		Emitter:     &recorder{},
		Sleep:       noSleep,
		FailureKind: func(error) string { return "connect" },
		Logger:      slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})

	_, err := s.Run(context.Background(), "example.com")
	require.ErrorIs(t, err, ErrUnreachable)
	assert.Contains(t, buf.String(), "kind=connect")
	assert.NotContains(t, buf.String(), "connection refused")
}

func TestRun_NilResponseFails(t *testing.T) {
	t.Parallel()
	s := newTestSession(&fakeScanner{}, &recorder{})
	_, err := s.Run(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestRun_BusyRejected(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := &fakeScanner{resp: criticalResponse(), block: make(chan struct{})}
	s := newTestSession(sc, rec)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), "first.com")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.State() == AwaitingResponse }, time.Second, time.Millisecond)

	_, err := s.Run(context.Background(), "second.com")
	assert.ErrorIs(t, err, ErrBusy)

	close(sc.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), sc.calls.Load())
	assert.Equal(t, "first.com", sc.got.URL)
}

func TestRun_ConcurrentCallersNeverOverlap(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := &fakeScanner{resp: criticalResponse()}
	s := newTestSession(sc, rec)

	var ok, busy atomic.Int32
	testutil.RunConcurrently(16, func(int) {
		_, err := s.Run(context.Background(), "example.com")
		switch {
		case err == nil:
			ok.Add(1)
		case errors.Is(err, ErrBusy):
			busy.Add(1)
		default:
			t.Errorf("unexpected error: %v", err)
		}
	})

	assert.Equal(t, int32(16), ok.Load()+busy.Load())
	assert.Equal(t, ok.Load(), sc.calls.Load(), "one scanner call per accepted run")
	assert.Equal(t, Idle, s.State())
}

// Not parallel: goroutine counts are only meaningful while nothing else runs.
func TestClose_ReleasesBlockedRun(t *testing.T) {
	tracker := testutil.TrackGoroutines()

	sc := &fakeScanner{resp: criticalResponse(), block: make(chan struct{})}
	s := newTestSession(sc, &recorder{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), "example.com")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.State() == AwaitingResponse }, time.Second, time.Millisecond)

	testutil.AssertTimeout(t, "Close", time.Second, func() {
		assert.NoError(t, s.Close())
		<-done
	})
	tracker.CheckLeaks(t, 0)
}

func TestClose_SilencesInFlightRun(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := &fakeScanner{resp: criticalResponse(), block: make(chan struct{})}
	s := newTestSession(sc, rec)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), "example.com")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.State() == AwaitingResponse }, time.Second, time.Millisecond)

	require.NoError(t, s.Close())
	seen := rec.len()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, seen, rec.len(), "no event after Close")
	assert.NotContains(t, rec.types(), events.EventTypeComplete)
	assert.NotContains(t, rec.types(), events.EventTypeError)
	assert.Equal(t, Idle, s.State())

	_, err := s.Run(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCancel_DuringAnnouncements(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := &fakeScanner{resp: criticalResponse()}
	s := New(sc, Options{Emitter: rec, Interval: time.Hour})

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), "example.com")
		done <- err
	}()
	require.Eventually(t, func() bool { return rec.len() >= 2 }, time.Second, time.Millisecond)

	s.Cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, sc.calls.Load(), "scanner is never called")
	assert.Equal(t, 2, rec.len(), "start and first announcement only")
	assert.Equal(t, Idle, s.State())
}

func TestRun_CallerContextCancel(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := newTestSession(&fakeScanner{resp: criticalResponse()}, rec)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, "example.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rec.len())
	assert.Equal(t, Idle, s.State())
}

func TestRun_RunsAgainAfterCompletion(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := &fakeScanner{resp: criticalResponse()}
	s := newTestSession(sc, rec)

	first, err := s.Run(context.Background(), "a.com")
	require.NoError(t, err)
	second, err := s.Run(context.Background(), "b.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, second, s.Last())
	assert.Equal(t, int32(2), sc.calls.Load())
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "awaiting_response", AwaitingResponse.String())
	assert.True(t, Announcing.Busy())
	assert.False(t, Completed.Busy())
}

func TestNoticeFor(t *testing.T) {
	t.Parallel()
	n := NoticeFor(risk.Safe)
	assert.Equal(t, NoticeSuccess, n.Class)
	assert.Equal(t, risk.Safe.Message(), n.Message)
	assert.Equal(t, "Error connecting to scanner engine", FailureNotice().Title)
}

func TestAnnouncements_Copy(t *testing.T) {
	t.Parallel()
	a := Announcements()
	require.Len(t, a, 4)
	a[0].Text = "changed"
	assert.Equal(t, "Initializing Security Protocols...", Announcements()[0].Text)
}
