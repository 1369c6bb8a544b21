package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/alphasnake/internal/game"
	"github.com/robalobadob/alphasnake/internal/words"
)

// fakeTicker is driven by the test instead of the wall clock.
type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// tick delivers one tick, reporting false if the loop is not listening.
func (f *fakeTicker) tick() bool {
	select {
	case f.c <- time.Now():
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

type tickerFactory struct {
	mu       sync.Mutex
	tickers  []*fakeTicker
	interval time.Duration
}

func (f *tickerFactory) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	f.interval = d
	return t
}

func (f *tickerFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *tickerFactory) current() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

// mockClock is a controllable Clock.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

type harness struct {
	r       *Runner
	tickers *tickerFactory
	clock   *mockClock
}

var testGameID = uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

// edgeStart sits on the right wall, so the first tick heading right fails.
var edgeStart = game.Cell{X: game.GridSize - 1, Y: 10}

func newHarness(t *testing.T, ws ...string) *harness {
	t.Helper()
	return newHarnessWith(t, game.Options{}, ws...)
}

func newHarnessWith(t *testing.T, opts game.Options, ws ...string) *harness {
	t.Helper()
	if len(ws) == 0 {
		ws = []string{"cat", "dog"}
	}
	entries := make([]words.Entry, len(ws))
	for i, w := range ws {
		entries[i] = words.Entry{Word: w}
	}
	cat, err := words.New(entries)
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{
		tickers: &tickerFactory{},
		clock:   &mockClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	nop := zerolog.Nop()
	r, err := NewWithID(testGameID, cat, Config{
		Interval:  200 * time.Millisecond,
		Debounce:  400 * time.Millisecond,
		Salt:      []byte("test"),
		Engine:    opts,
		Clock:     h.clock,
		NewTicker: h.tickers.New,
		Logger:    &nop,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Close)
	h.r = r
	h.snapshot(t) // wait for the loop to create its ticker
	return h
}

func (h *harness) snapshot(t *testing.T) game.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := h.r.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return s
}

func TestRunnerTicks(t *testing.T) {
	h := newHarness(t)
	if h.tickers.count() != 1 || h.tickers.interval != 200*time.Millisecond {
		t.Fatalf("tickers=%d interval=%v", h.tickers.count(), h.tickers.interval)
	}
	start := h.snapshot(t)
	if !h.tickers.current().tick() {
		t.Fatal("loop not listening for ticks")
	}
	s := h.snapshot(t)
	if s.Tick != start.Tick+1 {
		t.Errorf("tick = %d, want %d", s.Tick, start.Tick+1)
	}
}

func TestRunnerKeyRejectsReversal(t *testing.T) {
	h := newHarness(t)
	if err := h.r.SubmitKey(game.Left); err != nil {
		t.Fatal(err)
	}
	if s := h.snapshot(t); s.Direction != game.Right {
		t.Errorf("direction = %v after reversal, want right", s.Direction)
	}
	if err := h.r.SubmitKey(game.Down); err != nil {
		t.Fatal(err)
	}
	if s := h.snapshot(t); s.Direction != game.Down {
		t.Errorf("direction = %v, want down", s.Direction)
	}
}

func TestRunnerInvalidKey(t *testing.T) {
	h := newHarness(t)
	var de *game.InvalidDirectionError
	if err := h.r.SubmitKey(game.Direction{X: 1, Y: 1}); !errors.As(err, &de) {
		t.Errorf("err = %v, want *InvalidDirectionError", err)
	}
	if err := h.r.SubmitPose(game.Direction{}, true); !errors.As(err, &de) {
		t.Errorf("pose err = %v, want *InvalidDirectionError", err)
	}
	if err := h.r.SubmitPose(game.Direction{}, false); err != nil {
		t.Errorf("no-pose err = %v", err)
	}
}

func TestRunnerPoseDebounce(t *testing.T) {
	h := newHarness(t)

	h.r.SubmitPose(game.Up, true)
	h.clock.Advance(100 * time.Millisecond)
	h.r.SubmitPose(game.Down, true)
	if s := h.snapshot(t); s.Direction != game.Up {
		t.Fatalf("direction = %v, want up (second pose inside window)", s.Direction)
	}

	h.clock.Advance(400 * time.Millisecond)
	h.r.SubmitPose(game.Down, true)
	if s := h.snapshot(t); s.Direction != game.Down {
		t.Errorf("direction = %v, want down", s.Direction)
	}
}

func TestRunnerPauseStopsTicking(t *testing.T) {
	h := newHarness(t)
	first := h.tickers.current()
	ctx := context.Background()

	changed, err := h.r.Pause(ctx)
	if err != nil || !changed {
		t.Fatalf("Pause = %v, %v", changed, err)
	}
	if changed, _ := h.r.Pause(ctx); changed {
		t.Error("second Pause reported a change")
	}
	if !first.isStopped() {
		t.Error("ticker still running while paused")
	}
	before := h.snapshot(t)
	if first.tick() {
		t.Error("loop accepted a tick while paused")
	}
	if s := h.snapshot(t); s.Tick != before.Tick || !s.Paused {
		t.Errorf("tick=%d paused=%v", s.Tick, s.Paused)
	}

	if changed, err := h.r.Resume(ctx); err != nil || !changed {
		t.Fatalf("Resume = %v, %v", changed, err)
	}
	if h.tickers.count() != 2 {
		t.Fatalf("tickers = %d, want a fresh ticker after resume", h.tickers.count())
	}
	if !h.tickers.current().tick() {
		t.Fatal("loop not ticking after resume")
	}
	if s := h.snapshot(t); s.Tick != before.Tick+1 {
		t.Errorf("tick = %d, want %d", s.Tick, before.Tick+1)
	}

	if changed, _ := h.r.TogglePause(ctx); !changed || !h.snapshot(t).Paused {
		t.Error("TogglePause did not pause")
	}
}

func TestRunnerFailStopsTickerAndRetry(t *testing.T) {
	start := edgeStart
	h := newHarnessWith(t, game.Options{Start: &start})
	ctx := context.Background()

	if err := h.r.Retry(ctx); !errors.Is(err, game.ErrInvalidTransition) {
		t.Errorf("Retry while running: %v", err)
	}

	if !h.tickers.current().tick() {
		t.Fatal("loop not listening for ticks")
	}
	s := h.snapshot(t)
	if s.Outcome != game.OutcomeFail {
		t.Fatalf("outcome = %s, want fail", s.Outcome)
	}
	if !h.tickers.current().isStopped() {
		t.Error("ticker running after the attempt ended")
	}

	if err := h.r.Retry(ctx); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	s = h.snapshot(t)
	if s.Outcome != game.OutcomeNone || s.Word != "CAT" || s.Progress != 0 || len(s.Snake) != 1 {
		t.Errorf("after retry: %+v", s)
	}
	if h.tickers.current().isStopped() {
		t.Error("no running ticker after retry")
	}
}

func TestRunnerAdvance(t *testing.T) {
	start := edgeStart
	h := newHarnessWith(t, game.Options{Start: &start})
	ctx := context.Background()
	h.tickers.current().tick()
	if o := h.snapshot(t).Outcome; o != game.OutcomeFail {
		t.Fatalf("outcome = %s, want fail", o)
	}
	if err := h.r.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s := h.snapshot(t); s.Word != "DOG" || s.WordIndex != 1 {
		t.Errorf("word = %s (%d), want DOG", s.Word, s.WordIndex)
	}
}

func TestRunnerSubscribe(t *testing.T) {
	h := newHarness(t)
	ch, cancel := h.r.Subscribe()
	defer cancel()

	select {
	case s := <-ch:
		if s.Word != "CAT" {
			t.Errorf("initial snapshot word = %s", s.Word)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	h.tickers.current().tick()
	h.snapshot(t)
	select {
	case s := <-ch:
		if s.Tick < 1 {
			t.Errorf("pushed snapshot tick = %d", s.Tick)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after tick")
	}
}

func TestRunnerClose(t *testing.T) {
	h := newHarness(t)
	ch, _ := h.r.Subscribe()
	<-ch

	h.r.Close()
	h.r.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel open after Close")
	}
	if !h.tickers.current().isStopped() {
		t.Error("ticker not released on Close")
	}
	if err := h.r.SubmitKey(game.Up); !errors.Is(err, ErrClosed) {
		t.Errorf("SubmitKey after Close: %v", err)
	}
	if err := h.r.SubmitPose(game.Up, true); !errors.Is(err, ErrClosed) {
		t.Errorf("SubmitPose after Close: %v", err)
	}
	if _, err := h.r.Snapshot(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Snapshot after Close: %v", err)
	}
	late, _ := h.r.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscription after Close is open")
	}
}

func TestRunnerLayoutFollowsID(t *testing.T) {
	a := newHarness(t).snapshot(t)
	b := newHarness(t).snapshot(t)
	if len(a.Letters) != len(b.Letters) {
		t.Fatalf("letters %d vs %d", len(a.Letters), len(b.Letters))
	}
	for i := range a.Letters {
		if a.Letters[i].Cell != b.Letters[i].Cell {
			t.Errorf("letter %d at %v and %v for the same id", i, a.Letters[i].Cell, b.Letters[i].Cell)
		}
	}
}

// Run with -race: startup must not touch shared state after the loop starts.
func TestRunnerStartCloseNoRace(t *testing.T) {
	cat, err := words.Default()
	if err != nil {
		t.Fatal(err)
	}
	nop := zerolog.Nop()
	for i := 0; i < 200; i++ {
		r, err := New(cat, Config{Interval: time.Nanosecond, Logger: &nop})
		if err != nil {
			t.Fatal(err)
		}
		r.Close()
	}
}

// lockedBuffer is a log sink safe for the runner goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunnerLogsRejectedDirection(t *testing.T) {
	cat, err := words.Default()
	if err != nil {
		t.Fatal(err)
	}
	var out lockedBuffer
	logger := zerolog.New(&out)
	tickers := &tickerFactory{}
	r, err := NewWithID(testGameID, cat, Config{NewTicker: tickers.New, Logger: &logger})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var de *game.InvalidDirectionError
	if err := r.SubmitKey(game.Direction{X: 2}); !errors.As(err, &de) {
		t.Fatalf("SubmitKey err = %v", err)
	}
	if err := r.SubmitPose(game.Direction{Y: 3}, true); !errors.As(err, &de) {
		t.Fatalf("SubmitPose err = %v", err)
	}
	got := out.String()
	for _, want := range []string{`"level":"warn"`, "key direction rejected", "pose direction rejected"} {
		if !strings.Contains(got, want) {
			t.Errorf("log missing %q:\n%s", want, got)
		}
	}
}

func TestPlacementSeedStable(t *testing.T) {
	id := testGameID
	a1, a2 := PlacementSeed([]byte("salt"), id)
	b1, b2 := PlacementSeed([]byte("salt"), id)
	if a1 != b1 || a2 != b2 {
		t.Error("seed not deterministic")
	}
	c1, _ := PlacementSeed([]byte("other"), id)
	if c1 == a1 {
		t.Error("salt does not affect the seed")
	}
	long := make([]byte, 100)
	PlacementSeed(long, id) // oversized keys are folded, not rejected
}
