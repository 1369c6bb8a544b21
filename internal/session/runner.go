// internal/session/runner.go
//
// Runner drives one game: it owns the engine and the direction arbiter and is
// their only mutator.
//
// Responsibilities:
//   - Fixed-rate ticking while the attempt is running; the ticker is stopped on
//     pause or when the attempt ends and recreated on resume (no catch-up).
//   - Key and pose submissions from any goroutine, funnelled through one inbox.
//     Key presses and commands block until queued; pose signals are dropped
//     when the inbox is full.
//   - Snapshot publication to subscribers, latest-wins.
//   - Teardown: Close stops the ticker, closes subscriber channels and turns
//     later submissions into ErrClosed.

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alphasnake/internal/game"
)

const (
	// DefaultTickInterval is the time between engine steps.
	DefaultTickInterval = 200 * time.Millisecond

	inboxSize = 64
)

// ErrClosed is returned by operations on a closed runner.
var ErrClosed = errors.New("session: closed")

// Config tunes a runner. Zero values select the defaults.
type Config struct {
	Interval  time.Duration // tick interval, default 200ms
	Debounce  time.Duration // pose debounce window, default 400ms
	Salt      []byte        // placement seed key
	Engine    game.Options
	Clock     Clock
	NewTicker func(time.Duration) Ticker
	Logger    *zerolog.Logger
}

// Runner is the event loop around a single engine.
type Runner struct {
	id       uuid.UUID
	engine   *game.Engine
	arbiter  *game.Arbiter
	clock    Clock
	interval time.Duration
	ticker   func(time.Duration) Ticker
	log      zerolog.Logger

	inbox     chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	lastActive atomic.Int64 // unix nanos of the last submission

	mu      sync.RWMutex
	last    game.Snapshot
	subs    map[int]chan game.Snapshot
	nextSub int
	closed  bool
}

// New starts a runner for a fresh game on cat with a random id.
func New(cat game.Catalog, cfg Config) (*Runner, error) {
	return NewWithID(uuid.New(), cat, cfg)
}

// NewWithID starts a runner for a fresh game with the given id. Letter
// layouts are seeded from (cfg.Salt, id).
func NewWithID(id uuid.UUID, cat game.Catalog, cfg Config) (*Runner, error) {
	size := cfg.Engine.Size
	if size <= 0 {
		size = game.GridSize
	}
	s1, s2 := PlacementSeed(cfg.Salt, id)
	engine, err := game.New(cat, game.NewRandomPlacer(size, s1, s2), cfg.Engine)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		id:       id,
		engine:   engine,
		arbiter:  game.NewArbiter(engine, cfg.Debounce),
		clock:    cfg.Clock,
		interval: cfg.Interval,
		ticker:   cfg.NewTicker,
		inbox:    make(chan func(), inboxSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		subs:     make(map[int]chan game.Snapshot),
	}
	if r.clock == nil {
		r.clock = SystemClock{}
	}
	if r.interval <= 0 {
		r.interval = DefaultTickInterval
	}
	if r.ticker == nil {
		r.ticker = NewTimeTicker
	}
	base := log.Logger
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	r.log = base.With().Str("game", id.String()).Logger()

	snap := engine.Snapshot()
	r.last = snap
	r.touch()
	r.log.Debug().Str("word", snap.Word).Msg("game started")

	go r.run()
	return r, nil
}

// ID returns the game id.
func (r *Runner) ID() uuid.UUID { return r.id }

// Done is closed once the runner has been closed.
func (r *Runner) Done() <-chan struct{} { return r.done }

// LastActive reports when input or a command last arrived.
func (r *Runner) LastActive() time.Time { return time.Unix(0, r.lastActive.Load()) }

func (r *Runner) touch() { r.lastActive.Store(time.Now().UnixNano()) }

func (r *Runner) run() {
	defer close(r.stopped)
	defer r.closeSubscribers()

	var t Ticker
	var tick <-chan time.Time
	syncTicker := func() {
		running := r.engine.Status() == game.StatusRunning
		switch {
		case running && t == nil:
			t = r.ticker(r.interval)
			tick = t.C()
		case !running && t != nil:
			t.Stop()
			t, tick = nil, nil
		}
	}
	defer func() {
		if t != nil {
			t.Stop()
		}
	}()

	syncTicker()
	for {
		select {
		case <-r.done:
			return
		case <-tick:
			if out := r.engine.Step(); out.Terminal() {
				s := r.engine.Snapshot()
				r.log.Info().Str("word", s.Word).Str("outcome", string(out)).Int("progress", s.Progress).Msg("attempt ended")
			}
			r.publish()
			syncTicker()
		case fn := <-r.inbox:
			fn()
			r.publish()
			syncTicker()
		}
	}
}

// enqueue queues fn for the loop, blocking until there is room.
func (r *Runner) enqueue(ctx context.Context, fn func()) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.inbox <- fn:
		r.touch()
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// do runs fn on the loop and waits for its result.
func (r *Runner) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	if err := r.enqueue(ctx, func() { reply <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-r.stopped:
		// The loop may have drained the command before stopping.
		select {
		case err := <-reply:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitKey queues a key-press direction. Non-unit vectors are rejected with
// *game.InvalidDirectionError before queueing.
func (r *Runner) SubmitKey(d game.Direction) error {
	if err := game.CheckDirection(d); err != nil {
		r.log.Warn().Err(err).Msg("key direction rejected")
		return err
	}
	return r.enqueue(context.Background(), func() { r.arbiter.Key(d) })
}

// SubmitPose offers one classifier output. ok=false means no confident pose.
// It never blocks: when the inbox is full the signal is dropped.
func (r *Runner) SubmitPose(d game.Direction, ok bool) error {
	if ok {
		if err := game.CheckDirection(d); err != nil {
			r.log.Warn().Err(err).Msg("pose direction rejected")
			return err
		}
	}
	at := r.clock.Now()
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.inbox <- func() { r.arbiter.Pose(d, ok, at) }:
		r.touch()
	default:
		r.log.Debug().Msg("pose signal dropped")
	}
	return nil
}

// Pause stops ticking. It reports whether the state changed.
func (r *Runner) Pause(ctx context.Context) (bool, error) {
	var changed bool
	err := r.do(ctx, func() error {
		changed = r.engine.Pause()
		return nil
	})
	return changed, err
}

// Resume restarts ticking on a fresh interval. It reports whether the state changed.
func (r *Runner) Resume(ctx context.Context) (bool, error) {
	var changed bool
	err := r.do(ctx, func() error {
		changed = r.engine.Resume()
		return nil
	})
	return changed, err
}

// TogglePause flips between running and paused.
func (r *Runner) TogglePause(ctx context.Context) (bool, error) {
	var changed bool
	err := r.do(ctx, func() error {
		changed = r.engine.TogglePause()
		return nil
	})
	return changed, err
}

// Retry restarts the current word after the attempt has ended.
func (r *Runner) Retry(ctx context.Context) error {
	return r.do(ctx, func() error {
		if err := r.engine.Retry(); err != nil {
			return err
		}
		r.arbiter.Reset()
		r.log.Debug().Msg("retry")
		return nil
	})
}

// Advance moves to the next catalog word after the attempt has ended.
func (r *Runner) Advance(ctx context.Context) error {
	return r.do(ctx, func() error {
		if err := r.engine.Advance(); err != nil {
			return err
		}
		r.arbiter.Reset()
		r.log.Debug().Str("word", r.engine.Snapshot().Word).Msg("advance")
		return nil
	})
}

// Snapshot returns the state after every previously queued submission has
// been applied.
func (r *Runner) Snapshot(ctx context.Context) (game.Snapshot, error) {
	var s game.Snapshot
	err := r.do(ctx, func() error {
		s = r.engine.Snapshot()
		return nil
	})
	return s, err
}

// Latest returns the most recently published snapshot without waiting.
func (r *Runner) Latest() game.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Subscribe returns a channel that receives the current snapshot and then
// every later one. A slow reader only sees the newest snapshot. The channel
// is closed by cancel or when the runner closes.
func (r *Runner) Subscribe() (<-chan game.Snapshot, func()) {
	ch := make(chan game.Snapshot, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	ch <- r.last

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

// Close stops the loop and releases the ticker and subscribers. It is safe to
// call more than once.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		<-r.stopped
		r.log.Debug().Msg("game closed")
	})
}

func (r *Runner) publish() {
	s := r.engine.Snapshot()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = s
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (r *Runner) closeSubscribers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}
