// internal/game/engine.go
//
// Core game engine for a single Alphabet Snake session.
// Responsibilities:
//   - Start word attempts: snake at the start cell, letters placed by a Placer.
//   - Advance the snake one cell per Step and resolve wall/self collisions,
//     in-order letter eating and wrong-letter eating.
//   - Track state transitions: running ⇄ paused, running → fail/success/board_full,
//     terminal → running via Retry (same word) or Advance (next catalog word).
//
// Notes:
//   - The engine is not safe for concurrent use; one goroutine owns it
//     (see internal/session).
//   - Operations are all-or-nothing: an error leaves the committed state as it was.

package game

import (
	"fmt"
	"unicode/utf8"

	"github.com/robalobadob/alphasnake/internal/words"
)

// DefaultStart is the snake's start cell on a GridSize board.
var DefaultStart = Cell{X: 10, Y: 10}

// DefaultDirection is the heading every attempt starts with.
var DefaultDirection = Right

// Catalog is the ordered word list the engine cycles through.
type Catalog interface {
	Len() int
	Entry(i int) words.Entry
}

// Options tunes board geometry. Zero values select GridSize and DefaultStart.
type Options struct {
	Size  int
	Start *Cell
}

// Engine owns the board, the snake, the letter layout and the progress index.
type Engine struct {
	size    int
	start   Cell
	catalog Catalog
	placer  Placer

	wordIndex int
	entry     words.Entry
	word      []rune

	snake    []Cell // head first
	occupied []bool // size*size, true where the snake is
	heading  Direction
	pending  Direction

	letters  []Cell
	letterAt map[Cell]int
	progress int

	outcome Outcome
	paused  bool
	ticks   int
}

// New constructs an engine on the first catalog word.
func New(cat Catalog, p Placer, opts Options) (*Engine, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("game: empty catalog")
	}
	e := &Engine{
		size:    GridSize,
		start:   DefaultStart,
		catalog: cat,
		placer:  p,
	}
	if opts.Size > 0 {
		e.size = opts.Size
	}
	if opts.Start != nil {
		e.start = *opts.Start
	} else if opts.Size > 0 {
		e.start = Cell{X: e.size / 2, Y: e.size / 2}
	}
	if !e.inBounds(e.start) {
		return nil, fmt.Errorf("game: start cell (%d,%d) outside %dx%d board", e.start.X, e.start.Y, e.size, e.size)
	}
	if err := e.begin(0); err != nil {
		return nil, err
	}
	return e, nil
}

// begin replaces the whole attempt state with a fresh attempt at catalog index idx.
func (e *Engine) begin(idx int) error {
	entry := e.catalog.Entry(idx)
	layout, err := e.placer.Place(entry.Word, []Cell{e.start})
	if err != nil {
		return err
	}
	if err := e.checkLayout(entry.Word, layout); err != nil {
		return err
	}

	letterAt := make(map[Cell]int, len(layout))
	for i, c := range layout {
		letterAt[c] = i
	}

	e.wordIndex = idx
	e.entry = entry
	e.word = []rune(entry.Word)
	e.letters = layout
	e.letterAt = letterAt
	e.progress = 0
	e.snake = []Cell{e.start}
	e.occupied = make([]bool, e.size*e.size)
	e.occupied[e.index(e.start)] = true
	e.heading = DefaultDirection
	e.pending = DefaultDirection
	e.outcome = OutcomeNone
	e.paused = false
	e.ticks = 0
	return nil
}

// checkLayout rejects layouts that overlap, leave the board, or cover the start cell.
func (e *Engine) checkLayout(word string, layout []Cell) error {
	n := utf8.RuneCountInString(word)
	if len(layout) != n {
		return &PlacementError{Word: word, Letter: len(layout), Attempts: 0}
	}
	seen := make(map[Cell]struct{}, n)
	for i, c := range layout {
		if _, dup := seen[c]; dup || !e.inBounds(c) || c == e.start {
			return &PlacementError{Word: word, Letter: i, Attempts: 0}
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Step advances the snake by one cell and returns the resulting outcome.
// Outside the running state it does nothing.
func (e *Engine) Step() Outcome {
	if e.Status() != StatusRunning {
		return e.outcome
	}
	e.ticks++

	dir := e.pending
	next := e.snake[0].Add(dir)

	// Wall or self collision: nothing is committed.
	if !e.inBounds(next) || e.occupied[e.index(next)] {
		e.outcome = OutcomeFail
		return e.outcome
	}

	e.heading = dir
	e.push(next)

	if i, ok := e.letterAt[next]; ok {
		if i != e.progress {
			// Wrong letter: the grown snake stays visible on the failing cell.
			e.outcome = OutcomeFail
			return e.outcome
		}
		e.progress++
		if e.progress == len(e.word) {
			e.outcome = OutcomeSuccess
			return e.outcome
		}
		if !e.canMove() {
			e.outcome = OutcomeBoardFull
		}
		return e.outcome
	}

	e.popTail()
	return e.outcome
}

// Heading returns the direction of the last committed move.
func (e *Engine) Heading() Direction { return e.heading }

// SetDirection sets the direction applied on the next tick. Reversal
// filtering is the arbiter's job; this only rejects non-unit vectors.
func (e *Engine) SetDirection(d Direction) error {
	if err := CheckDirection(d); err != nil {
		return err
	}
	e.pending = d
	return nil
}

// Pause stops tick processing. It reports whether the state changed; pausing
// a paused or finished attempt is a no-op.
func (e *Engine) Pause() bool {
	if e.outcome.Terminal() || e.paused {
		return false
	}
	e.paused = true
	return true
}

// Resume restarts tick processing. It reports whether the state changed.
func (e *Engine) Resume() bool {
	if e.outcome.Terminal() || !e.paused {
		return false
	}
	e.paused = false
	return true
}

// TogglePause flips between running and paused.
func (e *Engine) TogglePause() bool {
	if e.paused {
		return e.Resume()
	}
	return e.Pause()
}

// Retry restarts the current word with a fresh letter layout.
// Only valid once the attempt has ended.
func (e *Engine) Retry() error {
	if !e.outcome.Terminal() {
		return ErrInvalidTransition
	}
	return e.begin(e.wordIndex)
}

// Advance moves to the next catalog word, wrapping after the last one.
// Only valid once the attempt has ended.
func (e *Engine) Advance() error {
	if !e.outcome.Terminal() {
		return ErrInvalidTransition
	}
	return e.begin((e.wordIndex + 1) % e.catalog.Len())
}

// Outcome returns the current outcome.
func (e *Engine) Outcome() Outcome { return e.outcome }

// Status derives the state-machine state.
func (e *Engine) Status() Status {
	switch e.outcome {
	case OutcomeFail:
		return StatusFail
	case OutcomeSuccess:
		return StatusSuccess
	case OutcomeBoardFull:
		return StatusBoardFull
	}
	if e.paused {
		return StatusPaused
	}
	return StatusRunning
}

// Snapshot copies the current state for readers.
func (e *Engine) Snapshot() Snapshot {
	snake := make([]Cell, len(e.snake))
	copy(snake, e.snake)

	letters := make([]Letter, len(e.letters))
	for i, c := range e.letters {
		letters[i] = Letter{Char: string(e.word[i]), Cell: c, Consumed: i < e.progress}
	}

	return Snapshot{
		GridSize:  e.size,
		WordIndex: e.wordIndex,
		Word:      e.entry.Word,
		Image:     e.entry.Image,
		Snake:     snake,
		Direction: e.pending,
		Heading:   e.heading,
		Letters:   letters,
		Progress:  e.progress,
		Outcome:   e.outcome,
		Paused:    e.paused,
		Status:    e.Status(),
		Tick:      e.ticks,
	}
}

func (e *Engine) push(c Cell) {
	e.snake = append(e.snake, Cell{})
	copy(e.snake[1:], e.snake)
	e.snake[0] = c
	e.occupied[e.index(c)] = true
}

func (e *Engine) popTail() {
	tail := e.snake[len(e.snake)-1]
	e.snake = e.snake[:len(e.snake)-1]
	e.occupied[e.index(tail)] = false
}

// canMove reports whether some neighbour of the head is a legal move: an
// empty cell or the next letter of the word.
func (e *Engine) canMove() bool {
	head := e.snake[0]
	for _, d := range []Direction{Up, Down, Left, Right} {
		c := head.Add(d)
		if !e.inBounds(c) || e.occupied[e.index(c)] {
			continue
		}
		if i, ok := e.letterAt[c]; ok && i != e.progress {
			continue
		}
		return true
	}
	return false
}

func (e *Engine) inBounds(c Cell) bool {
	return c.X >= 0 && c.X < e.size && c.Y >= 0 && c.Y < e.size
}

func (e *Engine) index(c Cell) int { return c.Y*e.size + c.X }
