// internal/game/types.go
//
// Core type definitions for the Alphabet Snake engine.
// Defines:
//   - Cell / Direction: grid coordinates and unit heading vectors.
//   - Outcome / Status: terminal results and state-machine states.
//   - Letter / Snapshot: the read-only view handed to renderers.

package game

import (
	"fmt"
	"strings"
)

const (
	// GridSize is the side length of the square board.
	GridSize = 20
)

// Cell is a board coordinate. 0 <= X, Y < grid size.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the cell one step from c in direction d.
func (c Cell) Add(d Direction) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Direction is a unit heading vector. Only Up, Down, Left and Right are valid.
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// Valid reports whether d is one of the four unit directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Opposite returns the 180° reversal of d.
func (d Direction) Opposite() Direction {
	return Direction{X: -d.X, Y: -d.Y}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("(%d,%d)", d.X, d.Y)
}

// ParseDirection maps "up", "down", "left", "right" (any case) to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Direction{}, false
}

// Outcome is the terminal result of a word attempt.
// Possible values:
//   - "none":       attempt still in play.
//   - "fail":       wall, self or wrong-letter collision.
//   - "success":    every letter eaten in order.
//   - "board_full": after a growth move the head has no legal next move.
type Outcome string

const (
	OutcomeNone      Outcome = "none"
	OutcomeFail      Outcome = "fail"
	OutcomeSuccess   Outcome = "success"
	OutcomeBoardFull Outcome = "board_full"
)

// Terminal reports whether o ends the attempt.
func (o Outcome) Terminal() bool { return o != OutcomeNone && o != "" }

// Status is the state-machine state derived from outcome and pause flag.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusFail      Status = "fail"
	StatusSuccess   Status = "success"
	StatusBoardFull Status = "board_full"
)

// Letter is one placed letter of the current word.
type Letter struct {
	Char     string `json:"char"`
	Cell     Cell   `json:"cell"`
	Consumed bool   `json:"consumed"`
}

// Snapshot is an immutable copy of the game state for renderers.
type Snapshot struct {
	GridSize  int       `json:"gridSize"`
	WordIndex int       `json:"wordIndex"`
	Word      string    `json:"word"`
	Image     string    `json:"image"`
	Snake     []Cell    `json:"snake"`     // head first
	Direction Direction `json:"direction"` // applied on the next tick
	Heading   Direction `json:"heading"`   // used by the last committed move
	Letters   []Letter  `json:"letters"`
	Progress  int       `json:"progress"`
	Outcome   Outcome   `json:"outcome"`
	Paused    bool      `json:"paused"`
	Status    Status    `json:"status"`
	Tick      int       `json:"tick"`
}

// Head returns the snake's head cell.
func (s Snapshot) Head() Cell { return s.Snake[0] }
