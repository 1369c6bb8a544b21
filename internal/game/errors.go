package game

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an operation is not allowed from the
// current state, e.g. Retry while the attempt is still running.
var ErrInvalidTransition = errors.New("game: invalid transition")

// PlacementError reports that a letter could not be given a free cell within
// the retry budget. The word attempt does not start.
type PlacementError struct {
	Word     string
	Letter   int // index of the letter that could not be placed
	Attempts int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("game: no free cell for letter %d of %q after %d attempts", e.Letter, e.Word, e.Attempts)
}

// InvalidDirectionError reports a non-unit or diagonal heading vector.
type InvalidDirectionError struct {
	Direction Direction
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("game: invalid direction (%d,%d)", e.Direction.X, e.Direction.Y)
}

// CheckDirection returns an *InvalidDirectionError unless d is a unit direction.
func CheckDirection(d Direction) error {
	if !d.Valid() {
		return &InvalidDirectionError{Direction: d}
	}
	return nil
}
