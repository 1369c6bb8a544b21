// internal/game/placer.go
//
// Letter placement for a new word attempt.
// Each letter draws uniform random cells until one is free of the exclusion
// set (the snake's start cell) and of the letters already placed. The draw
// budget per letter is bounded; running out yields a *PlacementError.

package game

import (
	"math/rand/v2"
	"unicode/utf8"
)

// DefaultPlacementAttempts bounds the random draws per letter.
const DefaultPlacementAttempts = 1000

// Placer lays out one cell per letter of word, avoiding exclude.
type Placer interface {
	Place(word string, exclude []Cell) ([]Cell, error)
}

// RandomPlacer draws cells from a seeded source. A given seed always produces
// the same sequence of layouts.
type RandomPlacer struct {
	size        int
	rng         *rand.Rand
	maxAttempts int
}

// NewRandomPlacer returns a placer for a size×size board seeded with (seed1, seed2).
func NewRandomPlacer(size int, seed1, seed2 uint64) *RandomPlacer {
	return &RandomPlacer{
		size:        size,
		rng:         rand.New(rand.NewPCG(seed1, seed2)),
		maxAttempts: DefaultPlacementAttempts,
	}
}

// WithMaxAttempts sets the per-letter draw budget (values < 1 are ignored).
func (p *RandomPlacer) WithMaxAttempts(n int) *RandomPlacer {
	if n > 0 {
		p.maxAttempts = n
	}
	return p
}

// Place returns len(word) distinct cells, none of them in exclude.
func (p *RandomPlacer) Place(word string, exclude []Cell) ([]Cell, error) {
	n := utf8.RuneCountInString(word)
	taken := make(map[Cell]struct{}, len(exclude)+n)
	for _, c := range exclude {
		taken[c] = struct{}{}
	}

	out := make([]Cell, 0, n)
	for i := 0; i < n; i++ {
		placed := false
		for attempt := 0; attempt < p.maxAttempts; attempt++ {
			c := Cell{X: p.rng.IntN(p.size), Y: p.rng.IntN(p.size)}
			if _, ok := taken[c]; ok {
				continue
			}
			taken[c] = struct{}{}
			out = append(out, c)
			placed = true
			break
		}
		if !placed {
			return nil, &PlacementError{Word: word, Letter: i, Attempts: p.maxAttempts}
		}
	}
	return out, nil
}
