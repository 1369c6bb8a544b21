// Package input maps discrete key names to steering directions.
package input

import (
	"strings"

	"github.com/robalobadob/alphasnake/internal/game"
)

var keyDirections = map[string]game.Direction{
	"arrowup":    game.Up,
	"arrowdown":  game.Down,
	"arrowleft":  game.Left,
	"arrowright": game.Right,
	"up":         game.Up,
	"down":       game.Down,
	"left":       game.Left,
	"right":      game.Right,
	"w":          game.Up,
	"s":          game.Down,
	"a":          game.Left,
	"d":          game.Right,
}

// ParseKey maps a browser key name ("ArrowUp"), a bare direction ("up") or a
// WASD letter to a direction. Matching ignores case.
func ParseKey(key string) (game.Direction, bool) {
	d, ok := keyDirections[strings.ToLower(strings.TrimSpace(key))]
	return d, ok
}
