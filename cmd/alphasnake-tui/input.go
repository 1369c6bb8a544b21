package main

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/alphasnake/internal/game"
	"github.com/robalobadob/alphasnake/internal/input"
)

type action int

const (
	actNone action = iota
	actSteer
	actToggle
	actRetry
	actAdvance
	actQuit
)

// keyAction maps a terminal key press to a client action. For actSteer the
// direction is also returned.
func keyAction(k tcell.Key, r rune) (action, game.Direction) {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actQuit, game.Direction{}
	case tcell.KeyUp:
		return actSteer, game.Up
	case tcell.KeyDown:
		return actSteer, game.Down
	case tcell.KeyLeft:
		return actSteer, game.Left
	case tcell.KeyRight:
		return actSteer, game.Right
	case tcell.KeyRune:
		switch unicode.ToLower(r) {
		case 'q':
			return actQuit, game.Direction{}
		case 'p', ' ':
			return actToggle, game.Direction{}
		case 'r':
			return actRetry, game.Direction{}
		case 'n':
			return actAdvance, game.Direction{}
		}
		if d, ok := input.ParseKey(string(r)); ok {
			return actSteer, d
		}
	}
	return actNone, game.Direction{}
}
