package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/alphasnake/internal/game"
)

// canvas is the part of tcell.Screen the renderer writes to.
type canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

const (
	boardTop  = 3 // row of the board's top border
	boardLeft = 0 // column of the board's left border
)

var (
	styleText    = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleEaten   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleNext    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBody    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLetter  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleFail    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleSuccess = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	stylePaused  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// cellPos maps a board cell to its screen position. Each cell is two
// columns wide so the board looks square.
func cellPos(c game.Cell) (int, int) {
	return boardLeft + 1 + 2*c.X, boardTop + 1 + c.Y
}

func drawText(c canvas, x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		c.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// drawGame renders the word prompt, status line and board for s. msg is an
// optional one-line notice shown under the status.
func drawGame(c canvas, s game.Snapshot, msg string) {
	// Prompt: eaten letters green, the next one highlighted.
	x := drawText(c, 0, 0, styleText, "Word: ")
	for i, r := range []rune(s.Word) {
		st := styleDim
		switch {
		case i < s.Progress:
			st = styleEaten
		case i == s.Progress:
			st = styleNext
		}
		c.SetContent(x, 0, r, nil, st)
		x += 2
	}
	if s.Image != "" {
		drawText(c, x+1, 0, styleDim, "["+s.Image+"]")
	}

	status, st := statusLine(s)
	x = drawText(c, 0, 1, st, status)
	if msg != "" {
		drawText(c, x+2, 1, styleDim, msg)
	}
	drawText(c, 0, 2, styleDim, "arrows/wasd steer  p pause  r retry  n next  q quit")

	drawBorder(c, s.GridSize)
	for _, l := range s.Letters {
		if l.Consumed {
			continue
		}
		x, y := cellPos(l.Cell)
		c.SetContent(x, y, []rune(l.Char)[0], nil, styleLetter)
	}
	for i, cell := range s.Snake {
		x, y := cellPos(cell)
		if i == 0 {
			c.SetContent(x, y, '@', nil, styleHead)
			continue
		}
		c.SetContent(x, y, 'o', nil, styleBody)
	}
}

func statusLine(s game.Snapshot) (string, tcell.Style) {
	switch s.Status {
	case game.StatusPaused:
		return "PAUSED  p to resume", stylePaused
	case game.StatusFail:
		return "CRASHED  r retry  n next word", styleFail
	case game.StatusBoardFull:
		return "BOARD FULL  r retry  n next word", styleFail
	case game.StatusSuccess:
		return fmt.Sprintf("SPELLED %s!  n next word  r again", s.Word), styleSuccess
	}
	return fmt.Sprintf("%d/%d letters  tick %d", s.Progress, len([]rune(s.Word)), s.Tick), styleText
}

func drawBorder(c canvas, size int) {
	right := boardLeft + 1 + 2*size
	bottom := boardTop + 1 + size
	for x := boardLeft; x <= right; x++ {
		c.SetContent(x, boardTop, '-', nil, styleBorder)
		c.SetContent(x, bottom, '-', nil, styleBorder)
	}
	for y := boardTop; y <= bottom; y++ {
		c.SetContent(boardLeft, y, '|', nil, styleBorder)
		c.SetContent(right, y, '|', nil, styleBorder)
	}
	for _, p := range [][2]int{{boardLeft, boardTop}, {right, boardTop}, {boardLeft, bottom}, {right, bottom}} {
		c.SetContent(p[0], p[1], '+', nil, styleBorder)
	}
}
