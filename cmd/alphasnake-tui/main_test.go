package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/alphasnake/internal/game"
)

// gridCanvas records the last rune written to each position.
type gridCanvas map[[2]int]rune

func (g gridCanvas) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	g[[2]int{x, y}] = r
}

func (g gridCanvas) row(y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		if r, ok := g[[2]int{x, y}]; ok {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func sampleSnapshot() game.Snapshot {
	return game.Snapshot{
		GridSize: 20,
		Word:     "CAT",
		Image:    "/images/cat.jpg",
		Snake:    []game.Cell{{X: 5, Y: 3}, {X: 4, Y: 3}},
		Letters: []game.Letter{
			{Char: "C", Cell: game.Cell{X: 4, Y: 3}, Consumed: true},
			{Char: "A", Cell: game.Cell{X: 9, Y: 9}},
			{Char: "T", Cell: game.Cell{X: 0, Y: 19}},
		},
		Progress: 1,
		Status:   game.StatusRunning,
		Outcome:  game.OutcomeNone,
		Tick:     7,
	}
}

func TestDrawGame(t *testing.T) {
	g := gridCanvas{}
	s := sampleSnapshot()
	drawGame(g, s, "")

	if row := g.row(0, 40); !strings.HasPrefix(row, "Word: C A T") || !strings.Contains(row, "[/images/cat.jpg]") {
		t.Errorf("prompt row = %q", row)
	}
	if row := g.row(1, 40); !strings.Contains(row, "1/3 letters") {
		t.Errorf("status row = %q", row)
	}

	at := func(c game.Cell) rune {
		x, y := cellPos(c)
		return g[[2]int{x, y}]
	}
	if r := at(game.Cell{X: 5, Y: 3}); r != '@' {
		t.Errorf("head = %q", r)
	}
	if r := at(game.Cell{X: 4, Y: 3}); r != 'o' {
		t.Errorf("body over eaten letter = %q", r)
	}
	if r := at(game.Cell{X: 9, Y: 9}); r != 'A' {
		t.Errorf("letter A = %q", r)
	}
	if r := at(game.Cell{X: 0, Y: 19}); r != 'T' {
		t.Errorf("letter T = %q", r)
	}
	if r := g[[2]int{0, boardTop}]; r != '+' {
		t.Errorf("corner = %q", r)
	}
}

func TestStatusLine(t *testing.T) {
	s := sampleSnapshot()
	tests := []struct {
		status game.Status
		want   string
	}{
		{game.StatusPaused, "PAUSED"},
		{game.StatusFail, "CRASHED"},
		{game.StatusBoardFull, "BOARD FULL"},
		{game.StatusSuccess, "SPELLED CAT"},
		{game.StatusRunning, "tick 7"},
	}
	for _, tt := range tests {
		s.Status = tt.status
		if got, _ := statusLine(s); !strings.Contains(got, tt.want) {
			t.Errorf("statusLine(%s) = %q, want it to contain %q", tt.status, got, tt.want)
		}
	}
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		act  action
		want game.Direction
	}{
		{tcell.KeyUp, 0, actSteer, game.Up},
		{tcell.KeyLeft, 0, actSteer, game.Left},
		{tcell.KeyRune, 'd', actSteer, game.Right},
		{tcell.KeyRune, 'S', actSteer, game.Down},
		{tcell.KeyRune, 'p', actToggle, game.Direction{}},
		{tcell.KeyRune, ' ', actToggle, game.Direction{}},
		{tcell.KeyRune, 'r', actRetry, game.Direction{}},
		{tcell.KeyRune, 'n', actAdvance, game.Direction{}},
		{tcell.KeyRune, 'q', actQuit, game.Direction{}},
		{tcell.KeyEscape, 0, actQuit, game.Direction{}},
		{tcell.KeyCtrlC, 0, actQuit, game.Direction{}},
		{tcell.KeyRune, 'x', actNone, game.Direction{}},
		{tcell.KeyEnter, 0, actNone, game.Direction{}},
	}
	for _, tt := range tests {
		act, d := keyAction(tt.key, tt.r)
		if act != tt.act || d != tt.want {
			t.Errorf("keyAction(%v, %q) = %v, %v; want %v, %v", tt.key, tt.r, act, d, tt.act, tt.want)
		}
	}
}

func TestCueFor(t *testing.T) {
	base := sampleSnapshot()
	ate := base
	ate.Progress = 2
	won := base
	won.Progress, won.Outcome = 3, game.OutcomeSuccess
	crashed := base
	crashed.Outcome = game.OutcomeFail
	full := base
	full.Outcome = game.OutcomeBoardFull
	next := base
	next.WordIndex, next.Progress = 1, 0

	tests := []struct {
		name       string
		prev, next game.Snapshot
		want       cue
	}{
		{"tick", base, base, cueNone},
		{"ate letter", base, ate, cueEat},
		{"spelled word", ate, won, cueSuccess},
		{"crash", base, crashed, cueFail},
		{"board full", base, full, cueFail},
		{"still crashed", crashed, crashed, cueNone},
		{"new word", won, next, cueNone},
	}
	for _, tt := range tests {
		if got := cueFor(tt.prev, tt.next); got != tt.want {
			t.Errorf("%s: cueFor = %v, want %v", tt.name, got, tt.want)
		}
	}
}
