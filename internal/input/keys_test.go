package input

import (
	"testing"

	"github.com/robalobadob/alphasnake/internal/game"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key    string
		want   game.Direction
		wantOK bool
	}{
		{"ArrowUp", game.Up, true},
		{"ArrowDown", game.Down, true},
		{"ArrowLeft", game.Left, true},
		{"ArrowRight", game.Right, true},
		{"arrowright", game.Right, true},
		{" up ", game.Up, true},
		{"W", game.Up, true},
		{"d", game.Right, true},
		{"Enter", game.Direction{}, false},
		{"", game.Direction{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseKey(tt.key)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseKey(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
