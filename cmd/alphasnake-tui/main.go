// cmd/alphasnake-tui/main.go
//
// Terminal client: runs one game locally and renders it with tcell.
// The keyboard is the key source; arrows or WASD steer. Logs go to LOG_FILE
// (or nowhere) so they do not scribble over the screen.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alphasnake/internal/config"
	"github.com/robalobadob/alphasnake/internal/game"
	"github.com/robalobadob/alphasnake/internal/session"
	"github.com/robalobadob/alphasnake/internal/words"
)

func main() {
	cfg := config.Load()
	closeLog := setupLogging(cfg)
	defer closeLog()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "alphasnake: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.Config) func() {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	var out io.Writer = io.Discard
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
			closeFn = func() { f.Close() }
		}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closeFn
}

func run(cfg config.Config) error {
	cat, err := words.Load(cfg.WordsFile)
	if err != nil {
		return err
	}
	r, err := session.New(cat, session.Config{
		Interval: cfg.TickInterval,
		Debounce: cfg.PoseDebounce,
		Salt:     []byte(cfg.PlacementSalt),
	})
	if err != nil {
		return err
	}
	defer r.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.HideCursor()

	snd := newSounds()
	defer snd.close()

	snaps, cancel := r.Subscribe()
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	var last game.Snapshot
	var msg string
	redraw := func() {
		screen.Clear()
		drawGame(screen, last, msg)
		screen.Show()
	}

	for {
		select {
		case s, ok := <-snaps:
			if !ok {
				return nil
			}
			snd.play(cueFor(last, s))
			if s.WordIndex != last.WordIndex || s.Outcome != last.Outcome {
				msg = ""
			}
			last = s
			redraw()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				redraw()
			case *tcell.EventKey:
				act, d := keyAction(ev.Key(), ev.Rune())
				if act == actQuit {
					return nil
				}
				if err := apply(r, act, d); err != nil {
					msg = describe(err)
					log.Debug().Err(err).Msg("action rejected")
					redraw()
				}
			}
		}
	}
}

// apply performs a key action on the runner.
func apply(r *session.Runner, act action, d game.Direction) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var err error
	switch act {
	case actSteer:
		err = r.SubmitKey(d)
	case actToggle:
		_, err = r.TogglePause(ctx)
	case actRetry:
		err = r.Retry(ctx)
	case actAdvance:
		err = r.Advance(ctx)
	}
	return err
}

// describe turns an action error into a status-line notice.
func describe(err error) string {
	var pe *game.PlacementError
	switch {
	case errors.As(err, &pe):
		return "no room for the letters, press n for another word"
	case errors.Is(err, game.ErrInvalidTransition):
		return "finish the attempt first"
	}
	return err.Error()
}
