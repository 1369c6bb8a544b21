package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alphasnake/internal/game"
)

type cue int

const (
	cueNone cue = iota
	cueEat
	cueSuccess
	cueFail
)

// cueFor picks the sound for the change from prev to next.
func cueFor(prev, next game.Snapshot) cue {
	if next.Outcome != prev.Outcome {
		switch next.Outcome {
		case game.OutcomeSuccess:
			return cueSuccess
		case game.OutcomeFail, game.OutcomeBoardFull:
			return cueFail
		}
	}
	if next.WordIndex == prev.WordIndex && next.Progress > prev.Progress {
		return cueEat
	}
	return cueNone
}

// sounds plays short sine cues. Without an audio device it stays silent.
type sounds struct {
	rate beep.SampleRate
	on   bool
}

func newSounds() *sounds {
	s := &sounds{rate: beep.SampleRate(44100)}
	if err := speaker.Init(s.rate, s.rate.N(time.Second/10)); err != nil {
		// Non-fatal, the game runs without sound
		log.Warn().Err(err).Msg("audio init failed")
		return s
	}
	s.on = true
	return s
}

func (s *sounds) tone(freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(s.rate, freq)
	if err != nil {
		return nil
	}
	return beep.Take(s.rate.N(d), sine)
}

func (s *sounds) play(c cue) {
	if !s.on {
		return
	}
	var st beep.Streamer
	switch c {
	case cueEat:
		st = s.tone(880, 60*time.Millisecond)
	case cueSuccess:
		st = beep.Seq(
			s.tone(523.25, 90*time.Millisecond),
			s.tone(659.25, 90*time.Millisecond),
			s.tone(783.99, 180*time.Millisecond),
		)
	case cueFail:
		st = s.tone(196, 250*time.Millisecond)
	}
	if st != nil {
		speaker.Play(st)
	}
}

func (s *sounds) close() {
	if s.on {
		speaker.Close()
	}
}
