// internal/httpserver/routes_game.go
//
// HTTP routes for a single game:
//   - POST   /game/new            → start a game, returns its id and token
//   - GET    /game/{id}           → current snapshot
//   - POST   /game/{id}/key       → {key:"ArrowUp"}
//   - POST   /game/{id}/direction → {x,y}
//   - POST   /game/{id}/pose      → {direction:"up"|"none"} or {landmarks:{...}}
//   - POST   /game/{id}/pause | resume | retry | advance
//   - DELETE /game/{id}           → tear the game down
//
// Input routes reply with the snapshot taken after the input was applied.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alphasnake/internal/game"
	"github.com/robalobadob/alphasnake/internal/input"
	"github.com/robalobadob/alphasnake/internal/pose"
	"github.com/robalobadob/alphasnake/internal/session"
)

var (
	errUnknownKey       = errors.New("unknown key")
	errUnknownDirection = errors.New("unknown direction")
)

type newGameRes struct {
	GameID    string        `json:"gameId"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	State     game.Snapshot `json:"state"`
}

// handleNewGame starts a runner on the server catalog and issues its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	run, err := session.New(s.catalog, s.session)
	if err != nil {
		writeError(w, err)
		return
	}
	tok, exp, err := s.signToken(run.ID())
	if err != nil {
		run.Close()
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), run); err != nil {
		run.Close()
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Str("game", run.ID().String()).Msg("game created")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:    run.ID().String(),
		Token:     tok,
		ExpiresAt: exp.UTC(),
		State:     run.Latest(),
	})
}

// writeSnapshot replies with the runner's state after everything queued so far.
func writeSnapshot(w http.ResponseWriter, r *http.Request, run *session.Runner) {
	snap, err := run.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeSnapshot(w, r, runnerFrom(r))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), runnerFrom(r).ID()); err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

type keyReq struct {
	Key string `json:"key"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	run := runnerFrom(r)
	if err := submitKey(run, req.Key); err != nil {
		if errors.Is(err, errUnknownKey) {
			http.Error(w, `{"error":"unknown_key"}`, http.StatusBadRequest)
			return
		}
		writeError(w, err)
		return
	}
	writeSnapshot(w, r, run)
}

func (s *Server) handleDirection(w http.ResponseWriter, r *http.Request) {
	var d game.Direction
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	run := runnerFrom(r)
	if err := run.SubmitKey(d); err != nil {
		writeError(w, err)
		return
	}
	writeSnapshot(w, r, run)
}

type poseReq struct {
	Direction string          `json:"direction"`
	Landmarks *pose.Landmarks `json:"landmarks"`
}

type poseRes struct {
	Direction *game.Direction `json:"direction"` // null when no confident pose
}

func (s *Server) handlePose(w http.ResponseWriter, r *http.Request) {
	var req poseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	d, ok, err := s.submitPose(runnerFrom(r), req.Direction, req.Landmarks)
	if err != nil {
		writeError(w, err)
		return
	}
	var res poseRes
	if ok {
		res.Direction = &d
	}
	_ = json.NewEncoder(w).Encode(res)
}

type changeRes struct {
	Changed bool          `json:"changed"`
	State   game.Snapshot `json:"state"`
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	run := runnerFrom(r)
	changed, err := run.Pause(r.Context())
	s.writeChange(w, r, run, changed, err)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	run := runnerFrom(r)
	changed, err := run.Resume(r.Context())
	s.writeChange(w, r, run, changed, err)
}

func (s *Server) writeChange(w http.ResponseWriter, r *http.Request, run *session.Runner, changed bool, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := run.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(changeRes{Changed: changed, State: snap})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	run := runnerFrom(r)
	if err := run.Retry(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeSnapshot(w, r, run)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	run := runnerFrom(r)
	if err := run.Advance(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeSnapshot(w, r, run)
}

// ------------------------------ input helpers ------------------------------

// submitKey maps a key name and queues it.
func submitKey(run *session.Runner, key string) error {
	d, ok := input.ParseKey(key)
	if !ok {
		return errUnknownKey
	}
	return run.SubmitKey(d)
}

// submitPose queues a pose signal given either an explicit direction name
// ("none" or "" for no confident pose) or raw landmarks for the classifier.
func (s *Server) submitPose(run *session.Runner, dir string, lm *pose.Landmarks) (game.Direction, bool, error) {
	var d game.Direction
	var ok bool
	switch {
	case lm != nil:
		d, ok = s.classifier.Classify(*lm)
	case dir == "" || dir == "none":
	default:
		if d, ok = game.ParseDirection(dir); !ok {
			return d, false, fmt.Errorf("%w %q", errUnknownDirection, dir)
		}
	}
	return d, ok, run.SubmitPose(d, ok)
}
