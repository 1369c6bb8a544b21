// internal/httpserver/server.go
//
// HTTP server wiring for the Alphabet Snake backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words", POST /game/new.
//   - Per-game endpoints under /game/{id}, gated by the game's token.
//   - A websocket stream per game for snapshots and input.
//
// Notes:
//   - Each game is a session.Runner held in the store; handlers only submit
//     input and commands to it and read snapshots back.
//   - The websocket route sits outside the handler timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alphasnake/internal/game"
	"github.com/robalobadob/alphasnake/internal/pose"
	"github.com/robalobadob/alphasnake/internal/session"
	"github.com/robalobadob/alphasnake/internal/store"
	"github.com/robalobadob/alphasnake/internal/words"
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	Catalog    *words.Catalog
	Session    session.Config
	Secret     []byte
	TokenTTL   time.Duration
	Origin     string
	Classifier pose.Classifier
}

// Server bundles the router, the live game store and game settings.
type Server struct {
	r          *chi.Mux
	store      store.Store
	catalog    *words.Catalog
	session    session.Config
	secret     []byte
	ttl        time.Duration
	classifier pose.Classifier
	upgrader   websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	s := &Server{
		r:          chi.NewRouter(),
		store:      st,
		catalog:    opts.Catalog,
		session:    opts.Session,
		secret:     opts.Secret,
		ttl:        opts.TokenTTL,
		classifier: opts.Classifier,
	}
	if len(s.secret) == 0 {
		s.secret = []byte("dev_secret_change_me")
	}
	if s.ttl <= 0 {
		s.ttl = 12 * time.Hour
	}
	if s.classifier == nil {
		s.classifier = pose.NoseOffset{DeadZone: pose.DefaultDeadZone}
	}
	origin := opts.Origin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || o == origin || strings.HasSuffix(o, "://"+r.Host)
	}}

	// --- middleware ---
	s.r.Use(chimw.RequestID)   // add X-Request-ID
	s.r.Use(chimw.RealIP)      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)   // recover from panics
	s.r.Use(jsonContentType)   // default JSON responses
	s.r.Use(corsFor(origin))   // single-origin CORS

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"alphasnake","endpoints":["/health","POST /game/new","/game/{id}","/game/{id}/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"count": s.catalog.Len(),
				"words": s.catalog.Entries(),
			})
		})

		r.Post("/game/new", s.handleNewGame)

		// Game endpoints (token for this game required)
		r.Group(func(r chi.Router) {
			r.Use(s.requireGame)
			r.Get("/game/{id}", s.handleSnapshot)
			r.Delete("/game/{id}", s.handleDelete)
			r.Post("/game/{id}/key", s.handleKey)
			r.Post("/game/{id}/direction", s.handleDirection)
			r.Post("/game/{id}/pose", s.handlePose)
			r.Post("/game/{id}/pause", s.handlePause)
			r.Post("/game/{id}/resume", s.handleResume)
			r.Post("/game/{id}/retry", s.handleRetry)
			r.Post("/game/{id}/advance", s.handleAdvance)
		})
	})

	s.r.With(s.requireGame).Get("/game/{id}/ws", s.handleWS)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- errors ------------------------------------

// errorStatus maps domain errors to an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	var pe *game.PlacementError
	var de *game.InvalidDirectionError
	switch {
	case errors.As(err, &pe):
		return http.StatusConflict, "placement_failed"
	case errors.As(err, &de), errors.Is(err, errUnknownDirection):
		return http.StatusBadRequest, "invalid_direction"
	case errors.Is(err, game.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone, "game_closed"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError writes err as {"error": code} with its mapped status.
func writeError(w http.ResponseWriter, err error) {
	code, msg := errorStatus(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	http.Error(w, `{"error":"`+msg+`"}`, code)
}
