// internal/httpserver/auth.go
//
// Per-game bearer tokens.
//
// POST /game/new returns an HS256 JWT whose subject is the game id. Every
// /game/{id} route requires that token, from the Authorization header or a
// ?token= query parameter (browsers cannot set headers on websocket
// upgrades). A token for one game never unlocks another.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/alphasnake/internal/session"
)

const tokenIssuer = "alphasnake"

// signToken creates a token for game id valid for ttl.
func (s *Server) signToken(id uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// parseToken validates tok and returns the game id it was issued for.
func (s *Server) parseToken(tok string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	return uuid.Parse(claims.Subject)
}

// bearerOrQuery extracts a token from "Authorization: Bearer" or ?token=.
func bearerOrQuery(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

// ctxRunnerKey is the context key for the authorized game's runner.
type ctxRunnerKey struct{}

// requireGame checks the token against {id} and puts the runner into the
// request context.
func (s *Server) requireGame(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"bad_game_id"}`, http.StatusBadRequest)
			return
		}
		tok := bearerOrQuery(r)
		if tok == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		sub, err := s.parseToken(tok)
		if err != nil {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		if sub != id {
			http.Error(w, `{"error":"wrong_game"}`, http.StatusForbidden)
			return
		}
		run, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxRunnerKey{}, run)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// runnerFrom returns the runner placed by requireGame.
func runnerFrom(r *http.Request) *session.Runner {
	run, _ := r.Context().Value(ctxRunnerKey{}).(*session.Runner)
	return run
}
