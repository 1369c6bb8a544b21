// internal/httpserver/ws.go
//
// Websocket stream for one game: GET /game/{id}/ws?token=...
//
// Server → client: {"type":"state","state":{...}} whenever the game changes
// (latest-wins, so slow clients skip intermediate frames) and
// {"type":"error","error":"<code>"} when a client message is rejected.
// Client → server: {"type": "key"|"direction"|"pose"|"pause"|"resume"|
// "toggle"|"retry"|"advance", ...} with the same fields as the REST bodies.
// The connection closes when the game is deleted or swept.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alphasnake/internal/game"
	"github.com/robalobadob/alphasnake/internal/pose"
	"github.com/robalobadob/alphasnake/internal/session"
)

const (
	wsWriteWait = 10 * time.Second
	wsOpTimeout = 5 * time.Second
)

type wsMessage struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	X         int             `json:"x,omitempty"`
	Y         int             `json:"y,omitempty"`
	Direction string          `json:"direction,omitempty"`
	Landmarks *pose.Landmarks `json:"landmarks,omitempty"`
}

type wsOut struct {
	Type  string         `json:"type"`
	State *game.Snapshot `json:"state,omitempty"`
	Error string         `json:"error,omitempty"`
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(v wsOut) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) closeWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(wsWriteWait))
	_ = c.conn.Close()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	run := runnerFrom(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := &wsConn{conn: conn}
	l := log.With().Str("game", run.ID().String()).Logger()
	l.Debug().Msg("websocket connected")

	snaps, cancel := run.Subscribe()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for snap := range snaps {
			if err := c.send(wsOut{Type: "state", State: &snap}); err != nil {
				_ = conn.Close()
				return
			}
		}
		// Channel closed: either we cancelled or the game is gone.
		c.closeWith(websocket.CloseNormalClosure, "game closed")
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Debug().Err(err).Msg("websocket read")
			}
			break
		}
		if err := s.dispatch(run, msg); err != nil {
			_, code := errorStatus(err)
			switch {
			case errors.Is(err, errUnknownKey):
				code = "unknown_key"
			case errors.Is(err, errUnknownMessage):
				code = "unknown_message"
			}
			if err := c.send(wsOut{Type: "error", Error: code}); err != nil {
				break
			}
		}
	}
	cancel()
	<-writerDone
	l.Debug().Msg("websocket disconnected")
}

var errUnknownMessage = errors.New("unknown message type")

// dispatch applies one client message to the runner.
func (s *Server) dispatch(run *session.Runner, msg wsMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case "key":
		err = submitKey(run, msg.Key)
	case "direction":
		err = run.SubmitKey(game.Direction{X: msg.X, Y: msg.Y})
	case "pose":
		_, _, err = s.submitPose(run, msg.Direction, msg.Landmarks)
	case "pause":
		_, err = run.Pause(ctx)
	case "resume":
		_, err = run.Resume(ctx)
	case "toggle":
		_, err = run.TogglePause(ctx)
	case "retry":
		err = run.Retry(ctx)
	case "advance":
		err = run.Advance(ctx)
	default:
		err = errUnknownMessage
	}
	return err
}
