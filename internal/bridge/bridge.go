// Package bridge exposes typing trials to browser front ends over websockets.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/verte-zerg/typespeed/internal/model"
	"github.com/verte-zerg/typespeed/internal/trial"
)

// Message types exchanged over the websocket.
const (
	TypeInput    = "input"
	TypeRestart  = "restart"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Session is one trial driven by a single connection.
type Session interface {
	Ingest(raw string) trial.Snapshot
	Restart(words int) trial.Snapshot
	Snapshot() trial.Snapshot
	Close()
}

// SessionFactory builds a session whose changes are delivered to notify.
type SessionFactory func(notify func(trial.Snapshot)) Session

// SeriesSource provides the chart series of recent results.
type SeriesSource interface {
	Series(ctx context.Context) model.Series
}

// Inbound is a client message.
type Inbound struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Words int    `json:"words,omitempty"`
}

// Outbound is a server message.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Server serves the websocket and history endpoints.
type Server struct {
	newSession SessionFactory
	history    SeriesSource
	logger     *zap.SugaredLogger
	upgrader   websocket.Upgrader
}

// NewServer returns a Server. history may be nil.
func NewServer(newSession SessionFactory, history SeriesSource, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		newSession: newSession,
		history:    history,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/history", s.handleHistory)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("bridge listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Infow("shutting down bridge")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	series := model.Series{WPM: []int{}, Accuracy: []int{}, Labels: []string{}}
	if s.history != nil {
		series = s.history.Series(r.Context())
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(series); err != nil {
		s.logger.Warnw("failed to write history", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, logger: s.logger.With("remote", r.RemoteAddr)}
	session := s.newSession(func(snap trial.Snapshot) {
		c.send(Outbound{Type: TypeSnapshot, Data: snap})
	})
	c.logger.Debugw("client connected")
	defer func() {
		session.Close()
		c.close()
		c.logger.Debugw("client disconnected")
	}()

	c.send(Outbound{Type: TypeSnapshot, Data: session.Snapshot()})
	c.readLoop(session)
}

type client struct {
	conn   *websocket.Conn
	logger *zap.SugaredLogger

	writeMu sync.Mutex
	closed  bool
}

func (c *client) readLoop(session Session) {
	for {
		var msg Inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("websocket read failed", "error", err)
			}
			return
		}
		switch msg.Type {
		case TypeInput:
			session.Ingest(msg.Data)
		case TypeRestart:
			session.Restart(msg.Words)
		default:
			c.send(Outbound{Type: TypeError, Data: "unknown message type: " + msg.Type})
		}
	}
}

// send writes one message. Callers include clock goroutines, so writes are
// serialized and dropped once the connection is closed.
func (c *client) send(msg Outbound) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		c.logger.Debugw("failed to set write deadline", "error", err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Debugw("websocket write failed", "type", msg.Type, "error", err)
	}
}

func (c *client) close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if err := c.conn.Close(); err != nil {
		// Best-effort close.
		_ = err
	}
}
