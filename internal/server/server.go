// Package server streams snapshots to websocket clients.
//
// One goroutine ([Server.Pump]) is the single consumer of the snapshot
// stream. It encodes each snapshot once and offers the bytes to every
// connected client. A client whose queue is full misses that frame; the
// simulation never waits for a browser.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/sphsim/internal/dynamo"
)

const (
	clientQueue  = 8
	writeTimeout = 5 * time.Second
)

// Source is the receiving side of the snapshot stream.
type Source interface {
	Receive(ctx context.Context) (dynamo.Snapshot, error)
	CloseReceive()
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	dropped atomic.Uint64
}

type Server struct {
	src      Source
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte

	frames  atomic.Uint64
	dropped atomic.Uint64
}

func New(src Source, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		src:    src,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Status is served at /status.
type Status struct {
	Clients int    `json:"clients"`
	Frames  uint64 `json:"frames"`
	Dropped uint64 `json:"dropped"`
}

func (s *Server) Status() Status {
	s.mu.RLock()
	n := len(s.clients)
	s.mu.RUnlock()
	return Status{Clients: n, Frames: s.frames.Load(), Dropped: s.dropped.Load()}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Status()); err != nil {
			s.logger.Debug("status write failed", "err", err)
		}
	})
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientQueue)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.latest != nil {
		c.send <- s.latest
	}
	s.mu.Unlock()
	s.logger.Info("client connected", "remote", r.RemoteAddr)

	go s.writeLoop(c)

	// Clients only talk to close; read until that happens.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.remove(c)
	s.logger.Info("client disconnected", "remote", r.RemoteAddr, "dropped", c.dropped.Load())
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			s.logger.Debug("websocket deadline failed", "err", err)
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.logger.Debug("websocket write failed", "err", err)
			s.remove(c)
			return
		}
	}
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	if err != nil {
		s.logger.Debug("websocket close failed", "err", err)
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = msg
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			c.dropped.Add(1)
			s.dropped.Add(1)
		}
	}
}

// Pump consumes the stream until the producer finishes or ctx ends. It is
// the only caller of Receive.
func (s *Server) Pump(ctx context.Context) error {
	for {
		snap, err := s.src.Receive(ctx)
		if errors.Is(err, dynamo.ErrProducerGone) {
			return nil
		}
		if err != nil {
			return err
		}

		msg, err := json.Marshal(snap)
		if err != nil {
			s.logger.Warn("snapshot not encodable, skipped", "tick", snap.Tick, "err", err)
			continue
		}
		s.frames.Add(1)
		s.broadcast(msg)
	}
}

// Close stops consuming and disconnects every client.
func (s *Server) Close() {
	s.src.CloseReceive()
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// ListenAndServe serves on addr and pumps the stream until ctx ends. The
// HTTP server keeps running after the producer finishes so clients can
// still see the last frame.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		if err := s.Pump(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("stream stopped", "err", err)
		}
		s.logger.Info("stream finished", "frames", s.frames.Load(), "dropped", s.dropped.Load())
	}()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr, "ws", "/ws")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
