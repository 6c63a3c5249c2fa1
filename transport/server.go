package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/circuitsgo/circuits"
)

// Server serves websocket connections, one Socket component each, attached
// under a shared root component. It mirrors the teacher's ServeHTTP
// upgrade-detection split: a request without a websocket upgrade gets the
// introspection page, a websocket upgrade request gets a live socket.
type Server struct {
	root     *circuits.Component
	sessions SessionStore
	rate     struct {
		perSecond float64
		burst     int
	}
	logger *slog.Logger
}

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithSessionStore sets the SessionStore used to assign connections to
// channels (default: a CookieSessionStore with no signing keys; it cannot
// save a session, so every connection is assigned a fresh channel).
func WithSessionStore(store SessionStore) ServerOption {
	return func(s *Server) { s.sessions = store }
}

// WithInboundRateLimit guards every connection's inbound Fire calls with a
// limiter accepting burst frames and refilling at perSecond per second.
func WithInboundRateLimit(perSecond float64, burst int) ServerOption {
	return func(s *Server) { s.rate.perSecond, s.rate.burst = perSecond, burst }
}

// NewServer creates a Server whose sockets attach under root.
func NewServer(root *circuits.Component, opts ...ServerOption) *Server {
	s := &Server{root: root, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = NewCookieSessionStore("circuits")
	}
	return s
}

// ServeHTTP upgrades websocket requests into a live Socket registered
// under the server's root component; anything else gets a tiny
// introspection page.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrade := false
	for _, h := range r.Header["Upgrade"] {
		if h == "websocket" {
			upgrade = true
			break
		}
	}
	if !upgrade {
		s.serveIntrospection(w, r)
		return
	}
	s.serveSocket(w, r)
}

func (s *Server) serveIntrospection(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderTree(w, s.root); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	channel, err := s.sessions.Channel(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("session error: %v", err), http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Save(w, r, channel); err != nil {
		s.logger.Warn("transport: session save failed", "error", err)
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("transport: accept failed", "error", err)
		return
	}

	var opts []SocketOption
	if s.rate.perSecond > 0 {
		opts = append(opts, WithRateLimit(s.rate.perSecond, s.rate.burst))
	}
	sock := NewSocket(conn, channel, opts...)
	if err := sock.Register(s.root); err != nil {
		s.logger.Warn("transport: socket registration failed", "error", err)
		conn.Close(websocket.StatusInternalError, "registration failed")
		return
	}
	defer sock.Unregister()
	defer sock.Close()

	ctx := r.Context()
	if err := sock.ReadLoop(ctx); err != nil {
		s.logger.Debug("transport: socket closed", "error", err)
	}
}
