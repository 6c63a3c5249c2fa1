package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"nhooyr.io/websocket"

	"github.com/circuitsgo/circuits"
)

// Frame is the wire shape of one inbound or outbound message: Kind names
// the circuits event to fire (inbound) or is the kind passed to Enqueue
// (outbound); Data is the JSON payload, decoded into the fired event's
// Kwargs on the inbound side.
type Frame struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Socket bridges one websocket connection to a circuits.Component: each
// inbound text frame becomes a Fire'd event on the socket's channel, and
// outbound frames queued with Enqueue are drained to the connection by
// its generator function on every tick.
type Socket struct {
	*circuits.Component

	conn    *websocket.Conn
	limiter *rate.Limiter

	mu      sync.Mutex
	outbox  []Frame
	logger  *slog.Logger
}

// SocketOption configures a Socket at construction time.
type SocketOption func(*Socket)

// WithRateLimit guards inbound Fire calls with a token-bucket limiter
// accepting burst frames then refilling at r per second.
func WithRateLimit(r float64, burst int) SocketOption {
	return func(s *Socket) { s.limiter = rate.NewLimiter(rate.Limit(r), burst) }
}

// NewSocket wraps conn, scoped to channel, as a circuits component. Its
// generator drains queued outbound frames once per tick.
func NewSocket(conn *websocket.Conn, channel string, opts ...SocketOption) *Socket {
	s := &Socket{conn: conn, logger: slog.Default()}
	s.Component = circuits.NewComponent(channel, circuits.WithGenerator(s.drain))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadLoop reads frames off the connection until ctx is cancelled or the
// connection errors, firing one event per frame. It does not return until
// the connection closes.
func (s *Socket) ReadLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("transport: read: %w", err)
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.logger.Warn("transport: dropping malformed frame", "error", err)
			continue
		}
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Warn("transport: inbound frame rate-limited", "kind", f.Kind)
			continue
		}

		var kwargs map[string]any
		if len(f.Data) > 0 {
			if err := json.Unmarshal(f.Data, &kwargs); err != nil {
				s.logger.Warn("transport: dropping frame with unparsable payload", "error", err)
				continue
			}
		}
		s.Fire(circuits.New(f.Kind, circuits.WithKwargs(kwargs)))
	}
}

// Enqueue schedules a frame to be written to the connection on the next
// tick's generator poll.
func (s *Socket) Enqueue(kind string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("transport: encode outbound frame: %w", err)
	}
	s.mu.Lock()
	s.outbox = append(s.outbox, Frame{Kind: kind, Data: encoded})
	s.mu.Unlock()
	return nil
}

// drain is the socket's generator function: it writes every queued
// outbound frame to the connection and returns no events of its own (the
// circuits tree never sees outbound frames as events).
func (s *Socket) drain(_ *circuits.Manager) []*circuits.Event {
	s.mu.Lock()
	pending := s.outbox
	s.outbox = nil
	s.mu.Unlock()

	for _, f := range pending {
		encoded, err := json.Marshal(f)
		if err != nil {
			s.logger.Warn("transport: dropping unencodable outbound frame", "error", err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = s.conn.Write(ctx, websocket.MessageText, encoded)
		cancel()
		if err != nil {
			s.logger.Warn("transport: write failed", "error", err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *Socket) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
