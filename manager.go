package circuits

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// HandlerError is the captured record of a handler that panicked or
// returned an error during dispatch: (kind, args, traceback).
type HandlerError struct {
	Kind      string
	Args      []any
	Traceback string
	cause     error
}

func (e *HandlerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("circuits: handler error on %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("circuits: handler error on %s", e.Kind)
}

func (e *HandlerError) Unwrap() error { return e.cause }

// queued is one pending (event, target channels) entry on a manager's
// queue.
type queued struct {
	event    *Event
	channels []string
}

// Manager is the root behavior of a component tree: it owns the event
// queue, the merged handler registry for the whole tree, and drives the
// tick loop. Any Component becomes a Manager's root the moment it has no
// parent.
type Manager struct {
	mu sync.Mutex

	root       *Component
	registry   *registry
	queue      []queued
	generators []*Component
	running    bool
	ticks      uint64

	logger *slog.Logger
}

func newManager(root *Component) *Manager {
	return &Manager{
		root:     root,
		registry: newRegistry(),
		logger:   slog.Default(),
	}
}

// Root returns the component at the root of this manager's tree.
func (m *Manager) Root() *Component {
	return m.root
}

// Ticks returns how many times Tick has run.
func (m *Manager) Ticks() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

// enqueue creates a Value for event, binds it, and appends (event,
// channels) to the queue.
func (m *Manager) enqueue(event *Event, channels []string) *Value {
	v := newValue(event, m)
	event.Value = v
	m.mu.Lock()
	m.queue = append(m.queue, queued{event: event, channels: channels})
	m.mu.Unlock()
	return v
}

// Fire enqueues event on channels (or event.Channels, or the root's
// channel, in that preference order) and returns its Value.
func (m *Manager) Fire(event *Event, channels ...string) *Value {
	if len(channels) == 0 {
		if len(event.Channels) > 0 {
			channels = event.Channels
		} else {
			channels = []string{m.root.Channel()}
		}
	}
	return m.enqueue(event, channels)
}

func (m *Manager) addGenerator(c *Component) {
	m.mu.Lock()
	m.generators = append(m.generators, c)
	m.mu.Unlock()
}

// removeGenerators drops every component in subtree from the generator
// poll list.
func (m *Manager) removeGenerators(subtree []*Component) {
	drop := make(map[*Component]bool, len(subtree))
	for _, c := range subtree {
		drop[c] = true
	}
	m.mu.Lock()
	out := m.generators[:0]
	for _, g := range m.generators {
		if !drop[g] {
			out = append(out, g)
		}
	}
	m.generators = out
	m.mu.Unlock()
}

// flush drains exactly one snapshot of the queue. Events fired by handlers
// during this round are left for the next round.
func (m *Manager) flush() {
	m.mu.Lock()
	batch := m.queue
	m.queue = nil
	m.mu.Unlock()

	for i := range batch {
		m.dispatch(batch[i])
	}
}

// pollGenerators calls every registered generator function once, enqueuing
// whatever events it returns on that component's own channel.
func (m *Manager) pollGenerators() {
	m.mu.Lock()
	gens := append([]*Component(nil), m.generators...)
	m.mu.Unlock()

	for _, g := range gens {
		fn := g.generateFn()
		if fn == nil {
			continue
		}
		for _, e := range fn(m) {
			m.enqueue(e, []string{g.Channel()})
		}
	}
}

// Tick performs one pump step: flush the queue once, poll generators once,
// and report whether work remains.
func (m *Manager) Tick() bool {
	m.flush()
	m.pollGenerators()

	m.mu.Lock()
	m.ticks++
	pending := len(m.queue) > 0
	m.mu.Unlock()
	return pending
}

// Run loops Tick until Stop is called or ctx is cancelled, then fires
// Stopped and returns. ctx may be context.Background() for an
// externally-stopped-only loop.
func (m *Manager) Run(ctx context.Context) {
	m.setRunning(true)
	m.Fire(newStartedEvent(m, "run"))

	for m.isRunning() {
		select {
		case <-ctx.Done():
			m.Stop()
		default:
		}
		m.Tick()
	}
	m.flush()
	m.Fire(newStoppedEvent(m))
}

// Stop marks the manager stopped. Fire still enqueues afterwards, but Run
// exits at the next tick boundary once it has drained the queue one more
// time.
func (m *Manager) Stop() {
	m.setRunning(false)
}

func (m *Manager) setRunning(v bool) {
	m.mu.Lock()
	m.running = v
	m.mu.Unlock()
}

func (m *Manager) isRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// dispatch runs one queued (event, channels) entry to completion: resolves
// handlers, invokes them in priority order, and completes the event's
// Value.
func (m *Manager) dispatch(q queued) {
	event := q.event
	v := event.Value

	var handlers []*Handler
	seen := make(map[*Handler]bool)
	for _, ch := range q.channels {
		for _, h := range m.registry.lookup(ch, event.Name) {
			if !seen[h] {
				seen[h] = true
				handlers = append(handlers, h)
			}
		}
	}

	if len(handlers) == 0 {
		event.Success = false
		m.logger.Debug("circuits: event dropped, no matching handler", "kind", event.Name, "channels", q.channels)
		v.finish(false)
		return
	}

	anyError := false
	for _, h := range handlers {
		res, err := invoke(h, event)
		if err != nil {
			anyError = true
			event.Failure = true
			v.setError()

			herr, ok := err.(*HandlerError)
			if !ok {
				herr = &HandlerError{Kind: fmt.Sprintf("%T", err), Args: event.Args, cause: err}
			}
			v.appendReturn(herr)
			m.Fire(newErrorEvent(herr, h), AnyChannel)

			if h.Filter {
				break
			}
			continue
		}

		v.appendReturn(res)
		if h.Filter && res != nil {
			break
		}
	}

	event.Success = !anyError
	v.finish(true)

	if event.Notify != "" {
		notifyEvent := New(event.Notify, WithArgs(v))
		m.enqueue(notifyEvent, q.channels)
	}
}

// invoke calls h.Func, recovering a panic into a HandlerError so that a
// misbehaving handler can never take down the manager. The HandlerError's
// Kind is the panic value itself when it was a plain string (matching a
// "raise Boom" style panic(\"Boom\")), else the panic value's type name.
func invoke(h *Handler, e *Event) (result any, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		kind := fmt.Sprintf("%T", r)
		if s, ok := r.(string); ok {
			kind = s
		}
		var cause error
		if rErr, ok := r.(error); ok {
			cause = rErr
		}
		err = &HandlerError{
			Kind:      kind,
			Args:      e.Args,
			Traceback: fmt.Sprintf("%v\n%s", r, debug.Stack()),
			cause:     cause,
		}
	}()
	return h.Func(e)
}
