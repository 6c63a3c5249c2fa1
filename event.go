package circuits

import "strings"

// Event is a single-use, identity-compared record of something that
// happened. Once fired, an Event's Value is populated by the manager that
// dispatches it; callers should treat a fired Event as read-only.
type Event struct {
	// Name is the lowercased event kind, matched against handlers'
	// declared kinds.
	Name string

	// Args is the ordered positional payload.
	Args []any

	// Kwargs is the keyword payload. The core never inspects it.
	Kwargs map[string]any

	// Channels is the event's own target channel set, used when Fire is
	// called without explicit channels.
	Channels []string

	// Notify, if non-empty, names an event kind to fire on the same
	// channels once this event's dispatch completes, carrying the
	// completed Value as its sole argument.
	Notify string

	// Value is bound when the event is enqueued. Nil before that.
	Value *Value

	// Success is true once dispatch completes without any handler
	// failing (including the case where a filter handler stopped
	// dispatch early).
	Success bool

	// Failure is true if any handler panicked or returned an error.
	Failure bool
}

// EventOption configures an Event at construction time.
type EventOption func(*Event)

// WithArgs appends positional arguments to the event.
func WithArgs(args ...any) EventOption {
	return func(e *Event) { e.Args = append(e.Args, args...) }
}

// WithKwargs merges keyword arguments into the event.
func WithKwargs(kv map[string]any) EventOption {
	return func(e *Event) {
		if len(kv) == 0 {
			return
		}
		if e.Kwargs == nil {
			e.Kwargs = make(map[string]any, len(kv))
		}
		for k, v := range kv {
			e.Kwargs[k] = v
		}
	}
}

// WithChannels sets the event's own target channel set, consulted by Fire
// when the caller doesn't pass explicit channels.
func WithChannels(channels ...string) EventOption {
	return func(e *Event) { e.Channels = append(e.Channels, channels...) }
}

// WithNotify sets the event kind to fire once this event completes.
func WithNotify(kind string) EventOption {
	return func(e *Event) { e.Notify = strings.ToLower(kind) }
}

// New builds an Event of the given kind. kind is lowercased to form the
// Name matched against handler declarations.
func New(kind string, opts ...EventOption) *Event {
	e := &Event{Name: strings.ToLower(kind)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
