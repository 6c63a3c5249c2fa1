package circuits

import "strings"

// HandlerFunc is the body of a declared handler. Its return is collected
// into the firing event's Value; a non-nil error (or a panic, recovered by
// the manager) marks the event as failed without stopping the remaining
// handlers from running, unless the handler is a filter.
type HandlerFunc func(e *Event) (any, error)

// Handler is one declared (name, channel, kinds) -> HandlerFunc binding,
// live in exactly one registry for as long as its owning component is
// reachable from a tree.
type Handler struct {
	Name    string
	Events  []string
	Channel string

	// Priority orders handlers within a bucket, highest first. Ties break
	// by registration order.
	Priority int

	// Filter stops dispatch to the remaining handlers in priority order
	// once this handler returns a non-nil result (or any error).
	Filter bool

	Func HandlerFunc

	component *Component
	seq       int
}

// HandlerOption configures a Handler at declaration time.
type HandlerOption func(*Handler)

// WithPriority sets the handler's dispatch priority (default 0, higher
// runs first).
func WithPriority(p int) HandlerOption {
	return func(h *Handler) { h.Priority = p }
}

// WithFilterHandler marks the handler as a filter: if it runs and returns a
// non-nil result, no lower-priority handler for the same event runs.
func WithFilterHandler() HandlerOption {
	return func(h *Handler) { h.Filter = true }
}

// WithHandlerChannel overrides the channel a handler listens on (default:
// its owning component's channel at declaration time).
func WithHandlerChannel(channel string) HandlerOption {
	return func(h *Handler) { h.Channel = channel }
}

// matchesKind reports whether the handler should run for an event of the
// given kind: true for a catch-all handler (no declared kinds) or one that
// explicitly names kind.
func (h *Handler) matchesKind(kind string) bool {
	if len(h.Events) == 0 {
		return true
	}
	for _, want := range h.Events {
		if strings.EqualFold(want, kind) {
			return true
		}
	}
	return false
}

// Component returns the component that declared this handler.
func (h *Handler) Component() *Component {
	return h.component
}
