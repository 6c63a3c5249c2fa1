package circuits

// Synthetic lifecycle event kinds fired by the core itself. External code
// may listen for any of these like any other event.
const (
	EventRegistered   = "registered"
	EventUnregistered = "unregistered"
	EventError        = "error"
	EventStarted      = "started"
	EventStopped      = "stopped"
)

func newRegisteredEvent(child, parent *Component) *Event {
	return New(EventRegistered, WithArgs(child, parent))
}

func newUnregisteredEvent(child, parent *Component) *Event {
	return New(EventUnregistered, WithArgs(child, parent))
}

func newErrorEvent(herr *HandlerError, h *Handler) *Event {
	return New(EventError, WithArgs(herr.Kind, herr, herr.Traceback, h.Name))
}

func newStartedEvent(m *Manager, mode string) *Event {
	return New(EventStarted, WithArgs(m, mode))
}

func newStoppedEvent(m *Manager) *Event {
	return New(EventStopped, WithArgs(m))
}
