package circuits

import "sync"

// thenRequest is a notification scheduled via Value.Then before the value
// completed.
type thenRequest struct {
	kind     string
	channels []string
}

// Value is the deferred result of a fired Event. It collects the return of
// every handler that ran, exposes success/failure, and can chain a
// notification event once dispatch completes. A Value may outlive the
// Event that created it.
type Value struct {
	mu sync.Mutex

	event   *Event
	manager *Manager
	parent  *Value

	returns  []any
	value    any
	errs     bool
	handled  bool
	complete bool
	pending  []thenRequest
}

func newValue(e *Event, m *Manager) *Value {
	return &Value{event: e, manager: m}
}

// Event returns the Event this Value was created for.
func (v *Value) Event() *Event {
	return v.event
}

// Value returns the collected handler return(s): nil before completion or if
// no handler ran, the single handler's return if exactly one ran, or the
// ordered slice of returns if more than one ran.
func (v *Value) Value() any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Errors reports whether any handler for this event panicked or returned an
// error.
func (v *Value) Errors() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errs
}

// Handled reports whether at least one matching handler was found.
func (v *Value) Handled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handled
}

// SetParent binds a parent Value. When this Value completes, its return and
// error flag propagate into the parent.
func (v *Value) SetParent(parent *Value) {
	v.mu.Lock()
	v.parent = parent
	v.mu.Unlock()
}

// Then schedules kind to be fired on channels (or the manager's default
// channel if none given) once this Value completes, with this Value as the
// sole argument. If the Value has already completed, it fires immediately.
func (v *Value) Then(kind string, channels ...string) {
	v.mu.Lock()
	if v.complete {
		m := v.manager
		v.mu.Unlock()
		m.Fire(New(kind, WithArgs(v)), channels...)
		return
	}
	v.pending = append(v.pending, thenRequest{kind: kind, channels: channels})
	v.mu.Unlock()
}

// appendReturn records one handler's return value.
func (v *Value) appendReturn(r any) {
	v.mu.Lock()
	v.returns = append(v.returns, r)
	v.mu.Unlock()
}

// setError marks that at least one handler failed.
func (v *Value) setError() {
	v.mu.Lock()
	v.errs = true
	v.mu.Unlock()
}

// finish collapses the collected returns into Value() and fires any pending
// Then notifications. handled reports whether any handler matched at all.
func (v *Value) finish(handled bool) {
	v.mu.Lock()
	v.handled = handled
	switch len(v.returns) {
	case 0:
		v.value = nil
	case 1:
		v.value = v.returns[0]
	default:
		v.value = append([]any(nil), v.returns...)
	}
	v.complete = true

	parent := v.parent
	pending := v.pending
	v.pending = nil
	m := v.manager
	val := v.value
	errs := v.errs
	v.mu.Unlock()

	if parent != nil {
		parent.mu.Lock()
		parent.returns = append(parent.returns, val)
		if errs {
			parent.errs = true
		}
		parent.mu.Unlock()
	}

	for _, req := range pending {
		m.Fire(New(req.kind, WithArgs(v)), req.channels...)
	}
}
