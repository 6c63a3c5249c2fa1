package circuits

import "time"

// Timer is a component implementing the generate_events extension point: it
// fires a named event on its own channel every interval, or just once if
// repeat is false. Its clock is injectable so tests can drive it
// deterministically.
type Timer struct {
	*Component

	kind     string
	interval time.Duration
	repeat   bool
	now      func() time.Time
	next     time.Time
	fired    bool
}

// TimerOption configures a Timer at construction time.
type TimerOption func(*Timer)

// WithTimerChannel sets the channel the timer fires on (default
// AnyChannel).
func WithTimerChannel(channel string) TimerOption {
	return func(t *Timer) { t.Component = NewComponent(channel) }
}

// WithTimerClock overrides the timer's clock, for deterministic tests.
func WithTimerClock(now func() time.Time) TimerOption {
	return func(t *Timer) { t.now = now }
}

// WithTimerRepeat controls whether the timer re-arms after firing (default
// true).
func WithTimerRepeat(repeat bool) TimerOption {
	return func(t *Timer) { t.repeat = repeat }
}

// NewTimer creates a Timer that fires kind every interval.
func NewTimer(kind string, interval time.Duration, opts ...TimerOption) *Timer {
	t := &Timer{
		kind:     kind,
		interval: interval,
		repeat:   true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.Component == nil {
		t.Component = NewComponent(AnyChannel)
	}
	t.next = t.now().Add(interval)
	t.Component.generate = t.poll
	t.Component.Manager().addGenerator(t.Component)
	return t
}

func (t *Timer) poll(_ *Manager) []*Event {
	now := t.now()
	if now.Before(t.next) {
		return nil
	}
	if t.fired && !t.repeat {
		return nil
	}
	t.fired = true
	if t.repeat {
		t.next = now.Add(t.interval)
	}
	return []*Event{New(t.kind)}
}
