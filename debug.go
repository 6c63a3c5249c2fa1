package circuits

import (
	"fmt"
	"io"
	"sync"
)

// Debugger is a component listening on (*, *) that writes every dispatched
// event it observes to a sink, in exactly the order the manager dispatches
// them. It is a no-op for any event kind in its ignore list. It exists
// mainly as the canonical test vehicle for dispatch ordering.
type Debugger struct {
	*Component

	mu     sync.Mutex
	sink   io.Writer
	ignore map[string]bool
}

// NewDebugger creates a Debugger writing to sink, ignoring any event whose
// kind is in ignore.
func NewDebugger(sink io.Writer, ignore ...string) *Debugger {
	set := make(map[string]bool, len(ignore))
	for _, kind := range ignore {
		set[kind] = true
	}

	d := &Debugger{
		Component: NewComponent(AnyChannel),
		sink:      sink,
		ignore:    set,
	}
	d.Listen("debug-sink", nil, d.onAny, WithHandlerChannel(AnyChannel))
	return d
}

func (d *Debugger) onAny(e *Event) (any, error) {
	d.mu.Lock()
	ignored := d.ignore[e.Name]
	d.mu.Unlock()
	if ignored {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.sink, "<%s args=%v kwargs=%v>\n", e.Name, e.Args, e.Kwargs)
	return nil, nil
}
