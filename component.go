package circuits

import (
	"fmt"
	"sync"
)

// Component is a node in the composition tree. It owns a channel, a set of
// declared handlers, and child components, and forwards fired events to the
// root manager of its tree. A Component belongs to at most one tree at a
// time; a freshly constructed Component is the root of its own
// single-component tree and so is itself a Manager.
type Component struct {
	mu sync.RWMutex

	channel  string
	parent   *Component
	children []*Component
	handlers []*Handler
	manager  *Manager
	generate func(*Manager) []*Event
}

// ComponentOption configures a Component at construction time.
type ComponentOption func(*Component)

// WithGenerator registers a generate_events-style function: called once per
// tick on this component, its returned events are enqueued on the
// component's channel.
func WithGenerator(fn func(*Manager) []*Event) ComponentOption {
	return func(c *Component) { c.generate = fn }
}

// NewComponent creates a new component on the given channel (AnyChannel if
// empty) and gives it its own Manager. Use Register or Union to attach it
// under another component.
func NewComponent(channel string, opts ...ComponentOption) *Component {
	if channel == "" {
		channel = AnyChannel
	}
	c := &Component{channel: channel}
	for _, opt := range opts {
		opt(c)
	}
	c.manager = newManager(c)
	if c.generate != nil {
		c.manager.addGenerator(c)
	}
	return c
}

// Channel returns the component's channel.
func (c *Component) Channel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Parent returns the component's parent, or nil if it is a tree root.
func (c *Component) Parent() *Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parent
}

// Children returns a snapshot of the component's direct children.
func (c *Component) Children() []*Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Component(nil), c.children...)
}

// Manager returns the manager currently governing this component's tree.
func (c *Component) Manager() *Manager {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manager
}

// HandlerCount returns how many handlers are declared directly on this
// component (not counting descendants).
func (c *Component) HandlerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}

// handlersSnapshot returns a copy of the component's declared handlers.
func (c *Component) handlersSnapshot() []*Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Handler(nil), c.handlers...)
}

// Listen declares a handler named name for the given event kinds (empty
// means catch-all on this component's channel unless overridden). The
// handler is registered into the live registry immediately.
func (c *Component) Listen(name string, kinds []string, fn HandlerFunc, opts ...HandlerOption) *Handler {
	c.mu.Lock()
	h := &Handler{
		Name:      name,
		Events:    append([]string(nil), kinds...),
		Channel:   c.channel,
		Func:      fn,
		component: c,
	}
	for _, opt := range opts {
		opt(h)
	}
	c.handlers = append(c.handlers, h)
	mgr := c.manager
	c.mu.Unlock()

	mgr.registry.addHandler(h)
	return h
}

// On declares a handler for a single event kind: the explicit-API
// equivalent of the conventional-name handler fallback.
func (c *Component) On(kind string, fn HandlerFunc, opts ...HandlerOption) *Handler {
	return c.Listen(kind, []string{kind}, fn, opts...)
}

// Fire enqueues event on this component's root manager. The target channel
// set is channels if given, else event.Channels if non-empty, else this
// component's own channel. Fire never blocks.
func (c *Component) Fire(event *Event, channels ...string) *Value {
	c.mu.RLock()
	mgr := c.manager
	own := c.channel
	c.mu.RUnlock()

	var target []string
	switch {
	case len(channels) > 0:
		target = channels
	case len(event.Channels) > 0:
		target = event.Channels
	default:
		target = []string{own}
	}
	return mgr.enqueue(event, target)
}

// Push is a synonym for Fire retained for the legacy surface.
func (c *Component) Push(event *Event, channel string) *Value {
	return c.Fire(event, channel)
}

// Register attaches this component (and its subtree) under parent. It
// fails with ErrAlreadyRegistered if this component already has a parent,
// or ErrCycle if parent is a descendant of this component.
func (c *Component) Register(parent *Component) error {
	if parent == nil {
		return ErrNilParent
	}

	c.mu.RLock()
	alreadyRegistered := c.parent != nil
	c.mu.RUnlock()
	if alreadyRegistered {
		return ErrAlreadyRegistered
	}

	if isDescendant(c, parent) {
		return ErrCycle
	}

	oldManager := c.Manager()
	oldManager.flush()

	newManager := parent.Manager()

	var subtree []*Component
	collectSubtree(c, &subtree)

	for _, n := range subtree {
		oldManager.registry.removeComponent(n)
	}
	oldManager.removeGenerators(subtree)

	for _, n := range subtree {
		n.mu.Lock()
		n.manager = newManager
		n.mu.Unlock()
	}

	for _, n := range subtree {
		newManager.registry.addComponent(n)
		if n.generateFn() != nil {
			newManager.addGenerator(n)
		}
	}

	parent.mu.Lock()
	parent.children = append(parent.children, c)
	parent.mu.Unlock()

	c.mu.Lock()
	c.parent = parent
	c.mu.Unlock()

	newManager.Fire(newRegisteredEvent(c, parent), AnyChannel)
	return nil
}

// Unregister detaches this component from its parent (a no-op if it is
// already a root) and gives it a fresh manager of its own.
func (c *Component) Unregister() {
	c.mu.RLock()
	parent := c.parent
	c.mu.RUnlock()
	if parent == nil {
		return
	}

	oldManager := c.Manager()
	oldManager.flush()

	var subtree []*Component
	collectSubtree(c, &subtree)
	for _, n := range subtree {
		oldManager.registry.removeComponent(n)
	}
	oldManager.removeGenerators(subtree)

	parent.mu.Lock()
	parent.children = removeChild(parent.children, c)
	parent.mu.Unlock()

	c.mu.Lock()
	c.parent = nil
	c.mu.Unlock()

	newManager := newManager(c)
	for _, n := range subtree {
		n.mu.Lock()
		n.manager = newManager
		n.mu.Unlock()
		newManager.registry.addComponent(n)
		if n.generateFn() != nil {
			newManager.addGenerator(n)
		}
	}

	newManager.Fire(newUnregisteredEvent(c, parent), AnyChannel)
}

// Attach registers child under this component: the `a += b` composition.
func (c *Component) Attach(child *Component) error {
	return child.Register(c)
}

// Union returns a new anonymous root owning every given component as a
// child, registered left to right, so that at equal handler priority the
// earlier component's handlers run first.
func Union(components ...*Component) (*Component, error) {
	root := NewComponent(AnyChannel)
	for _, c := range components {
		if err := c.Register(root); err != nil {
			return nil, fmt.Errorf("circuits: union: %w", err)
		}
	}
	return root, nil
}

func (c *Component) generateFn() func(*Manager) []*Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generate
}

// isDescendant reports whether parent is in the subtree rooted at c, i.e.
// registering c under parent would create a cycle.
func isDescendant(c, parent *Component) bool {
	for p := parent; p != nil; p = p.Parent() {
		if p == c {
			return true
		}
	}
	return false
}

// collectSubtree appends c and every descendant of c to out, depth-first.
func collectSubtree(c *Component, out *[]*Component) {
	*out = append(*out, c)
	for _, child := range c.Children() {
		collectSubtree(child, out)
	}
}

func removeChild(children []*Component, target *Component) []*Component {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}
