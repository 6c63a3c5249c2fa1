package circuits

import (
	"sort"
	"sync"
)

// bucketKey addresses the per-(channel,kind) handler bucket.
type bucketKey struct {
	channel string
	kind    string
}

// registry is the per-manager index from (channel, kind) to the ordered
// list of handlers that should run. It is never queried for partial matches
// on args/kwargs: routing is purely by channel and kind.
type registry struct {
	mu sync.RWMutex

	exact    map[bucketKey][]*Handler // kind-specific buckets, keyed by (channel, kind)
	catchAll map[string][]*Handler    // catch-all buckets, keyed by channel
	all      []*Handler               // every handler, insertion order; used for wildcard-target lookups
	seq      int
}

func newRegistry() *registry {
	return &registry{
		exact:    make(map[bucketKey][]*Handler),
		catchAll: make(map[string][]*Handler),
	}
}

// addHandler inserts h into every bucket it belongs to and assigns it a
// fresh sequence number, used to break priority ties in registration order.
func (r *registry) addHandler(h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	h.seq = r.seq

	if len(h.Events) == 0 {
		r.catchAll[h.Channel] = append(r.catchAll[h.Channel], h)
	} else {
		for _, kind := range h.Events {
			key := bucketKey{channel: h.Channel, kind: kind}
			r.exact[key] = append(r.exact[key], h)
		}
	}
	r.all = append(r.all, h)
}

// removeHandler deletes h from every bucket it was inserted into.
func (r *registry) removeHandler(h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(h.Events) == 0 {
		if remaining := removeHandlerFrom(r.catchAll[h.Channel], h); len(remaining) == 0 {
			delete(r.catchAll, h.Channel)
		} else {
			r.catchAll[h.Channel] = remaining
		}
	} else {
		for _, kind := range h.Events {
			key := bucketKey{channel: h.Channel, kind: kind}
			if remaining := removeHandlerFrom(r.exact[key], h); len(remaining) == 0 {
				delete(r.exact, key)
			} else {
				r.exact[key] = remaining
			}
		}
	}
	r.all = removeHandlerFrom(r.all, h)
}

func removeHandlerFrom(handlers []*Handler, target *Handler) []*Handler {
	out := handlers[:0]
	for _, h := range handlers {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

// addComponent registers every handler declared on c into the registry.
func (r *registry) addComponent(c *Component) {
	for _, h := range c.handlersSnapshot() {
		r.addHandler(h)
	}
}

// removeComponent unregisters every handler declared on c from the
// registry.
func (r *registry) removeComponent(c *Component) {
	for _, h := range c.handlersSnapshot() {
		r.removeHandler(h)
	}
}

// lookup returns, in priority (then registration) order, every handler that
// should run for an event of kind fired on the target channel.
func (r *registry) lookup(channel, kind string) []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var merged []*Handler
	if channel == AnyChannel {
		// A wildcard target ignores channel entirely: every handler
		// anywhere whose kind filter accepts the event runs.
		for _, h := range r.all {
			if h.matchesKind(kind) {
				merged = append(merged, h)
			}
		}
	} else {
		merged = append(merged, r.exact[bucketKey{channel: channel, kind: kind}]...)
		merged = append(merged, r.catchAll[channel]...)
		merged = append(merged, r.exact[bucketKey{channel: AnyChannel, kind: kind}]...)
		merged = append(merged, r.catchAll[AnyChannel]...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Priority != merged[j].Priority {
			return merged[i].Priority > merged[j].Priority
		}
		return merged[i].seq < merged[j].seq
	})
	return merged
}
