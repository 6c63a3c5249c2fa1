package circuits

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEchoScenario(t *testing.T) {
	root := NewComponent("echo")
	root.On("hello", func(e *Event) (any, error) {
		return e.Args, nil
	})

	v := root.Fire(New("hello", WithArgs("world")), "echo")
	root.Manager().Tick()

	require.True(t, v.Handled())
	require.Equal(t, []any{"world"}, v.Value())
}

func TestWildcardSinkScenario(t *testing.T) {
	root := NewComponent("echo")
	root.On("hello", func(e *Event) (any, error) { return e.Args, nil })

	sink := &recordingWriter{}
	debugger := NewDebugger(sink, EventRegistered, EventUnregistered)
	require.NoError(t, debugger.Register(root))

	root.Fire(New("hello", WithArgs("a")), "echo")
	root.Manager().Tick()

	require.Len(t, sink.lines(), 1, "debugger should see exactly one dispatched event")
}

func TestFilterShortCircuits(t *testing.T) {
	root := NewComponent("c")
	var secondCalled bool

	root.On("k", func(e *Event) (any, error) { return 1, nil }, WithFilterHandler())
	root.On("k", func(e *Event) (any, error) { secondCalled = true; return 2, nil })

	v := root.Fire(New("k"), "c")
	root.Manager().Tick()

	require.Equal(t, 1, v.Value())
	require.False(t, secondCalled, "second handler should not run after a filter short-circuits")
}

func TestErrorPropagationScenario(t *testing.T) {
	root := NewComponent("c")
	root.On("k", func(e *Event) (any, error) { panic("Boom") })

	sink := &recordingWriter{}
	debugger := NewDebugger(sink)
	require.NoError(t, debugger.Register(root))

	v := root.Fire(New("k"), "c")
	root.Manager().Tick() // dispatches k, fires Error
	root.Manager().Tick() // dispatches the Error event

	require.True(t, v.Errors())

	var sawBoom bool
	for _, line := range sink.lines() {
		if strings.Contains(line, "Boom") {
			sawBoom = true
		}
	}
	require.True(t, sawBoom, "expected an Error event carrying kind Boom, got: %v", sink.lines())
}

func TestDynamicCompositionScenario(t *testing.T) {
	a := NewComponent("a")
	b := NewComponent("b")
	var called bool
	b.On("special", func(e *Event) (any, error) { called = true; return nil, nil })

	require.NoError(t, a.Attach(b))

	v := a.Fire(New("special"), "b")
	a.Manager().Tick()
	require.True(t, called)
	require.True(t, v.Handled())

	called = false
	b.Unregister()

	v2 := a.Fire(New("special"), "b")
	a.Manager().Tick()
	require.False(t, called)
	require.False(t, v2.Handled())
}

func TestNotifyChainScenario(t *testing.T) {
	root := NewComponent("c")
	root.On("e", func(e *Event) (any, error) { return "done-value", nil })

	var observed *Value
	root.On("done", func(e *Event) (any, error) {
		observed = e.Args[0].(*Value)
		return nil, nil
	})

	root.Fire(New("e", WithNotify("done")), "c")
	root.Manager().Tick() // dispatches e, enqueues done
	root.Manager().Tick() // dispatches done

	require.NotNil(t, observed)
	require.Equal(t, "done-value", observed.Value())
}

func TestUnionCommutativeCoverageStablePriority(t *testing.T) {
	var order []string
	a := NewComponent("x")
	a.On("k", func(e *Event) (any, error) { order = append(order, "a"); return nil, nil })
	b := NewComponent("x")
	b.On("k", func(e *Event) (any, error) { order = append(order, "b"); return nil, nil })

	root, err := Union(a, b)
	require.NoError(t, err)

	root.Fire(New("k"), AnyChannel)
	root.Manager().Tick()

	require.Equal(t, []string{"a", "b"}, order, "equal priority: left operand's handlers run first")
}

func TestWildcardEventReachesEveryChannel(t *testing.T) {
	root := NewComponent("root")
	child := NewComponent("child")
	require.NoError(t, child.Register(root))

	var hits int
	root.On("ping", func(e *Event) (any, error) { hits++; return nil, nil }, WithHandlerChannel("root"))
	child.On("ping", func(e *Event) (any, error) { hits++; return nil, nil }, WithHandlerChannel("child"))

	v := root.Fire(New("ping"), AnyChannel)
	root.Manager().Tick()

	require.True(t, v.Handled())
	require.Equal(t, 2, hits, "a wildcard-targeted event should reach handlers on every channel exactly once")
}

// recordingWriter is a tiny io.Writer collecting each Write call as one
// line, used to observe Debugger output deterministically.
type recordingWriter struct {
	buf []string
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, string(p))
	return len(p), nil
}

func (w *recordingWriter) lines() []string {
	return append([]string(nil), w.buf...)
}
