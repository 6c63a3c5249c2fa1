package circuits

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDebuggerObservesDispatchOrder(t *testing.T) {
	root := NewComponent("c")
	root.On("a", func(e *Event) (any, error) { return nil, nil })
	root.On("b", func(e *Event) (any, error) { return nil, nil })

	sink := &recordingWriter{}
	debugger := NewDebugger(sink, EventRegistered, EventUnregistered)
	require.NoError(t, debugger.Register(root))

	root.Fire(New("a"), "c")
	root.Fire(New("b"), "c")
	root.Manager().Tick()

	lines := sink.lines()
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "<a"))
	require.True(t, strings.HasPrefix(lines[1], "<b"))
}

func TestDebuggerIgnoreListSuppressesMatchingKinds(t *testing.T) {
	root := NewComponent("c")
	root.On("noisy", func(e *Event) (any, error) { return nil, nil })
	root.On("quiet", func(e *Event) (any, error) { return nil, nil })

	sink := &recordingWriter{}
	debugger := NewDebugger(sink, EventRegistered, EventUnregistered, "noisy")
	require.NoError(t, debugger.Register(root))

	root.Fire(New("noisy"), "c")
	root.Fire(New("quiet"), "c")
	root.Manager().Tick()

	lines := sink.lines()
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], "<quiet"))
}

func TestDebuggerCarriesArgsAndKwargs(t *testing.T) {
	root := NewComponent("c")
	root.On("k", func(e *Event) (any, error) { return nil, nil })

	sink := &recordingWriter{}
	debugger := NewDebugger(sink, EventRegistered, EventUnregistered)
	require.NoError(t, debugger.Register(root))

	root.Fire(New("k", WithArgs("x"), WithKwargs(map[string]any{"n": 1})), "c")
	root.Manager().Tick()

	require.Len(t, sink.lines(), 1)
	line := sink.lines()[0]
	require.True(t, strings.Contains(line, "x"))
	require.True(t, strings.Contains(line, "n:1") || strings.Contains(line, "map[n:1]"))
}
