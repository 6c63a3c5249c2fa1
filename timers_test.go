package circuits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerDoesNotFireBeforeInterval(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	var fired int
	timer := NewTimer("tick", time.Minute, WithTimerClock(clock))
	timer.On("tick", func(e *Event) (any, error) { fired++; return nil, nil })

	timer.Manager().Tick()
	require.Equal(t, 0, fired)
}

func TestTimerFiresOnceIntervalElapsed(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	var fired int
	timer := NewTimer("tick", time.Minute, WithTimerClock(clock))
	timer.On("tick", func(e *Event) (any, error) { fired++; return nil, nil })

	now = now.Add(2 * time.Minute)
	timer.Manager().Tick() // pollGenerators enqueues the event
	timer.Manager().Tick() // flush dispatches it
	require.Equal(t, 1, fired)
}

func TestTimerRepeatsByDefault(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	var fired int
	timer := NewTimer("tick", time.Minute, WithTimerClock(clock))
	timer.On("tick", func(e *Event) (any, error) { fired++; return nil, nil })

	for i := 0; i < 3; i++ {
		now = now.Add(time.Minute)
		timer.Manager().Tick()
		timer.Manager().Tick()
	}
	require.Equal(t, 3, fired)
}

func TestTimerOneShotDoesNotRearm(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	var fired int
	timer := NewTimer("tick", time.Minute, WithTimerClock(clock), WithTimerRepeat(false))
	timer.On("tick", func(e *Event) (any, error) { fired++; return nil, nil })

	for i := 0; i < 3; i++ {
		now = now.Add(time.Minute)
		timer.Manager().Tick()
		timer.Manager().Tick()
	}
	require.Equal(t, 1, fired)
}
