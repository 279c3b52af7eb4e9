package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestClock_Remaining(t *testing.T) {
	limit := 10 * time.Second
	c := Start(t0)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    time.Duration
	}{
		{"at start", 0, 10 * time.Second},
		{"midway", 4500 * time.Millisecond, 5500 * time.Millisecond},
		{"at limit", 10 * time.Second, 0},
		{"past limit", 25 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := t0.Add(tt.elapsed)
			assert.Equal(t, tt.want, c.Remaining(limit, now))
			assert.Equal(t, tt.elapsed >= limit, c.Expired(limit, now))
		})
	}
}

func TestClock_UntimedNeverExpires(t *testing.T) {
	c := Start(t0)
	assert.False(t, c.Expired(0, t0.Add(time.Hour)))
	assert.Equal(t, time.Duration(0), c.Remaining(0, t0.Add(time.Hour)))
}

func TestClock_FreezeKeepsConfirmationInstant(t *testing.T) {
	c := Start(t0).Freeze(t0.Add(3 * time.Second))

	assert.True(t, c.Frozen())
	assert.Equal(t, 3*time.Second, c.Elapsed(t0.Add(30*time.Second)))

	again := c.Freeze(t0.Add(8 * time.Second))
	assert.Equal(t, 3*time.Second, again.Elapsed(t0.Add(30*time.Second)))
}

func TestClock_ResetStartsNewQuestionButKeepsSession(t *testing.T) {
	c := Start(t0).Freeze(t0.Add(2 * time.Second))
	c = c.Reset(t0.Add(5 * time.Second))

	assert.False(t, c.Frozen())
	assert.Equal(t, time.Second, c.Elapsed(t0.Add(6*time.Second)))
	assert.Equal(t, 6*time.Second, c.Total(t0.Add(6*time.Second)))
}

func TestClock_TransitionsDoNotMutateReceiver(t *testing.T) {
	c := Start(t0)
	_ = c.Freeze(t0.Add(time.Second))
	assert.False(t, c.Frozen())
}

func TestManual_FiresTasksInDueOrder(t *testing.T) {
	m := NewManual(t0)
	var fired []string

	m.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	m.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	cancel := m.AfterFunc(1500*time.Millisecond, func() { fired = append(fired, "cancelled") })
	cancel()

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)
	assert.Equal(t, t0.Add(1500*time.Millisecond), m.Now())

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestLoop_TicksUntilStopped(t *testing.T) {
	m := NewManual(t0)
	ticks := 0
	loop := StartLoop(context.Background(), m, 100*time.Millisecond, func() { ticks++ })

	m.Advance(time.Second)
	assert.Equal(t, 10, ticks)

	loop.Stop()
	loop.Stop()
	m.Advance(time.Second)
	assert.Equal(t, 10, ticks)
	assert.False(t, loop.Running())
	assert.Equal(t, 0, m.Pending())
}

func TestLoop_StopFromInsideTick(t *testing.T) {
	m := NewManual(t0)
	ticks := 0
	var loop *Loop
	loop = StartLoop(context.Background(), m, time.Second, func() {
		ticks++
		if ticks == 3 {
			loop.Stop()
		}
	})

	m.Advance(10 * time.Second)
	assert.Equal(t, 3, ticks)
}

func TestLoop_ContextCancellation(t *testing.T) {
	m := NewManual(t0)
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	StartLoop(ctx, m, time.Second, func() { ticks++ })

	m.Advance(2 * time.Second)
	cancel()
	m.Advance(5 * time.Second)
	assert.Equal(t, 2, ticks)
}

func TestLoop_SystemScheduler(t *testing.T) {
	ticked := make(chan struct{}, 1)
	loop := StartLoop(context.Background(), System{}, 5*time.Millisecond, func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})
	defer loop.Stop()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		require.Fail(t, "loop never ticked")
	}
}
