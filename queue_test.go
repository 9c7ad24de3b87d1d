package fx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record returns a task that appends tag to order and settles at once.
func record(order *[]string, tag string) Task[string] {
	return func(string) Awaitable {
		*order = append(*order, tag)
		return nil
	}
}

func TestQueueRunsInFIFOOrder(t *testing.T) {
	s, clock := newTestScheduler(t)
	var order []string
	for _, tag := range []string{"1", "2", "3", "4"} {
		require.NoError(t, s.Queue("box", record(&order, tag)))
	}

	assert.Empty(t, order, "the first task starts on the next frame")
	assert.True(t, s.Queued("box"))

	clock.Step()
	assert.Equal(t, []string{"1", "2", "3", "4"}, order)
	assert.False(t, s.Queued("box"))
	assert.True(t, s.Idle())
}

func TestQueueSyncStart(t *testing.T) {
	s, _ := newTestScheduler(t, func(c *Config) { c.SyncQueueStart = true })
	var order []string
	require.NoError(t, s.Queue("box", record(&order, "1")))
	assert.Equal(t, []string{"1"}, order)
	assert.False(t, s.Queued("box"))
}

func TestQueueWaitsForPendingTask(t *testing.T) {
	s, clock := newTestScheduler(t)
	var started1, started2 time.Time
	require.NoError(t, s.Queue("a", func(string) Awaitable {
		started1 = s.Now()
		return s.after(10 * time.Millisecond)
	}))
	require.NoError(t, s.Queue("a", func(string) Awaitable {
		started2 = s.Now()
		return nil
	}))

	clock.Advance(5 * time.Millisecond)
	require.False(t, started1.IsZero())
	assert.True(t, started2.IsZero(), "second task started before the first settled")

	clock.Advance(5 * time.Millisecond)
	assert.True(t, started2.IsZero())

	clock.Advance(5 * time.Millisecond)
	require.False(t, started2.IsZero())
	assert.GreaterOrEqual(t, started2.Sub(started1), 10*time.Millisecond)
}

func TestQueuePerNodeIsolation(t *testing.T) {
	s, clock := newTestScheduler(t)
	var order []string
	require.NoError(t, s.Queue("a", func(string) Awaitable {
		order = append(order, "a1")
		return s.after(time.Second)
	}))
	require.NoError(t, s.Queue("a", record(&order, "a2")))
	require.NoError(t, s.Queue("b", record(&order, "b1")))
	require.NoError(t, s.Queue("b", record(&order, "b2")))

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"a1", "b1", "b2"}, order)
	assert.True(t, s.Queued("a"))
	assert.False(t, s.Queued("b"))

	clock.Advance(time.Second)
	assert.Equal(t, []string{"a1", "b1", "b2", "a2"}, order)
}

func TestQueueTaskEnqueuedFromTask(t *testing.T) {
	s, clock := newTestScheduler(t)
	var order []string
	require.NoError(t, s.Queue("box", func(string) Awaitable {
		order = append(order, "outer")
		require.NoError(t, s.Queue("box", record(&order, "inner")))
		return nil
	}))
	require.NoError(t, s.Queue("box", record(&order, "next")))

	clock.Step()
	assert.Equal(t, []string{"outer", "next", "inner"}, order)
}

func TestDelay(t *testing.T) {
	s, clock := newTestScheduler(t)
	var times []time.Time
	mark := func(string) Awaitable {
		times = append(times, s.Now())
		return nil
	}
	require.NoError(t, s.Queue("box", mark))
	s.Delay("box", 30*time.Millisecond)
	require.NoError(t, s.Queue("box", mark))

	advanceN(clock, 5, 10*time.Millisecond)

	require.Len(t, times, 2)
	assert.Equal(t, 30*time.Millisecond, times[1].Sub(times[0]))
}

func TestQueueAnimateSerializes(t *testing.T) {
	s, clock := newTestScheduler(t)
	var log []string
	tagged := func(tag string) AnimateFunc[string] {
		started := false
		return func(_ string, p float64, _ Options) error {
			if !started {
				started = true
				log = append(log, tag+" start")
			}
			if p == 1 {
				log = append(log, tag+" done")
			}
			return nil
		}
	}
	f1, err := s.QueueAnimate("box", tagged("first"), WithDuration(100*time.Millisecond))
	require.NoError(t, err)
	f2, err := s.QueueAnimate("box", tagged("second"), WithDuration(100*time.Millisecond))
	require.NoError(t, err)

	advanceN(clock, 8, 50*time.Millisecond)

	assert.Equal(t, []string{"first start", "first done", "second start", "second done"}, log)

	a1, err := f1.Result()
	require.NoError(t, err)
	a2, err := f2.Result()
	require.NoError(t, err)
	assert.True(t, a1.start.Before(a2.start))
	assert.True(t, s.Idle())
}

func TestClearQueueDiscardsPending(t *testing.T) {
	s, clock := newTestScheduler(t)
	rec := &recorder{}
	f1, err := s.QueueAnimate("box", rec.fn, WithDuration(100*time.Millisecond))
	require.NoError(t, err)
	f2, err := s.QueueAnimate("box", rec.fn, WithDuration(100*time.Millisecond))
	require.NoError(t, err)
	var ran bool
	require.NoError(t, s.Queue("box", func(string) Awaitable { ran = true; return nil }))

	clock.Advance(10 * time.Millisecond) // first animation starts
	assert.Equal(t, 2, s.QueueLen("box"))

	s.ClearQueue("box")
	assert.Zero(t, s.QueueLen("box"))

	_, err = f2.Result()
	assert.ErrorIs(t, err, ErrCleared)

	advanceN(clock, 3, 50*time.Millisecond)
	_, err = f1.Result()
	assert.NoError(t, err, "the in-flight animation finishes")
	assert.False(t, ran)
	assert.False(t, s.Queued("box"))
}

func TestClearQueueUnknownNode(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NotPanics(t, func() { s.ClearQueue("nobody") })
	assert.Zero(t, s.QueueLen("nobody"))
}

func TestQueueErrorPolicyContinue(t *testing.T) {
	var events []Event
	s, clock := newTestScheduler(t, func(c *Config) {
		c.Events = EventFunc(func(e Event) { events = append(events, e) })
	})
	var order []string
	require.NoError(t, s.Queue("box", func(string) Awaitable { panic("bad task") }))
	require.NoError(t, s.Queue("box", func(string) Awaitable {
		order = append(order, "rejected")
		return Rejected[struct{}](errors.New("nope"))
	}))
	require.NoError(t, s.Queue("box", record(&order, "after")))

	assert.NotPanics(t, func() { clock.Step() })
	assert.Equal(t, []string{"rejected", "after"}, order)

	var failed int
	for _, e := range events {
		if e.Type == EventQueueTaskFailed {
			failed++
			assert.Equal(t, "box", e.Node)
		}
	}
	assert.Equal(t, 2, failed)
	assert.Equal(t, EventQueueDrained, events[len(events)-1].Type)
}

func TestQueueErrorPolicyAbort(t *testing.T) {
	s, clock := newTestScheduler(t, func(c *Config) { c.QueueErrors = QueueAbort })
	var order []string
	boom := errors.New("boom")
	require.NoError(t, s.Queue("box", func(string) Awaitable {
		return Rejected[struct{}](boom)
	}))
	require.NoError(t, s.Queue("box", record(&order, "skipped")))
	f, err := s.QueueAnimate("box", (&recorder{}).fn)
	require.NoError(t, err)
	require.NoError(t, s.Queue("other", record(&order, "other")))

	clock.Step()

	assert.Equal(t, []string{"other"}, order)
	_, err = f.Result()
	assert.ErrorIs(t, err, ErrCleared)
	assert.False(t, s.Queued("box"))
}

func TestQueueAnimateFailurePropagates(t *testing.T) {
	s, clock := newTestScheduler(t)
	boom := errors.New("boom")
	f, err := s.QueueAnimate("box", func(string, float64, Options) error { return boom })
	require.NoError(t, err)
	var order []string
	require.NoError(t, s.Queue("box", record(&order, "next")))

	clock.Step()
	clock.Step()

	_, err = f.Result()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"next"}, order)
}

func TestQueueAnimateAll(t *testing.T) {
	s, clock := newTestScheduler(t)
	f, err := s.QueueAnimateAll([]string{"a", "b", "a"}, (&recorder{}).fn, WithDuration(20*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, s.Queued("a"))
	assert.True(t, s.Queued("b"))

	advanceN(clock, 3, 10*time.Millisecond)

	anims, err := f.Result()
	require.NoError(t, err)
	require.Len(t, anims, 2)
	assert.Equal(t, "a", anims[0].Node())
	assert.Equal(t, "b", anims[1].Node())
}

func TestQueueAnimateAllEmpty(t *testing.T) {
	s, _ := newTestScheduler(t)
	f, err := s.QueueAnimateAll(nil, (&recorder{}).fn)
	require.NoError(t, err)
	anims, err := f.Result()
	require.NoError(t, err)
	assert.Empty(t, anims)
	assert.True(t, s.Idle())
}

func TestQueueRejectsBadInput(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.ErrorIs(t, s.Queue("box", nil), ErrNilCallback)

	_, err := s.QueueAnimate("box", nil)
	assert.ErrorIs(t, err, ErrNilCallback)

	_, err = s.QueueAnimate("box", (&recorder{}).fn, WithDuration(-1))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = s.QueueAnimateAll([]string{"a"}, (&recorder{}).fn, WithEasing("nope"))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	assert.False(t, s.Queued("box"))
	assert.False(t, s.Queued("a"))
}

func TestStopDoesNotClearQueue(t *testing.T) {
	s, clock := newTestScheduler(t)
	_, err := s.QueueAnimate("box", (&recorder{}).fn, WithDuration(time.Second))
	require.NoError(t, err)
	var order []string
	require.NoError(t, s.Queue("box", record(&order, "next")))

	clock.Advance(10 * time.Millisecond)
	require.True(t, s.Animating("box"))

	s.Stop("box", true)
	assert.Equal(t, []string{"next"}, order, "the next task starts once the stopped animation settles")
}

func TestQueueErrorPolicyString(t *testing.T) {
	assert.Equal(t, "continue", QueueContinue.String())
	assert.Equal(t, "abort", QueueAbort.String())
	assert.Equal(t, "unknown", QueueErrorPolicy(9).String())
}
