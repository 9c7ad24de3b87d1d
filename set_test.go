package fx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimationSetResolvesInOrder(t *testing.T) {
	s, clock := newTestScheduler(t)
	set, err := s.AnimateAll([]string{"a", "b", "c"}, (&recorder{}).fn, WithDuration(50*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	clock.Advance(50 * time.Millisecond)

	anims, err := set.Future().Result()
	require.NoError(t, err)
	var nodes []string
	for _, a := range anims {
		nodes = append(nodes, a.Node())
	}
	assert.Equal(t, []string{"a", "b", "c"}, nodes)
}

func TestAnimationSetShortCircuits(t *testing.T) {
	s, clock := newTestScheduler(t)
	boom := errors.New("boom")
	t1, err := s.Animate("t1", func(_ string, p float64, _ Options) error {
		if p >= 0.5 {
			return boom
		}
		return nil
	}, WithDuration(10*time.Millisecond), WithEasing(Linear))
	require.NoError(t, err)
	t2, err := s.Animate("t2", (&recorder{}).fn, WithDuration(time.Second))
	require.NoError(t, err)

	set := NewAnimationSet(t1, t2)
	var settledAt time.Time
	set.OnSettle(func(error) { settledAt = s.Now() })

	clock.Advance(5 * time.Millisecond)

	_, err = set.Future().Result()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, epoch.Add(5*time.Millisecond), settledAt)
	assert.True(t, s.Animating("t2"), "the other animation keeps running")

	clock.Advance(995 * time.Millisecond)
	assert.Equal(t, StateResolved, t2.State())
}

func TestAnimationSetStop(t *testing.T) {
	s, clock := newTestScheduler(t)
	rec := &recorder{}
	set, err := s.AnimateAll([]string{"a", "b"}, rec.fn, WithDuration(time.Second), WithEasing(Linear))
	require.NoError(t, err)

	clock.Advance(500 * time.Millisecond)
	set.Stop(true)

	assert.Equal(t, []float64{0.5, 0.5, 1, 1}, rec.calls)
	anims, err := set.Future().Result()
	require.NoError(t, err)
	for _, a := range anims {
		assert.True(t, a.Stopped())
	}
	assert.Zero(t, s.ActiveCount())
}

func TestAnimateAllDeduplicates(t *testing.T) {
	s, _ := newTestScheduler(t)
	set, err := s.AnimateAll([]string{"a", "b", "a", "b"}, (&recorder{}).fn)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 2, s.ActiveCount())
}

func TestAnimateAllEmpty(t *testing.T) {
	s, clock := newTestScheduler(t)
	set, err := s.AnimateAll(nil, (&recorder{}).fn)
	require.NoError(t, err)

	assert.Zero(t, set.Len())
	assert.True(t, set.Future().Settled())
	anims, err := set.Future().Result()
	require.NoError(t, err)
	assert.Empty(t, anims)
	assert.False(t, s.Running())
	assert.Zero(t, clock.Pending())

	assert.NotPanics(t, func() { set.Stop(true) })
}

func TestAnimateAllRejectsBadInput(t *testing.T) {
	s, _ := newTestScheduler(t)
	_, err := s.AnimateAll([]string{"a"}, nil)
	assert.ErrorIs(t, err, ErrNilCallback)
	_, err = s.AnimateAll([]string{"a"}, (&recorder{}).fn, WithDuration(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Zero(t, s.ActiveCount())
}

func TestAnimationSetIsAwaitableInQueue(t *testing.T) {
	s, clock := newTestScheduler(t)
	var order []string
	require.NoError(t, s.Queue("ctl", func(string) Awaitable {
		set, err := s.AnimateAll([]string{"x", "y"}, (&recorder{}).fn, WithDuration(100*time.Millisecond))
		require.NoError(t, err)
		return set
	}))
	require.NoError(t, s.Queue("ctl", record(&order, "after set")))

	clock.Advance(50 * time.Millisecond)
	assert.Empty(t, order)
	clock.Advance(100 * time.Millisecond)
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"after set"}, order)
}

func TestAnimationSetAnimationsIsCopy(t *testing.T) {
	s, _ := newTestScheduler(t)
	set, err := s.AnimateAll([]string{"a"}, (&recorder{}).fn)
	require.NoError(t, err)
	got := set.Animations()
	got[0] = nil
	assert.NotNil(t, set.Animations()[0])
}
