package fx

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s, clock := newTestScheduler(t, func(c *Config) { c.Metrics = m })

	_, err := s.Animate("done", (&recorder{}).fn, WithDuration(10*time.Millisecond))
	require.NoError(t, err)
	_, err = s.Animate("stopped", (&recorder{}).fn)
	require.NoError(t, err)
	_, err = s.Animate("failed", func(string, float64, Options) error { return errors.New("x") })
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.active))

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active))
	s.Stop("stopped", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.active))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.animations.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.animations.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.animations.WithLabelValues("stopped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.animations.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbackErrs.WithLabelValues("animate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames))
}

func TestMetricsQueue(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s, clock := newTestScheduler(t, func(c *Config) { c.Metrics = m })

	var order []string
	require.NoError(t, s.Queue("box", record(&order, "a")))
	require.NoError(t, s.Queue("box", func(string) Awaitable { panic("x") }))
	require.NoError(t, s.Queue("box", record(&order, "b")))
	// The start-up yield is already in flight; the three tasks wait.
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queuePend))

	clock.Step()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.queuePend))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueTasks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueTasks.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbackErrs.WithLabelValues("queue")))
}

func TestMetricsClearQueueAdjustsPending(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	s, _ := newTestScheduler(t, func(c *Config) { c.Metrics = m })
	_, err := s.QueueAnimate("box", (&recorder{}).fn)
	require.NoError(t, err)
	_, err = s.QueueAnimate("box", (&recorder{}).fn)
	require.NoError(t, err)

	s.ClearQueue("box")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.queuePend))
}

func TestMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	n, err := testutil.GatherAndCount(reg, "fx_animations_active", "fx_frames_total", "fx_queue_pending")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.animationStarted()
		m.animationDone("completed")
		m.setActive(1)
		m.observeFrame(time.Millisecond)
		m.queueTask("ok")
		m.queuePending(1)
		m.callbackError("animate")
	})
}
