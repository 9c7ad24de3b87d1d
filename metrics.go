package fx

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the scheduler's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	active        prometheus.Gauge
	animations    *prometheus.CounterVec
	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	queueTasks    *prometheus.CounterVec
	queuePend     prometheus.Gauge
	callbackErrs  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Several
// schedulers sharing one registry must share one Metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		active: f.NewGauge(prometheus.GaugeOpts{
			Name: "fx_animations_active",
			Help: "Animations currently registered with the frame loop",
		}),
		animations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fx_animations_total",
			Help: "Animations by outcome",
		}, []string{"result"}),
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "fx_frames_total",
			Help: "Scheduler update passes",
		}),
		frameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fx_frame_duration_seconds",
			Help:    "Time spent in one scheduler update pass",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to ~80ms
		}),
		queueTasks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fx_queue_tasks_total",
			Help: "Queued tasks by outcome",
		}, []string{"result"}),
		queuePend: f.NewGauge(prometheus.GaugeOpts{
			Name: "fx_queue_pending",
			Help: "Queued tasks waiting to start across all nodes",
		}),
		callbackErrs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fx_callback_errors_total",
			Help: "Failed user callbacks by source",
		}, []string{"source"}),
	}
}

func (m *Metrics) animationStarted() {
	if m == nil {
		return
	}
	m.animations.WithLabelValues("started").Inc()
}

func (m *Metrics) animationDone(result string) {
	if m == nil {
		return
	}
	m.animations.WithLabelValues(result).Inc()
}

func (m *Metrics) setActive(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}

func (m *Metrics) observeFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameDuration.Observe(d.Seconds())
}

func (m *Metrics) queueTask(result string) {
	if m == nil {
		return
	}
	m.queueTasks.WithLabelValues(result).Inc()
}

func (m *Metrics) queuePending(delta int) {
	if m == nil {
		return
	}
	m.queuePend.Add(float64(delta))
}

func (m *Metrics) callbackError(source string) {
	if m == nil {
		return
	}
	m.callbackErrs.WithLabelValues(source).Inc()
}
