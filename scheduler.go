package fx

import (
	"log/slog"
	"time"
)

// QueueErrorPolicy decides what a node queue does after a task fails.
type QueueErrorPolicy uint8

const (
	QueueContinue QueueErrorPolicy = iota // log the failure and run the next task
	QueueAbort                            // discard the rest of that node's queue
)

func (p QueueErrorPolicy) String() string {
	switch p {
	case QueueContinue:
		return "continue"
	case QueueAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Config wires a Scheduler to its host.
type Config struct {
	// Frames schedules the next update. Required.
	Frames FrameClock
	// Clock supplies animation time. If nil, Frames is used when it also
	// implements Clock, otherwise SystemClock.
	Clock Clock

	Logger  *slog.Logger // nil uses slog.Default()
	Metrics *Metrics     // nil disables metrics
	Events  EventSink    // nil drops lifecycle events

	// QueueErrors selects the behavior of a node queue after a failed task.
	QueueErrors QueueErrorPolicy
	// SyncQueueStart runs the first task of a new queue inline with the Queue
	// call instead of on the next frame.
	SyncQueueStart bool
	// Debug logs per-frame timing and registry sizes.
	Debug bool
}

// Scheduler owns the per-node task queues and the active animation registry,
// and drives both from a single frame loop. The loop starts lazily on the
// first animation or delay and stops by itself once nothing is left to run.
//
// A Scheduler is not safe for concurrent use. Drive it from one goroutine: the
// game update goroutine, or a Loop (use Loop.Submit from other goroutines).
type Scheduler[N comparable] struct {
	clock   Clock
	frames  FrameClock
	logger  *slog.Logger
	metrics *Metrics
	events  EventSink
	policy  QueueErrorPolicy
	syncQ   bool
	debug   bool

	queues map[N]*nodeQueue[N]

	anims     map[N][]*Animation[N]
	animOrder []N
	timers    []*timer

	running bool
	frame   uint64
}

type timer struct {
	at  time.Time
	fut *Future[struct{}]
}

// New returns a Scheduler for nodes of type N.
func New[N comparable](cfg Config) (*Scheduler[N], error) {
	if cfg.Frames == nil {
		return nil, ErrNoFrameClock
	}
	clock := cfg.Clock
	if clock == nil {
		if c, ok := cfg.Frames.(Clock); ok {
			clock = c
		} else {
			clock = SystemClock{}
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler[N]{
		clock:   clock,
		frames:  cfg.Frames,
		logger:  logger.With(slog.String("component", "fx")),
		metrics: cfg.Metrics,
		events:  cfg.Events,
		policy:  cfg.QueueErrors,
		syncQ:   cfg.SyncQueueStart,
		debug:   cfg.Debug,
		queues:  make(map[N]*nodeQueue[N]),
		anims:   make(map[N][]*Animation[N]),
	}, nil
}

// Now returns the scheduler's current time.
func (s *Scheduler[N]) Now() time.Time {
	return s.clock.Now()
}

// Start begins the frame loop. It is a no-op while the loop is running; the
// first update happens on the next frame.
func (s *Scheduler[N]) Start() {
	if s.running {
		return
	}
	s.running = true
	s.frames.RequestFrame(s.update)
}

// Running reports whether the frame loop is active.
func (s *Scheduler[N]) Running() bool {
	return s.running
}

// Idle reports whether there are no active animations, no pending delays and
// no node queues.
func (s *Scheduler[N]) Idle() bool {
	return len(s.anims) == 0 && len(s.timers) == 0 && len(s.queues) == 0
}

// update is one frame: fire due delays, tick every animation, prune what
// settled, and reschedule unless there is nothing left to drive.
func (s *Scheduler[N]) update() {
	var t0 time.Time
	if s.debug || s.metrics != nil {
		t0 = time.Now()
	}
	s.frame++
	now := s.clock.Now()

	s.fireTimers(now)

	nodes := append([]N(nil), s.animOrder...)
	for _, node := range nodes {
		list, ok := s.anims[node]
		if !ok {
			continue
		}
		for _, a := range append([]*Animation[N](nil), list...) {
			a.tick(now)
		}
		s.prune(node)
	}

	if s.metrics != nil {
		s.metrics.observeFrame(time.Since(t0))
	}
	if s.debug {
		s.debugFrame(time.Since(t0))
	}

	if len(s.anims) == 0 && len(s.timers) == 0 {
		s.running = false
		return
	}
	s.frames.RequestFrame(s.update)
}

// after returns a future resolved on the first frame at or after now+d.
func (s *Scheduler[N]) after(d time.Duration) *Future[struct{}] {
	f := NewFuture[struct{}]()
	s.timers = append(s.timers, &timer{at: s.clock.Now().Add(d), fut: f})
	s.Start()
	return f
}

func (s *Scheduler[N]) fireTimers(now time.Time) {
	if len(s.timers) == 0 {
		return
	}
	var due []*timer
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.at.After(now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept
	for _, t := range due {
		t.fut.Resolve(struct{}{})
	}
}
