package fx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// DefaultFrameInterval is the Loop tick period: about 60 frames per second.
const DefaultFrameInterval = time.Second / 60

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a running loop.
	ErrLoopAlreadyRunning = errors.New("fx: loop is already running")

	// ErrLoopTerminated is returned when work is submitted after Run returned.
	ErrLoopTerminated = errors.New("fx: loop has been terminated")

	// ErrReentrantRun is returned when Run is called from the loop goroutine.
	ErrReentrantRun = errors.New("fx: cannot call Run from within the loop")
)

const (
	loopIdle int32 = iota
	loopRunning
	loopTerminated
)

// Loop is a real-time FrameClock: one goroutine that runs submitted tasks as
// they arrive and frame callbacks on a fixed interval. A Scheduler driven by
// a Loop must only be touched from inside the loop, through Submit or Do.
//
// The frame timer is armed only while frame callbacks are pending, so an idle
// loop does not wake up.
type Loop struct {
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	ingress []func()
	frames  []func()

	wake  chan struct{}
	state atomic.Int32
	gid   atomic.Int64
	done  chan struct{}
	ticks atomic.Uint64
}

// NewLoop returns a loop ticking every interval (DefaultFrameInterval if
// interval <= 0). A nil logger uses slog.Default().
func NewLoop(interval time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		interval: interval,
		logger:   logger.With(slog.String("component", "fx_loop")),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Now implements Clock with wall time.
func (l *Loop) Now() time.Time { return time.Now() }

// Ticks returns the number of frames run so far.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// RequestFrame implements FrameClock.
func (l *Loop) RequestFrame(fn func()) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
	l.signal()
}

// Submit runs fn on the loop goroutine as soon as possible. Tasks run in
// submission order.
func (l *Loop) Submit(fn func()) error {
	if l.state.Load() == loopTerminated {
		return ErrLoopTerminated
	}
	l.mu.Lock()
	l.ingress = append(l.ingress, fn)
	l.mu.Unlock()
	l.signal()
	return nil
}

// Do runs fn on the loop goroutine and waits for it to return. Called from
// the loop goroutine itself, fn runs inline.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.onLoop() {
		fn()
		return nil
	}
	finished := make(chan struct{})
	if err := l.Submit(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the loop until ctx is done. It returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if l.onLoop() {
		return ErrReentrantRun
	}
	if !l.state.CompareAndSwap(loopIdle, loopRunning) {
		if l.state.Load() == loopTerminated {
			return ErrLoopTerminated
		}
		return ErrLoopAlreadyRunning
	}
	l.gid.Store(goid.Get())
	defer func() {
		l.state.Store(loopTerminated)
		l.gid.Store(0)
		close(l.done)
	}()

	// A stopped timer never delivers a stale tick (Go 1.23+), so Reset
	// needs no drain.
	timer := time.NewTimer(l.interval)
	timer.Stop()
	var tick <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-l.wake:
		case <-tick:
			tick = nil
			l.runFrames()
		}
		l.runIngress()

		if tick == nil && l.framesPending() {
			timer.Reset(l.interval)
			tick = timer.C
		}
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) onLoop() bool {
	id := l.gid.Load()
	return id != 0 && id == goid.Get()
}

func (l *Loop) framesPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames) > 0
}

func (l *Loop) runIngress() {
	l.mu.Lock()
	tasks := l.ingress
	l.ingress = nil
	l.mu.Unlock()
	for _, fn := range tasks {
		l.safeExecute("task", fn)
	}
}

func (l *Loop) runFrames() {
	l.mu.Lock()
	frames := l.frames
	l.frames = nil
	l.mu.Unlock()
	l.ticks.Add(1)
	for _, fn := range frames {
		l.safeExecute("frame", fn)
	}
}

// safeExecute runs fn, logging instead of crashing the loop on panic.
func (l *Loop) safeExecute(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panicked",
				slog.String("kind", kind),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}
