package fx

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("fx")

// AnimateFunc is called once per frame with the eased progress of the
// animation. Returning Complete ends the animation successfully; any other
// error rejects it.
type AnimateFunc[N comparable] func(node N, progress float64, opts Options) error

// State is the lifecycle stage of an Animation.
type State uint8

const (
	StatePending  State = iota // admitted, not yet ticked
	StateRunning               // ticked at least once
	StateResolved              // completed or stopped
	StateRejected              // callback failed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateResolved:
		return "resolved"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func (s State) settled() bool {
	return s == StateResolved || s == StateRejected
}

// disposable is implemented by host nodes that can be torn down while an
// animation still targets them.
type disposable interface {
	IsDisposed() bool
}

// Animation is one time-based animation of one node. Progress is derived from
// the time elapsed since the animation was admitted, never from the number of
// frames, so animations keep wall-clock pace under an uneven frame rate.
//
// An Animation settles exactly once; its Future resolves with the animation
// itself.
type Animation[N comparable] struct {
	id    string
	sched *Scheduler[N]
	node  N
	fn    AnimateFunc[N]
	opts  Options
	start time.Time

	state    State
	progress float64
	stopped  bool
	calls    int

	fut  *Future[*Animation[N]]
	span trace.Span
}

func newAnimation[N comparable](s *Scheduler[N], node N, fn AnimateFunc[N], opts Options) *Animation[N] {
	a := &Animation[N]{
		id:    uuid.NewString(),
		sched: s,
		node:  node,
		fn:    fn,
		opts:  opts,
		start: s.clock.Now(),
		fut:   NewFuture[*Animation[N]](),
	}
	_, a.span = tracer.Start(context.Background(), "fx.animation",
		trace.WithAttributes(
			attribute.String("fx.animation.id", a.id),
			attribute.Int64("fx.animation.duration_ms", opts.Duration.Milliseconds()),
			attribute.String("fx.animation.easing", string(opts.Easing)),
			attribute.Bool("fx.animation.infinite", opts.Infinite),
		))
	return a
}

// ID returns a unique identifier for the animation.
func (a *Animation[N]) ID() string { return a.id }

// Node returns the animated node.
func (a *Animation[N]) Node() N { return a.node }

// Options returns the validated options.
func (a *Animation[N]) Options() Options { return a.opts }

// State returns the current lifecycle stage.
func (a *Animation[N]) State() State { return a.state }

// Progress returns the last linear (un-eased) progress handed to the callback.
func (a *Animation[N]) Progress() float64 { return a.progress }

// Stopped reports whether the animation ended through Stop rather than by
// completing.
func (a *Animation[N]) Stopped() bool { return a.stopped }

// Future returns the future settled when the animation ends.
func (a *Animation[N]) Future() *Future[*Animation[N]] { return a.fut }

// Then registers fn on the animation's future.
func (a *Animation[N]) Then(fn func(*Animation[N], error)) { a.fut.Then(fn) }

// OnSettle implements Awaitable.
func (a *Animation[N]) OnSettle(fn func(error)) { a.fut.OnSettle(fn) }

// Wait blocks until the animation settles or ctx is done.
func (a *Animation[N]) Wait(ctx context.Context) (*Animation[N], error) {
	return a.fut.Wait(ctx)
}

// progressAt returns linear progress for the given elapsed time.
func (a *Animation[N]) progressAt(elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	d := a.opts.Duration
	if a.opts.Infinite {
		return float64(elapsed%d) / float64(d)
	}
	if d <= 0 || elapsed >= d {
		return 1
	}
	return float64(elapsed) / float64(d)
}

// tick advances the animation to now. It settles the animation when the
// callback returns Complete or fails, when a finite animation reaches the end,
// or when the node has been disposed.
func (a *Animation[N]) tick(now time.Time) {
	if a.state.settled() {
		return
	}
	if d, ok := any(a.node).(disposable); ok && d.IsDisposed() {
		a.stopped = true
		a.resolve()
		return
	}
	a.state = StateRunning

	p := a.progressAt(now.Sub(a.start))
	err := a.invoke(p)
	if a.state.settled() {
		// the callback stopped its own animation
		return
	}
	switch {
	case errors.Is(err, Complete):
		a.resolve()
	case err != nil:
		a.reject(err)
	case p >= 1 && !a.opts.Infinite:
		a.resolve()
	}
}

// invoke runs the callback with eased progress, converting panics into a
// CallbackError.
func (a *Animation[N]) invoke(p float64) (err error) {
	a.progress = p
	a.calls++
	eased := a.opts.Easing.Apply(p)
	if a.opts.Debug {
		a.sched.logger.Info("animation frame",
			slog.String("animation", a.id),
			slog.Any("node", a.node),
			slog.Float64("progress", p),
			slog.Float64("eased", eased),
			slog.Int("call", a.calls))
	}
	defer func() {
		if r := recover(); r != nil {
			err = recoverCallback("animate", a.node, r)
		}
	}()
	opts := a.opts
	opts.anim = a.id
	opts.settle = a
	if err := a.fn(a.node, eased, opts); err != nil {
		if errors.Is(err, Complete) {
			return err
		}
		return &CallbackError{Op: "animate", Node: a.node, Err: err}
	}
	return nil
}

// Stop ends the animation and removes it from the scheduler. With finish the
// callback runs one last time at progress 1 first. Stopping is not a failure:
// the animation resolves unless that final callback fails. Stop on a settled
// animation does nothing, as does a Stop made from the final callback itself.
func (a *Animation[N]) Stop(finish bool) {
	if a.stopped || a.state.settled() {
		return
	}
	a.stopped = true
	a.sched.detach(a)
	if finish {
		if err := a.invoke(1); err != nil && !errors.Is(err, Complete) {
			a.reject(err)
			return
		}
	}
	a.resolve()
}

func (a *Animation[N]) resolve() {
	if a.state.settled() {
		return
	}
	a.state = StateResolved
	result := "completed"
	typ := EventAnimationCompleted
	if a.stopped {
		result = "stopped"
		typ = EventAnimationStopped
	}
	a.span.SetAttributes(attribute.String("fx.animation.result", result))
	a.span.End()
	a.sched.metrics.animationDone(result)
	a.sched.emit(Event{Type: typ, Node: a.node, Animation: a.id, Progress: a.progress})
	a.fut.Resolve(a)
}

func (a *Animation[N]) reject(err error) {
	if a.state.settled() {
		return
	}
	a.state = StateRejected
	a.span.RecordError(err)
	a.span.SetStatus(codes.Error, err.Error())
	a.span.End()
	a.sched.metrics.animationDone("failed")
	a.sched.metrics.callbackError("animate")
	a.sched.logger.Warn("animation callback failed",
		slog.String("animation", a.id),
		slog.Any("node", a.node),
		slog.Float64("progress", a.progress),
		slog.String("error", err.Error()))
	a.sched.emit(Event{Type: EventAnimationFailed, Node: a.node, Animation: a.id, Progress: a.progress, Err: err})
	a.fut.Reject(err)
}
