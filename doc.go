// Package fx is the animation and effect-queue core of a small DOM-style
// toolkit: per-node task queues, time-based animations, and the frame loop
// that drives both.
//
// # Quick start
//
// Create a [Scheduler] bound to a [FrameClock]. In a game, use a
// [ManualClock] advanced once per update; in a service, use a [Loop]:
//
//	clock := fx.NewManualClock(time.Now())
//	sched, _ := fx.New[*fx.Node](fx.Config{Frames: clock})
//
//	box := fx.NewNode("box")
//	anim, _ := sched.Animate(box, fx.FadeOut[*fx.Node](),
//		fx.WithDuration(300*time.Millisecond), fx.WithEasing(fx.EaseOut))
//	anim.Then(func(a *fx.Animation[*fx.Node], err error) { ... })
//
//	for !sched.Idle() {
//		clock.Advance(time.Second / 60)
//	}
//
// # Animations
//
// An animation calls its [AnimateFunc] once per frame with eased progress in
// [0, 1]. Progress is derived from elapsed time since the animation was
// admitted, so uneven frame rates do not change its length. A finite
// animation settles on the frame where progress reaches 1; an infinite one
// wraps every Duration until stopped. Return [Complete] to end early. Any
// other error, or a panic, rejects that animation only.
//
// [Scheduler.Stop] cancels the active animations of a node. With finish the
// callback sees progress 1 one last time. Stopping always resolves.
//
// [Scheduler.AnimateAll] applies one effect to many nodes and returns an
// [AnimationSet] whose future resolves when all of them do, or rejects with
// the first failure.
//
// # Queues
//
// Each node owns a FIFO of [Task] values. A task returns an [Awaitable]; the
// next task starts only once it settles. [Scheduler.QueueAnimate] and
// [Scheduler.Delay] build the common tasks. Queues of different nodes never
// wait on each other. [Scheduler.ClearQueue] drops tasks that have not
// started.
//
// # Concurrency
//
// A Scheduler is single-threaded. Everything runs on the goroutine that
// drives its FrameClock. Other goroutines hand work to a [Loop] with
// [Loop.Submit] or [Loop.Do] and block on results with [Future.Wait].
//
// # Observability
//
// Logging uses log/slog. [NewMetrics] registers Prometheus collectors,
// animations and queued tasks are traced with OpenTelemetry, and
// [Config.Events] forwards lifecycle events, for example into a Donburi
// world through fx/ecs. [Scheduler.Dump] prints the registries as a tree.
package fx
