// Package ecs provides ECS adapters for fx lifecycle events.
//
// The primary adapter is [NewDonburiSink], which bridges fx animation and
// queue events (started, completed, stopped, failed, queue drained) into a
// [Donburi] world as typed events. Subscribe to [LifecycleEventType] in your
// ECS systems to receive them.
//
// Usage:
//
//	sched, _ := fx.New[*fx.Node](fx.Config{
//		Frames: clock,
//		Events: ecs.NewDonburiSink(world),
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
