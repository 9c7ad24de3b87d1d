// Package ecs provides ECS adapters for fx.
package ecs

import (
	"github.com/phanxgames/fx"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for fx lifecycle events.
// Subscribe to this in your ECS systems to react to animations finishing.
var LifecycleEventType = events.NewEventType[fx.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Events are published to LifecycleEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) fx.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event fx.Event) {
	LifecycleEventType.Publish(s.world, event)
}
