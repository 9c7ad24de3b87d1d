package ecs

import (
	"errors"
	"testing"
	"time"

	"github.com/phanxgames/fx"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []fx.Event
	LifecycleEventType.Subscribe(world, func(w donburi.World, e fx.Event) {
		received = append(received, e)
	})

	sink.EmitEvent(fx.Event{
		Type:      fx.EventAnimationCompleted,
		Animation: "a1",
		Progress:  1,
	})
	sink.EmitEvent(fx.Event{
		Type: fx.EventQueueTaskFailed,
		Err:  errors.New("boom"),
	})

	// Events are queued; process them.
	LifecycleEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Type != fx.EventAnimationCompleted || received[0].Animation != "a1" {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Type != fx.EventQueueTaskFailed || received[1].Err == nil {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiSink_SchedulerLifecycle(t *testing.T) {
	world := donburi.NewWorld()
	clock := fx.NewManualClock(time.Unix(0, 0))
	sched, err := fx.New[*fx.Node](fx.Config{
		Frames: clock,
		Events: NewDonburiSink(world),
	})
	if err != nil {
		t.Fatal(err)
	}

	var types []fx.EventType
	LifecycleEventType.Subscribe(world, func(w donburi.World, e fx.Event) {
		types = append(types, e.Type)
	})

	node := fx.NewNode("box")
	if _, err := sched.Animate(node, fx.FadeOut[*fx.Node](), fx.WithDuration(100*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	clock.Advance(50 * time.Millisecond)
	clock.Advance(50 * time.Millisecond)

	events.ProcessAllEvents(world)

	want := []fx.EventType{fx.EventAnimationStarted, fx.EventAnimationCompleted}
	if len(types) != len(want) {
		t.Fatalf("got events %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestDonburiSink_ImplementsEventSink(t *testing.T) {
	world := donburi.NewWorld()
	var sink fx.EventSink = NewDonburiSink(world)
	_ = sink // compile-time interface check
}
