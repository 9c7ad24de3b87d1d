package fx

// EventSink receives animation and queue lifecycle events. Set one through
// Config.Events to forward them to another system, such as an ECS world.
type EventSink interface {
	EmitEvent(event Event)
}

// EventType identifies a lifecycle event.
type EventType uint8

const (
	EventAnimationStarted   EventType = iota // admitted into the registry
	EventAnimationCompleted                  // reached the end or returned Complete
	EventAnimationStopped                    // ended by Stop or node disposal
	EventAnimationFailed                     // callback returned an error or panicked
	EventQueueTaskFailed                     // a queued task failed
	EventQueueDrained                        // a node queue ran empty and was removed
)

func (t EventType) String() string {
	switch t {
	case EventAnimationStarted:
		return "animation-started"
	case EventAnimationCompleted:
		return "animation-completed"
	case EventAnimationStopped:
		return "animation-stopped"
	case EventAnimationFailed:
		return "animation-failed"
	case EventQueueTaskFailed:
		return "queue-task-failed"
	case EventQueueDrained:
		return "queue-drained"
	default:
		return "unknown"
	}
}

// Event carries one lifecycle transition.
type Event struct {
	Type      EventType
	Node      any
	Animation string  // animation ID, empty for queue events
	Progress  float64 // last linear progress of the animation
	Err       error   // set for failures
}

// EventFunc adapts a function to EventSink.
type EventFunc func(Event)

// EmitEvent calls f(event).
func (f EventFunc) EmitEvent(event Event) { f(event) }

func (s *Scheduler[N]) emit(e Event) {
	if s.events != nil {
		s.events.EmitEvent(e)
	}
}
