package fx

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Task is one unit of a node queue. The queue waits for the returned
// Awaitable to settle before it starts the next task; a nil Awaitable counts
// as already settled.
//
// The Awaitable must settle on the scheduler goroutine, since settling it
// starts the next task. Work finished elsewhere should hand its result back
// through Loop.Submit.
type Task[N comparable] func(node N) Awaitable

// queueItem pairs a task with a hook run if the task is discarded unstarted.
type queueItem[N comparable] struct {
	run     Task[N]
	discard func()
}

// nodeQueue is the FIFO of one node. At most one task is in flight.
type nodeQueue[N comparable] struct {
	items    []queueItem[N]
	inFlight bool
}

// Queue appends task to node's queue. A new queue starts draining at once;
// unless Config.SyncQueueStart is set, its first real task runs on the next
// frame so that every task of a burst of Queue calls starts asynchronously.
func (s *Scheduler[N]) Queue(node N, task Task[N]) error {
	if task == nil {
		return ErrNilCallback
	}
	s.enqueue(node, queueItem[N]{run: task})
	return nil
}

// Delay queues a pause of d on node.
func (s *Scheduler[N]) Delay(node N, d time.Duration) {
	s.enqueue(node, queueItem[N]{run: func(N) Awaitable { return s.after(d) }})
}

// QueueAnimate queues an animation of node. The animation is created, and its
// clock starts, when the task reaches the head of the queue. The returned
// future settles with that animation, or with ErrCleared if the queue is
// cleared first.
func (s *Scheduler[N]) QueueAnimate(node N, fn AnimateFunc[N], opts ...Option) (*Future[*Animation[N]], error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	out := NewFuture[*Animation[N]]()
	s.enqueue(node, queueItem[N]{
		run: func(n N) Awaitable {
			a := s.animate(n, fn, o)
			a.Then(func(a *Animation[N], err error) {
				if err != nil {
					out.Reject(err)
					return
				}
				out.Resolve(a)
			})
			return a
		},
		discard: func() { out.Reject(ErrCleared) },
	})
	return out, nil
}

// QueueAnimateAll queues the animation on each distinct node and combines the
// results like All.
func (s *Scheduler[N]) QueueAnimateAll(nodes []N, fn AnimateFunc[N], opts ...Option) (*Future[[]*Animation[N]], error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	if _, err := NewOptions(opts...); err != nil {
		return nil, err
	}
	nodes = dedupe(nodes)
	futs := make([]*Future[*Animation[N]], 0, len(nodes))
	for _, n := range nodes {
		f, err := s.QueueAnimate(n, fn, opts...)
		if err != nil {
			return nil, err
		}
		futs = append(futs, f)
	}
	return All(futs...), nil
}

// ClearQueue discards the node's pending tasks. A task already in flight is
// left to finish.
func (s *Scheduler[N]) ClearQueue(node N) {
	q, ok := s.queues[node]
	if !ok {
		return
	}
	dropped := q.items
	q.items = nil
	if !q.inFlight {
		delete(s.queues, node)
	}
	s.metrics.queuePending(-len(dropped))
	for _, it := range dropped {
		if it.discard != nil {
			it.discard()
		}
	}
}

// QueueLen returns the number of tasks waiting on node, excluding the one in
// flight.
func (s *Scheduler[N]) QueueLen(node N) int {
	if q, ok := s.queues[node]; ok {
		return len(q.items)
	}
	return 0
}

// Queued reports whether node has a queue, either pending or in flight.
func (s *Scheduler[N]) Queued(node N) bool {
	_, ok := s.queues[node]
	return ok
}

func (s *Scheduler[N]) enqueue(node N, it queueItem[N]) {
	q, ok := s.queues[node]
	if !ok {
		q = &nodeQueue[N]{}
		s.queues[node] = q
		if !s.syncQ {
			q.items = append(q.items, queueItem[N]{run: func(N) Awaitable { return s.after(0) }})
			s.metrics.queuePending(1)
		}
	}
	q.items = append(q.items, it)
	s.metrics.queuePending(1)
	if !q.inFlight {
		s.drain(node, q)
	}
}

// drain runs tasks from the head of q until one is still pending, then
// returns; that task's settlement resumes the drain. Tasks that settle inline
// are handled in the loop rather than by recursion.
func (s *Scheduler[N]) drain(node N, q *nodeQueue[N]) {
	for {
		if s.queues[node] != q {
			return
		}
		if len(q.items) == 0 {
			q.inFlight = false
			delete(s.queues, node)
			s.emit(Event{Type: EventQueueDrained, Node: node})
			return
		}
		it := q.items[0]
		q.items[0] = queueItem[N]{}
		q.items = q.items[1:]
		q.inFlight = true
		s.metrics.queuePending(-1)

		aw, err := s.runTask(node, it.run)
		if err != nil {
			s.taskFailed(node, q, err)
			continue
		}
		if aw == nil {
			s.metrics.queueTask("ok")
			continue
		}

		inline := true
		settledInline := false
		aw.OnSettle(func(err error) {
			if err != nil {
				s.taskFailed(node, q, err)
			} else {
				s.metrics.queueTask("ok")
			}
			if inline {
				settledInline = true
				return
			}
			s.drain(node, q)
		})
		inline = false
		if !settledInline {
			return
		}
	}
}

func (s *Scheduler[N]) runTask(node N, task Task[N]) (aw Awaitable, err error) {
	_, span := tracer.Start(context.Background(), "fx.queue.task",
		trace.WithAttributes(attribute.String("fx.node", nodeLabel(node))))
	defer func() {
		if r := recover(); r != nil {
			err = recoverCallback("queue", node, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	return task(node), nil
}

func (s *Scheduler[N]) taskFailed(node N, q *nodeQueue[N], err error) {
	s.metrics.queueTask("error")
	s.metrics.callbackError("queue")
	s.logger.Warn("queued task failed",
		slog.Any("node", node),
		slog.String("policy", s.policy.String()),
		slog.String("error", err.Error()))
	s.emit(Event{Type: EventQueueTaskFailed, Node: node, Err: err})
	if s.policy != QueueAbort {
		return
	}
	dropped := q.items
	q.items = nil
	s.metrics.queuePending(-len(dropped))
	for _, it := range dropped {
		if it.discard != nil {
			it.discard()
		}
	}
}

