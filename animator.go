package fx

// Animate starts an animation of node and registers it with the frame loop.
// The callback first runs on the next frame. Options are validated before
// anything is registered.
func (s *Scheduler[N]) Animate(node N, fn AnimateFunc[N], opts ...Option) (*Animation[N], error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	return s.animate(node, fn, o), nil
}

// AnimateAll starts the same animation on every node and combines them into
// an AnimationSet. Duplicate nodes are animated once, in first-seen order. An
// empty node list yields an empty, already-resolved set.
func (s *Scheduler[N]) AnimateAll(nodes []N, fn AnimateFunc[N], opts ...Option) (*AnimationSet[N], error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	nodes = dedupe(nodes)
	anims := make([]*Animation[N], 0, len(nodes))
	for _, n := range nodes {
		anims = append(anims, s.animate(n, fn, o))
	}
	return NewAnimationSet(anims...), nil
}

func (s *Scheduler[N]) animate(node N, fn AnimateFunc[N], o Options) *Animation[N] {
	a := newAnimation(s, node, fn, o)
	if _, ok := s.anims[node]; !ok {
		s.animOrder = append(s.animOrder, node)
	}
	s.anims[node] = append(s.anims[node], a)
	s.metrics.animationStarted()
	s.syncActive()
	s.emit(Event{Type: EventAnimationStarted, Node: node, Animation: a.id})
	s.Start()
	return a
}

// Stop stops every active animation of node. With finish each callback runs
// one last time at progress 1. The node's queue is not touched: the next
// queued task starts once the stopped animation settles.
func (s *Scheduler[N]) Stop(node N, finish bool) {
	list, ok := s.anims[node]
	if !ok {
		return
	}
	s.dropNode(node)
	for _, a := range list {
		a.Stop(finish)
	}
}

// StopAll calls Stop for each node.
func (s *Scheduler[N]) StopAll(nodes []N, finish bool) {
	for _, n := range nodes {
		s.Stop(n, finish)
	}
}

// Active returns a copy of the node's active animations in admission order.
func (s *Scheduler[N]) Active(node N) []*Animation[N] {
	return append([]*Animation[N](nil), s.anims[node]...)
}

// Animating reports whether node has at least one active animation.
func (s *Scheduler[N]) Animating(node N) bool {
	return len(s.anims[node]) > 0
}

// ActiveCount returns the number of active animations across all nodes.
func (s *Scheduler[N]) ActiveCount() int {
	n := 0
	for _, list := range s.anims {
		n += len(list)
	}
	return n
}

// detach removes one animation from the registry, pruning the node entry if
// it becomes empty.
func (s *Scheduler[N]) detach(a *Animation[N]) {
	list, ok := s.anims[a.node]
	if !ok {
		return
	}
	for i, x := range list {
		if x != a {
			continue
		}
		next := make([]*Animation[N], 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			s.dropNode(a.node)
		} else {
			s.anims[a.node] = next
			s.syncActive()
		}
		return
	}
}

// prune drops settled animations of node after a tick.
func (s *Scheduler[N]) prune(node N) {
	list, ok := s.anims[node]
	if !ok {
		return
	}
	next := make([]*Animation[N], 0, len(list))
	for _, a := range list {
		if !a.state.settled() {
			next = append(next, a)
		}
	}
	if len(next) == 0 {
		s.dropNode(node)
		return
	}
	s.anims[node] = next
	s.syncActive()
}

// dropNode removes the node's registry entry without touching its animations.
func (s *Scheduler[N]) dropNode(node N) {
	delete(s.anims, node)
	for i, n := range s.animOrder {
		if n == node {
			s.animOrder = append(s.animOrder[:i], s.animOrder[i+1:]...)
			break
		}
	}
	s.syncActive()
}

func (s *Scheduler[N]) syncActive() {
	if s.metrics != nil {
		s.metrics.setActive(s.ActiveCount())
	}
}

func dedupe[N comparable](nodes []N) []N {
	seen := make(map[N]struct{}, len(nodes))
	out := make([]N, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
