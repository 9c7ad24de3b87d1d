package fx

import "context"

// AnimationSet groups animations, usually the same effect applied to several
// nodes, behind one future. The set is fixed at construction.
//
// The combined future resolves once every animation has resolved and rejects
// with the first failure. A failure does not stop the other animations; call
// Stop for that.
type AnimationSet[N comparable] struct {
	anims []*Animation[N]
	fut   *Future[[]*Animation[N]]
}

// NewAnimationSet captures anims in order.
func NewAnimationSet[N comparable](anims ...*Animation[N]) *AnimationSet[N] {
	captured := append([]*Animation[N](nil), anims...)
	futs := make([]*Future[*Animation[N]], len(captured))
	for i, a := range captured {
		futs[i] = a.fut
	}
	return &AnimationSet[N]{anims: captured, fut: All(futs...)}
}

// Animations returns a copy of the captured animations.
func (s *AnimationSet[N]) Animations() []*Animation[N] {
	return append([]*Animation[N](nil), s.anims...)
}

// Len returns the number of captured animations.
func (s *AnimationSet[N]) Len() int { return len(s.anims) }

// Stop stops every captured animation.
func (s *AnimationSet[N]) Stop(finish bool) {
	for _, a := range s.anims {
		a.Stop(finish)
	}
}

// Future returns the combined future.
func (s *AnimationSet[N]) Future() *Future[[]*Animation[N]] { return s.fut }

// OnSettle implements Awaitable.
func (s *AnimationSet[N]) OnSettle(fn func(error)) { s.fut.OnSettle(fn) }

// Wait blocks until the combined future settles or ctx is done.
func (s *AnimationSet[N]) Wait(ctx context.Context) ([]*Animation[N], error) {
	return s.fut.Wait(ctx)
}
