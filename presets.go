package fx

import (
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Styled is a node whose numeric style properties the presets can read and
// write. *Node satisfies it.
type Styled interface {
	comparable
	Style(prop string) float64
	SetStyle(prop string, v float64)
}

// slideHeightProp remembers the height a node had before SlideUp.
const slideHeightProp = "fx-slide-height"

// runState holds preset state for each node the preset is animating. An
// entry belongs to one animation: it is rebuilt when the node starts another
// and dropped when its animation settles.
type runState[N comparable, T any] struct {
	runs map[N]runEntry[T]
}

type runEntry[T any] struct {
	anim string
	v    T
}

func newRunState[N comparable, T any]() *runState[N, T] {
	return &runState[N, T]{runs: make(map[N]runEntry[T])}
}

// get returns node's state for the animation behind opts, building it with
// init on that animation's first frame.
func (r *runState[N, T]) get(node N, opts Options, init func() T) T {
	if e, ok := r.runs[node]; ok && e.anim == opts.anim {
		return e.v
	}
	v := init()
	r.runs[node] = runEntry[T]{anim: opts.anim, v: v}
	if opts.settle != nil {
		anim := opts.anim
		opts.settle.OnSettle(func(error) { r.drop(node, anim) })
	}
	return v
}

func (r *runState[N, T]) drop(node N, anim string) {
	if e, ok := r.runs[node]; ok && e.anim == anim {
		delete(r.runs, node)
	}
}

// Tween returns a callback that moves each property from the value it has on
// the first frame to its target. The start values are captured per node and
// per animation, so one Tween can drive an AnimateAll over many nodes and be
// started again after a stop.
//
// Eased progress is mapped onto each property with a linear gween tween; the
// animation's own easing has already been applied.
func Tween[N Styled](targets map[string]float64) AnimateFunc[N] {
	props := make([]string, 0, len(targets))
	for p := range targets {
		props = append(props, p)
	}
	sort.Strings(props)

	started := newRunState[N, []*gween.Tween]()
	return func(node N, progress float64, opts Options) error {
		tweens := started.get(node, opts, func() []*gween.Tween {
			tweens := make([]*gween.Tween, len(props))
			for i, p := range props {
				tweens[i] = gween.New(float32(node.Style(p)), float32(targets[p]), 1, ease.Linear)
			}
			return tweens
		})
		for i, p := range props {
			if progress >= 1 {
				node.SetStyle(p, targets[p])
				continue
			}
			v, _ := tweens[i].Set(float32(progress))
			node.SetStyle(p, float64(v))
		}
		if progress >= 1 && opts.settle == nil {
			started.drop(node, opts.anim)
		}
		return nil
	}
}

// FadeTo animates opacity to the given value.
func FadeTo[N Styled](opacity float64) AnimateFunc[N] {
	return Tween[N](map[string]float64{StyleOpacity: opacity})
}

// FadeIn animates opacity to 1.
func FadeIn[N Styled]() AnimateFunc[N] {
	return FadeTo[N](1)
}

// FadeOut animates opacity to 0.
func FadeOut[N Styled]() AnimateFunc[N] {
	return FadeTo[N](0)
}

// SlideUp collapses height to 0, remembering the starting height for
// SlideDown.
func SlideUp[N Styled]() AnimateFunc[N] {
	collapse := Tween[N](map[string]float64{StyleHeight: 0})
	seen := newRunState[N, bool]()
	return func(node N, progress float64, opts Options) error {
		seen.get(node, opts, func() bool {
			node.SetStyle(slideHeightProp, node.Style(StyleHeight))
			return true
		})
		if progress >= 1 && opts.settle == nil {
			seen.drop(node, opts.anim)
		}
		return collapse(node, progress, opts)
	}
}

// SlideDown expands height back to what it was before SlideUp, or to
// fallback if the node was never slid up.
func SlideDown[N Styled](fallback float64) AnimateFunc[N] {
	expand := newRunState[N, AnimateFunc[N]]()
	return func(node N, progress float64, opts Options) error {
		fn := expand.get(node, opts, func() AnimateFunc[N] {
			target := node.Style(slideHeightProp)
			if target == 0 {
				target = fallback
			}
			return Tween[N](map[string]float64{StyleHeight: target})
		})
		if progress >= 1 && opts.settle == nil {
			expand.drop(node, opts.anim)
		}
		return fn(node, progress, opts)
	}
}
