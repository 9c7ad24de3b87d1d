package fx

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

// Easing names a progress transform. The four CSS-style names are quadratic
// curves; the rest expose the gween catalogue under kebab-case names.
type Easing string

const (
	Linear    Easing = "linear"
	EaseIn    Easing = "ease-in"
	EaseOut   Easing = "ease-out"
	EaseInOut Easing = "ease-in-out"
)

var easings = map[Easing]ease.TweenFunc{
	Linear:    ease.Linear,
	EaseIn:    ease.InQuad,
	EaseOut:   ease.OutQuad,
	EaseInOut: ease.InOutQuad,

	"in-cubic":       ease.InCubic,
	"out-cubic":      ease.OutCubic,
	"in-out-cubic":   ease.InOutCubic,
	"in-quart":       ease.InQuart,
	"out-quart":      ease.OutQuart,
	"in-out-quart":   ease.InOutQuart,
	"in-quint":       ease.InQuint,
	"out-quint":      ease.OutQuint,
	"in-out-quint":   ease.InOutQuint,
	"in-sine":        ease.InSine,
	"out-sine":       ease.OutSine,
	"in-out-sine":    ease.InOutSine,
	"in-expo":        ease.InExpo,
	"out-expo":       ease.OutExpo,
	"in-out-expo":    ease.InOutExpo,
	"in-circ":        ease.InCirc,
	"out-circ":       ease.OutCirc,
	"in-out-circ":    ease.InOutCirc,
	"in-back":        ease.InBack,
	"out-back":       ease.OutBack,
	"in-out-back":    ease.InOutBack,
	"in-elastic":     ease.InElastic,
	"out-elastic":    ease.OutElastic,
	"in-out-elastic": ease.InOutElastic,
	"in-bounce":      ease.InBounce,
	"out-bounce":     ease.OutBounce,
	"in-out-bounce":  ease.InOutBounce,
}

// ParseEasing returns the Easing with the given name.
func ParseEasing(name string) (Easing, error) {
	e := Easing(name)
	if !e.Valid() {
		return "", fmt.Errorf("%w: unknown easing %q", ErrInvalidOptions, name)
	}
	return e, nil
}

// Easings lists every known easing name in sorted order.
func Easings() []Easing {
	out := make([]Easing, 0, len(easings))
	for e := range easings {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Valid reports whether e names a known easing.
func (e Easing) Valid() bool {
	_, ok := easings[e]
	return ok
}

// Apply maps linear progress p to eased progress. The endpoints are exact:
// p <= 0 yields 0 and p >= 1 yields 1. Unknown easings fall back to linear.
func (e Easing) Apply(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	fn, ok := easings[e]
	if !ok {
		return p
	}
	return float64(fn(float32(p), 0, 1, 1))
}
