package ebitenfx

import (
	"image/color"

	"github.com/phanxgames/fx"
)

// Rect is one filled rectangle of a drawn tree, in screen coordinates.
type Rect struct {
	Node                *fx.Node
	X, Y, Width, Height float32
	Color               color.RGBA
}

// Rects flattens the tree under root into draw order. Positions are relative
// to the parent and opacity multiplies down the tree. Nodes without area or
// with zero effective opacity are skipped, but their children are still
// visited.
func Rects(root *fx.Node) []Rect {
	var out []Rect
	collect(root, 0, 0, 1, &out)
	return out
}

func collect(n *fx.Node, ox, oy, alpha float64, out *[]Rect) {
	x := ox + n.Style(fx.StyleX)
	y := oy + n.Style(fx.StyleY)
	a := alpha * clamp01(n.Style(fx.StyleOpacity))

	w, h := n.Style(fx.StyleWidth), n.Style(fx.StyleHeight)
	if w > 0 && h > 0 && a > 0 {
		*out = append(*out, Rect{
			Node:   n,
			X:      float32(x),
			Y:      float32(y),
			Width:  float32(w),
			Height: float32(h),
			Color:  premultiplied(n, a),
		})
	}
	for _, c := range n.Children() {
		collect(c, x, y, a, out)
	}
}

// premultiplied converts the node's color styles to premultiplied RGBA.
func premultiplied(n *fx.Node, a float64) color.RGBA {
	ch := func(v float64) uint8 { return uint8(clamp01(v)*a*255 + 0.5) }
	return color.RGBA{
		R: ch(n.Style(fx.StyleRed)),
		G: ch(n.Style(fx.StyleGreen)),
		B: ch(n.Style(fx.StyleBlue)),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
