// Package ebitenfx drives an fx scheduler from an Ebitengine game loop and
// draws a tree of fx nodes as colored rectangles.
//
// Each call to Update advances a ManualClock by one tick (1/TPS seconds), so
// animation time follows the game's update rate rather than wall time:
//
//	root := fx.NewNode("root")
//	d, _ := ebitenfx.NewDriver(root, ebitenfx.Config{Width: 640, Height: 480})
//	d.Scheduler().Animate(box, fx.FadeOut[*fx.Node]())
//	ebitenfx.Run(d, "demo")
package ebitenfx

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/fx"
)

// Config configures a Driver.
type Config struct {
	Width, Height int

	// TPS fixes the simulated step to 1/TPS seconds. Zero reads ebiten.TPS()
	// on every update.
	TPS int

	ClearColor color.Color // nil leaves the screen as is
	ShowFPS    bool

	Logger  *slog.Logger
	Metrics *fx.Metrics
	Events  fx.EventSink
	Debug   bool

	// OnUpdate runs after the scheduler has advanced, once per update.
	OnUpdate func() error
}

// Driver implements ebiten.Game on top of an fx scheduler.
type Driver struct {
	cfg   Config
	root  *fx.Node
	clock *fx.ManualClock
	sched *fx.Scheduler[*fx.Node]
}

// NewDriver returns a driver rendering the tree under root.
func NewDriver(root *fx.Node, cfg Config) (*Driver, error) {
	clock := fx.NewManualClock(time.Now())
	sched, err := fx.New[*fx.Node](fx.Config{
		Frames:  clock,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
		Events:  cfg.Events,
		Debug:   cfg.Debug,
	})
	if err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg, root: root, clock: clock, sched: sched}, nil
}

// Scheduler returns the scheduler advanced by Update.
func (d *Driver) Scheduler() *fx.Scheduler[*fx.Node] { return d.sched }

// Clock returns the clock advanced by Update.
func (d *Driver) Clock() *fx.ManualClock { return d.clock }

// Root returns the drawn tree.
func (d *Driver) Root() *fx.Node { return d.root }

// Update implements ebiten.Game.
func (d *Driver) Update() error {
	d.clock.Advance(d.step())
	if d.cfg.OnUpdate != nil {
		return d.cfg.OnUpdate()
	}
	return nil
}

func (d *Driver) step() time.Duration {
	tps := d.cfg.TPS
	if tps <= 0 {
		tps = ebiten.TPS()
	}
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return time.Second / time.Duration(tps)
}

// Draw implements ebiten.Game.
func (d *Driver) Draw(screen *ebiten.Image) {
	if d.cfg.ClearColor != nil {
		screen.Fill(d.cfg.ClearColor)
	}
	for _, r := range Rects(d.root) {
		vector.DrawFilledRect(screen, r.X, r.Y, r.Width, r.Height, r.Color, false)
	}
	if d.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nanimations: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), d.sched.ActiveCount()))
	}
}

// Layout implements ebiten.Game.
func (d *Driver) Layout(outsideWidth, outsideHeight int) (int, int) {
	if d.cfg.Width > 0 && d.cfg.Height > 0 {
		return d.cfg.Width, d.cfg.Height
	}
	return outsideWidth, outsideHeight
}

// Run opens a window sized from the driver's config and runs the game.
func Run(d *Driver, title string) error {
	if d.cfg.Width > 0 && d.cfg.Height > 0 {
		ebiten.SetWindowSize(d.cfg.Width, d.cfg.Height)
	}
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(d)
}
