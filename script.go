package fx

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ScriptNode declares a node and its initial style.
type ScriptNode struct {
	Name   string             `yaml:"name"`
	Parent string             `yaml:"parent,omitempty"`
	Style  map[string]float64 `yaml:"style,omitempty"`
}

// ScriptStep is a single action in a script.
//
// Actions:
//
//	animate    tween Props on Nodes
//	fadeIn, fadeOut, fadeTo (Opacity), slideUp, slideDown (Height)
//	delay      queue a pause of Duration on Nodes
//	stop       stop active animations on Nodes (Finish)
//	clear      clear the queues of Nodes
//	wait       let Frames frames, or Duration of time, pass
//	snapshot   record the style of every node under Label
//
// The effect actions run through the node queues unless Queue is false.
type ScriptStep struct {
	Action   string             `yaml:"action"`
	Label    string             `yaml:"label,omitempty"`
	Nodes    []string           `yaml:"nodes,omitempty"`
	Props    map[string]float64 `yaml:"props,omitempty"`
	Opacity  float64            `yaml:"opacity,omitempty"`
	Height   float64            `yaml:"height,omitempty"`
	Duration int                `yaml:"duration,omitempty"` // milliseconds
	Easing   string             `yaml:"easing,omitempty"`
	Infinite bool               `yaml:"infinite,omitempty"`
	Debug    bool               `yaml:"debug,omitempty"`
	Queue    *bool              `yaml:"queue,omitempty"`
	Finish   bool               `yaml:"finish,omitempty"`
	Frames   int                `yaml:"frames,omitempty"`
}

// Script is the top-level structure of a script file. JSON is accepted too.
type Script struct {
	FPS   int          `yaml:"fps,omitempty"`
	Nodes []ScriptNode `yaml:"nodes"`
	Steps []ScriptStep `yaml:"steps"`
}

// Snapshot is the style of every node at one moment of a run.
type Snapshot struct {
	Label  string
	Frame  int
	At     time.Duration
	Styles map[string]map[string]float64
}

// LoadScript parses a YAML or JSON script and checks it.
func LoadScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks node references, actions and options.
func (sc *Script) Validate() error {
	if len(sc.Steps) == 0 {
		return errors.New("parse script: no steps")
	}
	names := make(map[string]bool, len(sc.Nodes))
	for i, n := range sc.Nodes {
		if n.Name == "" {
			return fmt.Errorf("parse script: node %d has no name", i)
		}
		if names[n.Name] {
			return fmt.Errorf("parse script: duplicate node %q", n.Name)
		}
		if n.Parent != "" && !names[n.Parent] {
			return fmt.Errorf("parse script: node %q: parent %q must be declared before it", n.Name, n.Parent)
		}
		names[n.Name] = true
	}
	for i, st := range sc.Steps {
		for _, name := range st.Nodes {
			if !names[name] {
				return fmt.Errorf("parse script: step %d (%s): unknown node %q", i, st.Action, name)
			}
		}
		switch st.Action {
		case "animate", "fadeIn", "fadeOut", "fadeTo", "slideUp", "slideDown":
			if _, err := NewOptions(st.options()...); err != nil {
				return fmt.Errorf("parse script: step %d (%s): %w", i, st.Action, err)
			}
		case "delay", "stop", "clear", "wait", "snapshot":
		default:
			return fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return nil
}

func (st ScriptStep) options() []Option {
	opts := []Option{}
	if st.Duration > 0 {
		opts = append(opts, WithDuration(time.Duration(st.Duration)*time.Millisecond))
	}
	if st.Easing != "" {
		opts = append(opts, WithEasing(Easing(st.Easing)))
	}
	if st.Infinite {
		opts = append(opts, Infinite())
	}
	if st.Debug {
		opts = append(opts, Debug())
	}
	return opts
}

func (st ScriptStep) queued() bool {
	return st.Queue == nil || *st.Queue
}

// Runner plays a Script against a Scheduler one frame at a time. It is
// itself driven by the scheduler's FrameClock: Start requests the first
// frame and every frame requests the next until the script is done.
type Runner struct {
	script *Script
	sched  *Scheduler[*Node]
	frames FrameClock
	root   *Node
	nodes  map[string]*Node

	cursor    int
	waitCount int
	waitUntil time.Time
	frame     int
	started   time.Time
	done      bool
	onDone    func()

	snapshots []Snapshot
	errs      []error
}

// NewRunner builds the script's nodes under a fresh unnamed root and binds them to
// sched. frames must be the FrameClock sched was created with.
func NewRunner(script *Script, sched *Scheduler[*Node], frames FrameClock) *Runner {
	r := &Runner{
		script: script,
		sched:  sched,
		frames: frames,
		root:   NewNode(""),
		nodes:  make(map[string]*Node, len(script.Nodes)),
	}
	for _, sn := range script.Nodes {
		n := NewNode(sn.Name)
		for k, v := range sn.Style {
			n.SetStyle(k, v)
		}
		parent := r.root
		if sn.Parent != "" {
			parent = r.nodes[sn.Parent]
		}
		parent.AddChild(n)
		r.nodes[sn.Name] = n
	}
	return r
}

// Root returns the root of the node tree built from the script.
func (r *Runner) Root() *Node { return r.root }

// Node returns a script node by name.
func (r *Runner) Node(name string) *Node { return r.nodes[name] }

// Snapshots returns the recorded snapshots in order.
func (r *Runner) Snapshots() []Snapshot { return r.snapshots }

// Errors returns the failures of effects started by the script.
func (r *Runner) Errors() []error { return r.errs }

// Done reports whether every step has run and the scheduler is idle.
func (r *Runner) Done() bool { return r.done }

// Frame returns the number of frames the runner has seen.
func (r *Runner) Frame() int { return r.frame }

// OnDone registers fn to run once when the script finishes.
func (r *Runner) OnDone(fn func()) { r.onDone = fn }

// Start requests the runner's first frame.
func (r *Runner) Start() {
	r.started = r.sched.Now()
	r.frames.RequestFrame(r.step)
}

// step runs one frame: it executes steps until a wait, then requests the
// next frame.
func (r *Runner) step() {
	if r.done {
		return
	}
	r.frame++
	now := r.sched.Now()
	if r.ready(now) {
		for r.cursor < len(r.script.Steps) {
			st := r.script.Steps[r.cursor]
			r.cursor++
			r.exec(st, now)
			if st.Action == "wait" {
				break
			}
		}
	}
	if r.cursor >= len(r.script.Steps) && r.waitCount == 0 && r.waitUntil.IsZero() && r.sched.Idle() {
		r.done = true
		if r.onDone != nil {
			r.onDone()
		}
		return
	}
	r.frames.RequestFrame(r.step)
}

// ready counts down a pending wait and reports whether steps may run.
func (r *Runner) ready(now time.Time) bool {
	if r.waitCount > 0 {
		r.waitCount--
		return false
	}
	if !r.waitUntil.IsZero() {
		if now.Before(r.waitUntil) {
			return false
		}
		r.waitUntil = time.Time{}
	}
	return true
}

func (r *Runner) exec(st ScriptStep, now time.Time) {
	targets := Select(r.root, st.Nodes...)

	switch st.Action {
	case "animate":
		r.effect(st, targets, Tween[*Node](st.Props))
	case "fadeIn":
		r.effect(st, targets, FadeIn[*Node]())
	case "fadeOut":
		r.effect(st, targets, FadeOut[*Node]())
	case "fadeTo":
		r.effect(st, targets, FadeTo[*Node](st.Opacity))
	case "slideUp":
		r.effect(st, targets, SlideUp[*Node]())
	case "slideDown":
		r.effect(st, targets, SlideDown[*Node](st.Height))
	case "delay":
		for _, n := range targets {
			r.sched.Delay(n, time.Duration(st.Duration)*time.Millisecond)
		}
	case "stop":
		r.sched.StopAll(targets, st.Finish)
	case "clear":
		for _, n := range targets {
			r.sched.ClearQueue(n)
		}
	case "wait":
		switch {
		case st.Frames > 0:
			r.waitCount = st.Frames - 1 // this frame counts as one
		case st.Duration > 0:
			r.waitUntil = now.Add(time.Duration(st.Duration) * time.Millisecond)
		}
	case "snapshot":
		r.snapshot(st.Label, now)
	}
}

func (r *Runner) effect(st ScriptStep, targets []*Node, fn AnimateFunc[*Node]) {
	opts := st.options()
	record := func(_ []*Animation[*Node], err error) {
		if err != nil && !errors.Is(err, ErrCleared) {
			r.errs = append(r.errs, fmt.Errorf("%s %v: %w", st.Action, st.Nodes, err))
		}
	}
	if st.queued() {
		f, err := r.sched.QueueAnimateAll(targets, fn, opts...)
		if err != nil {
			r.errs = append(r.errs, err)
			return
		}
		f.Then(record)
		return
	}
	set, err := r.sched.AnimateAll(targets, fn, opts...)
	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	set.Future().Then(record)
}

func (r *Runner) snapshot(label string, now time.Time) {
	styles := make(map[string]map[string]float64, len(r.nodes))
	for name, n := range r.nodes {
		styles[name] = n.Styles()
	}
	r.snapshots = append(r.snapshots, Snapshot{
		Label:  label,
		Frame:  r.frame,
		At:     now.Sub(r.started),
		Styles: styles,
	})
}
