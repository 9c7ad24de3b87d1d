package fx

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xlab/treeprint"
)

// debugFrame logs timing and registry sizes for one update pass. Only called
// when Config.Debug is set.
func (s *Scheduler[N]) debugFrame(took time.Duration) {
	s.logger.Info("frame",
		slog.Uint64("frame", s.frame),
		slog.Duration("update", took),
		slog.Int("nodes", len(s.anims)),
		slog.Int("animations", s.ActiveCount()),
		slog.Int("queues", len(s.queues)),
		slog.Int("delays", len(s.timers)))
}

// Dump renders the registries as a tree, for debugging:
//
//	fx
//	├── animations
//	│   └── box#1
//	│       └── 3f2a… running 42% ease-in-out 1s
//	└── queues
//	    └── box#1 (2 pending, in flight)
func (s *Scheduler[N]) Dump() string {
	tree := treeprint.NewWithRoot("fx")

	ab := tree.AddBranch("animations")
	for _, node := range s.animOrder {
		nb := ab.AddBranch(nodeLabel(node))
		for _, a := range s.anims[node] {
			mode := a.opts.Duration.String()
			if a.opts.Infinite {
				mode += " infinite"
			}
			nb.AddNode(fmt.Sprintf("%s %s %.0f%% %s %s",
				shortID(a.id), a.state, a.progress*100, a.opts.Easing, mode))
		}
	}

	qb := tree.AddBranch("queues")
	lines := make([]string, 0, len(s.queues))
	for node, q := range s.queues {
		label := fmt.Sprintf("%s (%d pending", nodeLabel(node), len(q.items))
		if q.inFlight {
			label += ", in flight"
		}
		lines = append(lines, label+")")
	}
	sort.Strings(lines)
	for _, line := range lines {
		qb.AddNode(line)
	}

	if len(s.timers) > 0 {
		tree.AddNode(fmt.Sprintf("delays: %d", len(s.timers)))
	}
	return tree.String()
}

// nodeLabel formats a node handle for logs and dumps.
func nodeLabel(node any) string {
	if s, ok := node.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(node)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
