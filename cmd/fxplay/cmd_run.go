package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/fx"
)

const defaultFPS = 60

var runFlags struct {
	fps       int
	maxFrames int
	realtime  bool
	timeout   time.Duration
	metrics   bool
	debug     bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script and print its snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	f := cmd.Flags()
	f.IntVar(&runFlags.fps, "fps", 0, "Frame rate (default: the script's fps, else 60)")
	f.IntVar(&runFlags.maxFrames, "max-frames", 10000, "Give up after this many simulated frames")
	f.BoolVar(&runFlags.realtime, "realtime", false, "Run on wall time instead of a simulated clock")
	f.DurationVar(&runFlags.timeout, "timeout", 30*time.Second, "Give up after this long in realtime mode")
	f.BoolVar(&runFlags.metrics, "metrics", false, "Print scheduler metrics after the run")
	f.BoolVar(&runFlags.debug, "debug", false, "Log every scheduler frame")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	script, err := loadScript(args[0])
	if err != nil {
		return err
	}
	fps := runFlags.fps
	if fps <= 0 {
		fps = script.FPS
	}
	if fps <= 0 {
		fps = defaultFPS
	}

	reg := prometheus.NewRegistry()
	cfg := fx.Config{
		Logger:  newLogger(cmd),
		Metrics: fx.NewMetrics(reg),
		Debug:   runFlags.debug,
	}

	var runner *fx.Runner
	if runFlags.realtime {
		runner, err = playRealtime(cmd.Context(), script, cfg, fps, runFlags.timeout)
	} else {
		runner, err = playSimulated(script, cfg, fps, runFlags.maxFrames)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSnapshots(out, runner.Snapshots())
	printErrors(out, runner.Errors())
	if runFlags.metrics {
		families, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		printMetrics(out, families)
	}
	return nil
}

// playSimulated runs the script on a ManualClock, advancing a fixed step per
// frame until the runner reports done.
func playSimulated(script *fx.Script, cfg fx.Config, fps, maxFrames int) (*fx.Runner, error) {
	clock := fx.NewManualClock(time.Unix(0, 0))
	cfg.Frames = clock
	sched, err := fx.New[*fx.Node](cfg)
	if err != nil {
		return nil, err
	}
	runner := fx.NewRunner(script, sched, clock)
	runner.Start()

	step := time.Second / time.Duration(fps)
	for !runner.Done() {
		if clock.Frames() >= maxFrames {
			return nil, fmt.Errorf("script did not finish within %d frames", maxFrames)
		}
		if clock.Advance(step) == 0 {
			return nil, errors.New("script stalled: no frame requested")
		}
	}
	return runner, nil
}

// playRealtime runs the script on a Loop. The loop and the wait for the
// runner share an errgroup; whichever finishes first cancels the other.
func playRealtime(ctx context.Context, script *fx.Script, cfg fx.Config, fps int, timeout time.Duration) (*fx.Runner, error) {
	loop := fx.NewLoop(time.Second/time.Duration(fps), cfg.Logger)
	cfg.Frames = loop
	sched, err := fx.New[*fx.Node](cfg)
	if err != nil {
		return nil, err
	}
	runner := fx.NewRunner(script, sched, loop)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	finished := make(chan struct{})
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		err := loop.Submit(func() {
			runner.OnDone(func() { close(finished) })
			runner.Start()
		})
		if err != nil {
			return err
		}
		select {
		case <-finished:
			cancel()
			return nil
		case <-gctx.Done():
			return fmt.Errorf("script did not finish: %w", gctx.Err())
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.Debug("realtime run finished", slog.Uint64("ticks", loop.Ticks()))
	}
	return runner, nil
}
