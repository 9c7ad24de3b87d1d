package fx

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

var epoch = time.Unix(0, 0)

// newTestScheduler returns a string-keyed scheduler on a ManualClock that
// starts at the Unix epoch. Logs are discarded.
func newTestScheduler(t *testing.T, configure ...func(*Config)) (*Scheduler[string], *ManualClock) {
	t.Helper()
	clock := NewManualClock(epoch)
	cfg := Config{
		Frames: clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range configure {
		fn(&cfg)
	}
	s, err := New[string](cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s, clock
}

// recorder is an AnimateFunc that records every progress value it sees.
type recorder struct {
	calls []float64
}

func (r *recorder) fn(_ string, p float64, _ Options) error {
	r.calls = append(r.calls, p)
	return nil
}

// advanceN advances the clock n times by d.
func advanceN(c *ManualClock, n int, d time.Duration) {
	for i := 0; i < n; i++ {
		c.Advance(d)
	}
}

// newBufferLogger returns a text logger writing to w at info level.
func newBufferLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}
