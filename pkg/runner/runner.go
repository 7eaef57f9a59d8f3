package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shadabshaukat/DELTAV2/pkg/metrics"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/shadabshaukat/DELTAV2/pkg/recorder"
)

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Window is the span of wall-clock time in which new iterations may start.
type Window struct {
	Start    time.Time
	Duration time.Duration
}

func (w Window) End() time.Time {
	return w.Start.Add(w.Duration)
}

// Open reports whether an iteration may start at now.
func (w Window) Open(now time.Time) bool {
	return now.Before(w.End())
}

type Config struct {
	Logger   *slog.Logger
	Clock    clockwork.Clock
	Probe    plugin.Probe
	Recorder *recorder.Recorder

	// Interval is slept after every iteration, however long the probe took.
	Interval time.Duration
	Period   time.Duration

	// StopOnError ends the run with the first probe error instead of
	// skipping the iteration.
	StopOnError bool
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Probe == nil {
		return errors.New("probe is required")
	}
	if c.Recorder == nil {
		return errors.New("recorder is required")
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", c.Interval)
	}
	if c.Period <= 0 {
		return fmt.Errorf("period must be positive, got %s", c.Period)
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Runner drives one probe at a fixed interval for the length of the run
// window. Exactly one probe is outstanding at any time.
type Runner struct {
	log *slog.Logger
	cfg Config

	state      atomic.Int32
	window     Window
	iterations int
}

func New(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runner config: %w", err)
	}
	return &Runner{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

func (r *Runner) State() State {
	return State(r.state.Load())
}

// Window returns the run window; it is zero until Run has been called.
func (r *Runner) Window() Window {
	return r.window
}

// Iterations is the number of probes started so far.
func (r *Runner) Iterations() int {
	return r.iterations
}

// Run executes iterations until the window closes. The window is only checked
// before an iteration starts, so a probe in flight when it closes runs to
// completion. Cancelling ctx stops the run at the next check and is not an
// error.
func (r *Runner) Run(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("runner already %s", r.State())
	}
	defer r.state.Store(int32(StateFinished))

	clock := r.cfg.Clock
	backend := r.cfg.Probe.Name()
	r.window = Window{Start: clock.Now(), Duration: r.cfg.Period}

	r.log.Info("run started",
		"backend", backend,
		"interval", r.cfg.Interval.String(),
		"period", r.cfg.Period.String())

	for r.window.Open(clock.Now()) {
		if ctx.Err() != nil {
			r.log.Info("run interrupted", "backend", backend, "iterations", r.iterations)
			return nil
		}

		r.iterations++
		metrics.IterationsTotal.WithLabelValues(backend).Inc()

		sample, err := r.cfg.Probe.Execute(ctx)
		if err != nil && ctx.Err() != nil {
			r.log.Info("run interrupted during probe", "backend", backend, "iterations", r.iterations)
			return nil
		}
		if sample.Backend == "" {
			sample.Backend = backend
		}
		if err == nil && sample.Timestamp.IsZero() {
			sample.Timestamp = clock.Now()
		}
		r.cfg.Recorder.Record(plugin.Result{Iteration: r.iterations, Sample: sample, Err: err})

		if err != nil && r.cfg.StopOnError {
			return fmt.Errorf("iteration %d: %w", r.iterations, err)
		}

		select {
		case <-ctx.Done():
		case <-clock.After(r.cfg.Interval):
		}
	}

	r.log.Info("run finished",
		"backend", backend,
		"iterations", r.iterations,
		"samples", r.cfg.Recorder.Series().Len(),
		"failures", r.cfg.Recorder.Failures())
	return nil
}
