package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/shadabshaukat/DELTAV2/pkg/recorder"
	"github.com/shadabshaukat/DELTAV2/pkg/report"
	"github.com/shadabshaukat/DELTAV2/pkg/runner"
)

// Daemon owns one measurement run: the probe selected by --db, the outputs
// and the recorder they hang off.
type Daemon struct {
	cfg      *config.Config
	log      *slog.Logger
	clock    clockwork.Clock
	probe    plugin.Probe
	outputs  []plugin.Output
	recorder *recorder.Recorder
	runner   *runner.Runner
}

type Option func(*Daemon)

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(d *Daemon) { d.clock = c }
}

// WithProbe bypasses the registry lookup for cfg.DB.
func WithProbe(p plugin.Probe) Option {
	return func(d *Daemon) { d.probe = p }
}

// New validates cfg and builds the probe and every output. Nothing is
// connected or opened yet; configuration errors surface here, before the
// first iteration.
func New(cfg *config.Config, log *slog.Logger, opts ...Option) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Daemon{cfg: cfg, log: log, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(d)
	}

	if d.probe == nil {
		pr, err := plugin.NewProbe(cfg.DB, cfg)
		if err != nil {
			return nil, err
		}
		d.probe = pr
	}

	outCfgs := cfg.Outputs
	if cfg.CSVOutput != "" {
		outCfgs = append([]config.OutputConfig{{Name: "csvoutput", Type: "csv", Path: cfg.CSVOutput}}, outCfgs...)
	}
	for _, oc := range outCfgs {
		out, err := plugin.NewOutput(oc)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", oc.Name, err)
		}
		log.Debug("output configured", "name", oc.Name, "type", oc.Type)
		d.outputs = append(d.outputs, out)
	}

	d.recorder = recorder.New(log, d.outputs...)
	r, err := runner.New(runner.Config{
		Logger:      log,
		Clock:       d.clock,
		Probe:       d.probe,
		Recorder:    d.recorder,
		Interval:    cfg.IntervalDuration(),
		Period:      cfg.PeriodDuration(),
		StopOnError: cfg.StopOnError,
	})
	if err != nil {
		return nil, err
	}
	d.runner = r
	return d, nil
}

// Run opens the outputs, runs the window and writes the report to w. With
// stop-on-error a probe failure aborts the run and no report is written.
func (d *Daemon) Run(ctx context.Context, w io.Writer) error {
	if err := d.recorder.Open(); err != nil {
		return err
	}
	defer func() {
		if err := d.recorder.Close(); err != nil {
			d.log.Warn("failed to close outputs", "error", err)
		}
	}()

	if err := d.runner.Run(ctx); err != nil {
		return err
	}
	return report.Write(w, d.recorder.Series())
}

func (d *Daemon) Recorder() *recorder.Recorder {
	return d.recorder
}

func (d *Daemon) State() runner.State {
	return d.runner.State()
}
