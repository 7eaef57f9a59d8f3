package recorder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shadabshaukat/DELTAV2/pkg/metrics"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
)

// Recorder keeps the in-memory series of a run and fans every successful
// sample out to the configured outputs.
type Recorder struct {
	log     *slog.Logger
	series  *Series
	outputs []plugin.Output

	failures int
}

func New(log *slog.Logger, outputs ...plugin.Output) *Recorder {
	return &Recorder{
		log:     log,
		series:  NewSeries(),
		outputs: outputs,
	}
}

// Open starts every output. Outputs that fail to start are stopped again and
// the error is returned, so a run never begins with a half-open sink.
func (r *Recorder) Open() error {
	for i, out := range r.outputs {
		if err := out.Start(); err != nil {
			for _, started := range r.outputs[:i] {
				if stopErr := started.Stop(); stopErr != nil {
					r.log.Warn("recorder: failed to stop output", "output", started.Name(), "error", stopErr)
				}
			}
			return fmt.Errorf("failed to start output %s: %w", out.Name(), err)
		}
		r.log.Debug("recorder: output started", "output", out.Name())
	}
	return nil
}

// Record stores a successful sample and streams it to the outputs. A failed
// result is counted and logged; nothing is appended for it.
func (r *Recorder) Record(res plugin.Result) {
	if res.Err != nil {
		r.failures++
		kind := plugin.KindOf(res.Err)
		metrics.ProbeFailuresTotal.WithLabelValues(res.Sample.Backend, string(kind)).Inc()
		r.log.Warn("probe failed, iteration skipped",
			"backend", res.Sample.Backend,
			"iteration", res.Iteration,
			"kind", string(kind),
			"error", res.Err)
		return
	}

	r.series.Append(res.Sample)
	metrics.ProbeDuration.WithLabelValues(res.Sample.Backend).Observe(res.Sample.Duration)
	r.log.Debug("probe completed",
		"backend", res.Sample.Backend,
		"iteration", res.Iteration,
		"duration_ms", res.Sample.Duration,
		"sid", res.Sample.Metadata.SID,
		"instance", res.Sample.Metadata.Instance)

	for _, out := range r.outputs {
		if err := out.Send(res.Sample); err != nil {
			metrics.OutputErrorsTotal.WithLabelValues(out.Name()).Inc()
			r.log.Warn("recorder: failed to write sample", "output", out.Name(), "error", err)
		}
	}
}

func (r *Recorder) Series() *Series {
	return r.series
}

// Failures is the number of failed results recorded so far.
func (r *Recorder) Failures() int {
	return r.failures
}

// Close stops every output, even when some of them fail.
func (r *Recorder) Close() error {
	var errs []error
	for _, out := range r.outputs {
		if err := out.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop output %s: %w", out.Name(), err))
		}
	}
	return errors.Join(errs...)
}
