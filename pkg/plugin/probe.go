package plugin

import (
	"context"
	"time"
)

// Metadata carries backend-specific identifiers attached to a sample, such as
// the database session id and the instance that served it. Zero values are
// written as blank fields.
type Metadata struct {
	SID      string `json:"sid,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Sample is one successful probe measurement. It is not modified after it has
// been handed to the recorder.
type Sample struct {
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
	// Duration is the round-trip latency in milliseconds.
	Duration float64  `json:"duration_ms"`
	Metadata Metadata `json:"metadata"`
}

// Probe performs one timed round trip against a backend. Implementations open
// a fresh connection per call and exclude connection setup and teardown from
// the measured duration.
type Probe interface {
	Name() string
	Execute(ctx context.Context) (Sample, error)
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(ctx context.Context) (Sample, error)

func (f ProbeFunc) Name() string { return "func" }

func (f ProbeFunc) Execute(ctx context.Context) (Sample, error) {
	return f(ctx)
}

// Millis converts a duration to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return d.Seconds() * 1000
}

// Result is the outcome of one probe iteration: either a sample or an error.
type Result struct {
	Iteration int
	Sample    Sample
	Err       error
}
