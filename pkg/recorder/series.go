package recorder

import "github.com/shadabshaukat/DELTAV2/pkg/plugin"

// Series is the ordered, append-only list of samples collected during one
// run. Insertion order is temporal order. It has a single writer and is not
// safe for concurrent use.
type Series struct {
	samples []plugin.Sample
}

func NewSeries() *Series {
	return &Series{}
}

func (s *Series) Append(sample plugin.Sample) {
	s.samples = append(s.samples, sample)
}

func (s *Series) Len() int {
	return len(s.samples)
}

// Durations returns a copy of the recorded latencies in milliseconds, in
// insertion order.
func (s *Series) Durations() []float64 {
	out := make([]float64, len(s.samples))
	for i, sample := range s.samples {
		out[i] = sample.Duration
	}
	return out
}

// Samples returns a copy of the recorded samples.
func (s *Series) Samples() []plugin.Sample {
	return append([]plugin.Sample(nil), s.samples...)
}
