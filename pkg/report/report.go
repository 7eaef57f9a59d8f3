package report

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// P99 is the percentile the run reports.
const P99 = 99.0

// Percentile returns the p-th percentile of values using linear interpolation
// between the closest ranks of the sorted values: rank = p/100*(n-1). It
// returns false when values is empty. values is not modified.
func Percentile(values []float64, p float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	p = math.Max(0, math.Min(100, p))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], true
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, true
}

// Durations is the read-only view of a sample series the report needs.
type Durations interface {
	Durations() []float64
}

// Write prints the p99 latency line for series, or a "no samples" line when
// nothing was recorded.
func Write(w io.Writer, series Durations) error {
	v, ok := Percentile(series.Durations(), P99)
	if !ok {
		_, err := fmt.Fprintln(w, "No samples were recorded.")
		return err
	}
	_, err := fmt.Fprintf(w, "P99 latency: %.2f ms\n", v)
	return err
}
