package reporting

import (
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises a set of fitness values. Stdev is the sample standard
// deviation (n-1 denominator); it is zero for fewer than two values.
type Stats struct {
	N      int
	Mean   float64
	Stdev  float64
	Median float64
}

// ComputeStats returns the statistics of values or ErrNoFitness when empty.
func ComputeStats(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrNoFitness
	}
	s := Stats{N: len(values), Mean: stat.Mean(values, nil), Median: median(values)}
	if len(values) > 1 {
		s.Stdev = stat.StdDev(values, nil)
	}
	return s, nil
}

// median averages the two middle values for an even count. gonum's
// stat.Quantile picks one of them instead.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

const windowSize = 10

// durationWindow keeps the most recent generation durations.
type durationWindow struct {
	samples []time.Duration
}

func (w *durationWindow) add(d time.Duration) {
	w.samples = append(w.samples, d)
	if len(w.samples) > windowSize {
		w.samples = slices.Clone(w.samples[len(w.samples)-windowSize:])
	}
}

func (w *durationWindow) len() int { return len(w.samples) }

func (w *durationWindow) average() time.Duration {
	if len(w.samples) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range w.samples {
		sum += d
	}
	return time.Duration(math.Round(float64(sum) / float64(len(w.samples))))
}
