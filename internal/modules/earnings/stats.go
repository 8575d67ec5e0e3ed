package earnings

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/earnings/internal/domain"
)

// InLineTolerance is the surprise band (percent) counted as in line with
// expectations rather than a beat or a miss.
const InLineTolerance = 1.0

// Stats summarizes a set of surprises. Extreme results are counted but kept
// out of the distribution moments.
type Stats struct {
	Count   int      `json:"count"`
	Beats   int      `json:"beats"`
	Misses  int      `json:"misses"`
	InLine  int      `json:"in_line"`
	Extreme int      `json:"extreme"`
	Mean    *float64 `json:"mean"`
	Median  *float64 `json:"median"`
	StdDev  *float64 `json:"std_dev"`
}

// ComputeStats aggregates results, ignoring those without a value.
func ComputeStats(results []domain.SurpriseResult) Stats {
	var s Stats
	values := make([]float64, 0, len(results))

	for _, r := range results {
		if r.Value == nil {
			continue
		}
		s.Count++
		v := *r.Value

		switch {
		case math.Abs(v) <= InLineTolerance:
			s.InLine++
		case v > 0:
			s.Beats++
		default:
			s.Misses++
		}

		if r.Extreme {
			s.Extreme++
			continue
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return s
	}

	sort.Float64s(values)
	mean := stat.Mean(values, nil)
	mid := median(values)
	s.Mean = &mean
	s.Median = &mid

	if len(values) > 1 {
		sd := stat.StdDev(values, nil)
		s.StdDev = &sd
	}

	return s
}

// median expects sorted values. Even-length input averages the two middle
// values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
