package stats

import (
	"sort"

	"github.com/uluyol/heyp-ewm/go/series"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the present values of a series.
type Summary struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P05   float64 `json:"p05"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
}

// Summarize computes a Summary. If s has no present values, only Count
// and Nulls are set.
func Summarize[T Float](s *series.Series[T]) Summary {
	present := series.Convert[float64](s).Present()
	sum := Summary{
		Count: len(present),
		Nulls: s.NullCount(),
	}
	if len(present) == 0 {
		return sum
	}
	sort.Float64s(present)
	sum.Mean = stat.Mean(present, nil)
	if len(present) > 1 {
		sum.Std = stat.StdDev(present, nil)
	}
	sum.Min = present[0]
	sum.Max = present[len(present)-1]
	sum.P05 = stat.Quantile(0.05, stat.LinInterp, present, nil)
	sum.P50 = stat.Quantile(0.50, stat.LinInterp, present, nil)
	sum.P95 = stat.Quantile(0.95, stat.LinInterp, present, nil)
	return sum
}
