package analysis

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ImportantStats are the fuzzer_stats keys that are aggregated
var ImportantStats = []string{
	"execs_done",
	"execs_per_sec",
	"paths_total",
	"unique_crashes",
	"unique_hangs",
	"bitmap_cvg",
	"cycles_done",
	"pending_total",
	"pending_favs",
}

// Summary summarises one statistic over a set of runs
type Summary struct {
	Avg    float64   `json:"avg"`
	Median float64   `json:"median"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Raw    []float64 `json:"raw"`
}

// PPOSummary summarises the advisor side of a set of runs
type PPOSummary struct {
	StepsPerRun      []int     `json:"steps_per_run"`
	FinalActionHists [][]int   `json:"final_action_hists"`
	AvgActionHist    []float64 `json:"avg_action_hist"`
}

// Aggregate summarises each of ImportantStats over all runs that report
// a numeric value for it. Statistics no run reports are left out. A nil
// entry stands for a run without statistics.
func Aggregate(runs []map[string]string) map[string]Summary {
	result := make(map[string]Summary)
	for _, key := range ImportantStats {
		var values []float64
		for _, run := range runs {
			if run == nil {
				continue
			}
			raw, ok := run[key]
			if !ok {
				continue
			}
			if v, ok := parseStat(raw); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		result[key] = Summary{
			Avg:    stat.Mean(values, nil),
			Median: Median(values),
			Min:    floats.Min(values),
			Max:    floats.Max(values),
			Raw:    values,
		}
	}
	return result
}

// Median returns the median of values, averaging the two middle values
// when there is an even number of them. values is not modified.
func Median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// AverageHistogram returns the element-wise mean of histograms. All
// histograms are taken to have the length of the first.
func AverageHistogram(hists [][]int) []float64 {
	if len(hists) == 0 {
		return nil
	}
	avg := make([]float64, len(hists[0]))
	for _, h := range hists {
		for i := range avg {
			if i < len(h) {
				avg[i] += float64(h[i])
			}
		}
	}
	floats.Scale(1/float64(len(hists)), avg)
	return avg
}

func parseStat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
