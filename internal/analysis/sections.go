package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cast"

	"startupeda/internal/stats"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

// countLabels counts the non-null labels, most frequent first
func countLabels(col labelColumn) []domain.LabelCount {
	counts := make(map[string]int)
	for i := range col.labels {
		if label, ok := col.get(i); ok {
			counts[label]++
		}
	}
	out := make([]domain.LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func share(counts []domain.LabelCount, label string) float64 {
	total, hit := 0, 0
	for _, c := range counts {
		total += c.Count
		if c.Label == label {
			hit = c.Count
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

// breakdown counts every label of col overall and per status
func breakdown(col, status labelColumn) []domain.CategoryBreakdown {
	index := make(map[string]int)
	var out []domain.CategoryBreakdown
	for i := range col.labels {
		label, ok := col.get(i)
		if !ok {
			continue
		}
		k, seen := index[label]
		if !seen {
			k = len(out)
			index[label] = k
			out = append(out, domain.CategoryBreakdown{Label: label, ByStatus: make(map[string]int)})
		}
		out[k].Total++
		if s, ok := status.get(i); ok {
			out[k].ByStatus[s]++
		}
	}
	return out
}

// topByTotal orders a breakdown by overall frequency
func topByTotal(rows []domain.CategoryBreakdown, n int) []domain.CategoryBreakdown {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Label < rows[j].Label
	})
	return truncate(rows, n)
}

// topByOutcome orders a breakdown by positive then negative outcome count
func topByOutcome(rows []domain.CategoryBreakdown, positive, negative string, n int) []domain.CategoryBreakdown {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ByStatus[positive] != b.ByStatus[positive] {
			return a.ByStatus[positive] > b.ByStatus[positive]
		}
		if a.ByStatus[negative] != b.ByStatus[negative] {
			return a.ByStatus[negative] > b.ByStatus[negative]
		}
		return a.Label < b.Label
	})
	return truncate(rows, n)
}

func truncate(rows []domain.CategoryBreakdown, n int) []domain.CategoryBreakdown {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// yearShares returns count and proportion per year, oldest first
func yearShares(years labelColumn) []domain.YearShare {
	counts := countLabels(years)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make([]domain.YearShare, len(counts))
	for i, c := range counts {
		out[i] = domain.YearShare{Year: c.Label, Count: c.Count, Proportion: float64(c.Count) / float64(total)}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// outcomeIndicator is 1 for positive rows, 0 for negative rows and null
// for anything else.
func outcomeIndicator(status labelColumn, positive, negative string) ([]float64, []bool) {
	values := make([]float64, len(status.labels))
	nulls := make([]bool, len(status.labels))
	for i := range values {
		switch s, _ := status.get(i); {
		case status.nulls[i]:
			nulls[i] = true
		case s == positive:
			values[i] = 1
		case s == negative:
			values[i] = 0
		default:
			nulls[i] = true
		}
	}
	return values, nulls
}

// milestoneFlows counts rows per (milestone count, status) pair
func milestoneFlows(col *table.Column, status labelColumn) []domain.Flow {
	type key struct {
		value  float64
		status string
	}
	counts := make(map[key]int)
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		s, sok := status.get(i)
		if !ok || !sok {
			continue
		}
		counts[key{v, s}]++
	}
	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].value != keys[j].value {
			return keys[i].value < keys[j].value
		}
		return keys[i].status < keys[j].status
	})
	out := make([]domain.Flow, len(keys))
	for i, k := range keys {
		out[i] = domain.Flow{
			Source: fmt.Sprintf("%s=%s", col.Name(), cast.ToString(k.value)),
			Target: k.status,
			Count:  counts[k],
		}
	}
	return out
}

// investmentCount counts the positive rows where col is set
func investmentCount(col *table.Column, status labelColumn, positive string) (int, bool) {
	values, nulls, ok := numericValues(col)
	if !ok {
		return 0, false
	}
	n := 0
	for i, v := range values {
		if s, sok := status.get(i); sok && s == positive && !nulls[i] && v != 0 {
			n++
		}
	}
	return n, true
}

// fundingHistogram bins the funding values below the quantile cutoff, one
// series per status, all over the same range.
func fundingHistogram(col *table.Column, status labelColumn, statuses []domain.LabelCount, q float64, bins int) domain.FundingHistogram {
	h := domain.FundingHistogram{Column: col.Name(), Quantile: q}
	observed := col.ObservedFloats()
	if len(observed) == 0 {
		return h
	}
	h.Cutoff = stats.Quantile(observed, q)
	keep := func(v float64) bool {
		if q >= 1 {
			return v <= h.Cutoff
		}
		return v < h.Cutoff
	}

	perStatus := make(map[string][]float64)
	var kept []float64
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		s, sok := status.get(i)
		if !ok || !sok || !keep(v) {
			continue
		}
		perStatus[s] = append(perStatus[s], v)
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return h
	}
	lo, hi := stats.MinMax(kept)
	for _, s := range statuses {
		values, ok := perStatus[s.Label]
		if !ok {
			continue
		}
		series := domain.HistogramSeries{Status: s.Label}
		for _, b := range stats.HistogramRange(values, lo, hi, bins) {
			series.Bins = append(series.Bins, domain.HistogramBin{Lower: b.Lower, Upper: b.Upper, Count: b.Count})
		}
		h.Series = append(h.Series, series)
	}
	return h
}

// logPreview describes a column before and after log1p
func logPreview(col *table.Column) domain.TransformPreview {
	observed := col.ObservedFloats()
	return domain.TransformPreview{
		Column: col.Name(),
		Before: summarize(observed),
		After:  summarize(stats.Log1p(observed)),
	}
}

// summarize describes x; statistics that are undefined for x are zero
func summarize(x []float64) domain.SummaryStats {
	s := stats.Describe(x)
	return domain.SummaryStats{
		Count:  s.Count,
		Mean:   finite(s.Mean),
		Std:    finite(s.Std),
		Min:    finite(s.Min),
		Median: finite(s.Median),
		Max:    finite(s.Max),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
