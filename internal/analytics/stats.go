// Package analytics derives trend statistics and chart-ready series from a
// client's progress history.
package analytics

import (
	"sort"

	"dietcascade/portal-api/internal/domain"

	"github.com/shopspring/decimal"
)

// Stats summarises one metric over a history.
type Stats struct {
	First  float64 `json:"first"`
	Latest float64 `json:"latest"`
	// Diff is Latest - First rounded to one decimal place.
	Diff float64 `json:"diff"`
	// DiffText is Diff with exactly one fractional digit, e.g. "-4.0".
	DiffText string `json:"diffText"`
}

// SortEntries returns a copy of entries ordered by date ascending. Entries
// sharing a date keep creation order, then ID order.
func SortEntries(entries []domain.ProgressEntry) []domain.ProgressEntry {
	sorted := make([]domain.ProgressEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.Hex() < b.ID.Hex()
	})
	return sorted
}

// MetricStats returns the first and latest recorded value of metric and
// their difference. Entries without the metric are skipped. It returns nil
// when no entry records the metric.
func MetricStats(entries []domain.ProgressEntry, metric domain.Metric) *Stats {
	var first, latest *float64
	for _, e := range SortEntries(entries) {
		v := e.Value(metric)
		if v == nil {
			continue
		}
		if first == nil {
			first = v
		}
		latest = v
	}
	if first == nil {
		return nil
	}

	diff := decimal.NewFromFloat(*latest).Sub(decimal.NewFromFloat(*first)).Round(1)
	return &Stats{
		First:    *first,
		Latest:   *latest,
		Diff:     diff.InexactFloat64(),
		DiffText: diff.StringFixed(1),
	}
}

// Summary holds the stats of every metric that has at least one value.
type Summary map[domain.Metric]*Stats

// Summarize computes MetricStats for all metrics.
func Summarize(entries []domain.ProgressEntry) Summary {
	out := Summary{}
	for _, m := range domain.Metrics {
		if s := MetricStats(entries, m); s != nil {
			out[m] = s
		}
	}
	return out
}
