package analytics

import (
	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/lifecycle"
)

// Series is one metric's values aligned to the chart's date axis.
// Data holds nil where the metric was not recorded on that date.
type Series struct {
	Metric domain.Metric `json:"metric"`
	Label  string        `json:"label"`
	Data   []*float64    `json:"data"`
	// SpanGaps tells the renderer to bridge nil points instead of breaking the line.
	SpanGaps bool `json:"spanGaps"`
}

// Chart is a shared date axis plus one series per requested metric.
type Chart struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// ChartSeries builds the chart for the active metrics. Metrics without any
// recorded value are left out, unknown metrics are ignored, and series come
// in the canonical metric order.
func ChartSeries(entries []domain.ProgressEntry, active []domain.Metric) Chart {
	sorted := SortEntries(entries)

	chart := Chart{
		Labels: make([]string, len(sorted)),
		Series: []Series{},
	}
	for i, e := range sorted {
		chart.Labels[i] = lifecycle.FormatDate(e.Date)
	}

	wanted := make(map[domain.Metric]bool, len(active))
	for _, m := range active {
		wanted[m] = true
	}

	for _, m := range domain.Metrics {
		if !wanted[m] {
			continue
		}
		data := make([]*float64, len(sorted))
		recorded := false
		for i, e := range sorted {
			if v := e.Value(m); v != nil {
				val := *v
				data[i] = &val
				recorded = true
			}
		}
		if !recorded {
			continue
		}
		chart.Series = append(chart.Series, Series{
			Metric:   m,
			Label:    m.Label(),
			Data:     data,
			SpanGaps: true,
		})
	}
	return chart
}
