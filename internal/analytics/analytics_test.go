package analytics

import (
	"testing"
	"time"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/lifecycle"
)

func f(v float64) *float64 { return &v }

func entry(t *testing.T, date string, weight *float64) domain.ProgressEntry {
	t.Helper()
	d, err := lifecycle.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	return domain.ProgressEntry{Date: d, WeightKg: weight, CreatedAt: d}
}

func TestMetricStatsScenario(t *testing.T) {
	entries := []domain.ProgressEntry{
		entry(t, "2024-01-01", f(80)),
		entry(t, "2024-02-01", f(76)),
	}

	stats := MetricStats(entries, domain.MetricWeight)
	if stats == nil {
		t.Fatal("expected stats, got nil")
	}
	if stats.First != 80 || stats.Latest != 76 {
		t.Errorf("first/latest = %v/%v, want 80/76", stats.First, stats.Latest)
	}
	if stats.Diff != -4.0 {
		t.Errorf("diff = %v, want -4.0", stats.Diff)
	}
	if stats.DiffText != "-4.0" {
		t.Errorf("diffText = %q, want -4.0", stats.DiffText)
	}
}

func TestMetricStatsNilWhenMetricMissing(t *testing.T) {
	entries := []domain.ProgressEntry{
		entry(t, "2024-01-01", f(80)),
		{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Notes: "felt great"},
	}
	if got := MetricStats(entries, domain.MetricWaist); got != nil {
		t.Errorf("expected nil for unrecorded metric, got %+v", got)
	}
	if got := MetricStats(nil, domain.MetricWeight); got != nil {
		t.Errorf("expected nil for empty history, got %+v", got)
	}
}

func TestMetricStatsSkipsGapsAndUsesChronology(t *testing.T) {
	// Deliberately out of order; the latest by date is 2024-03-01.
	entries := []domain.ProgressEntry{
		entry(t, "2024-03-01", f(74.35)),
		entry(t, "2024-01-01", f(80.2)),
		entry(t, "2024-02-01", nil),
	}
	stats := MetricStats(entries, domain.MetricWeight)
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.First != 80.2 || stats.Latest != 74.35 {
		t.Errorf("first/latest = %v/%v, want 80.2/74.35", stats.First, stats.Latest)
	}
	if stats.DiffText != "-5.9" {
		t.Errorf("diffText = %q, want -5.9", stats.DiffText)
	}
}

func TestSortEntriesTieBreak(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := domain.ProgressEntry{Date: d, WeightKg: f(81), CreatedAt: d.Add(time.Hour)}
	second := domain.ProgressEntry{Date: d, WeightKg: f(79), CreatedAt: d.Add(2 * time.Hour)}

	sorted := SortEntries([]domain.ProgressEntry{second, first})
	if *sorted[0].WeightKg != 81 || *sorted[1].WeightKg != 79 {
		t.Errorf("same-date entries not ordered by creation: %v, %v", *sorted[0].WeightKg, *sorted[1].WeightKg)
	}

	stats := MetricStats([]domain.ProgressEntry{second, first}, domain.MetricWeight)
	if stats.Latest != 79 {
		t.Errorf("latest = %v, want 79 (last created)", stats.Latest)
	}
}

func TestChartSeries(t *testing.T) {
	e1 := entry(t, "2024-01-01", f(80))
	e1.WaistCm = f(90)
	e2 := entry(t, "2024-01-15", nil)
	e2.WaistCm = f(88)
	e3 := entry(t, "2024-02-01", f(77.5))

	chart := ChartSeries(
		[]domain.ProgressEntry{e3, e1, e2},
		[]domain.Metric{domain.MetricWaist, domain.MetricWeight, domain.MetricHips, domain.Metric("bogus")},
	)

	wantLabels := []string{"2024-01-01", "2024-01-15", "2024-02-01"}
	if len(chart.Labels) != len(wantLabels) {
		t.Fatalf("labels = %v, want %v", chart.Labels, wantLabels)
	}
	for i := range wantLabels {
		if chart.Labels[i] != wantLabels[i] {
			t.Errorf("label[%d] = %s, want %s", i, chart.Labels[i], wantLabels[i])
		}
	}

	// Hips has no data and is dropped; order follows the canonical metric list.
	if len(chart.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(chart.Series))
	}
	weight, waist := chart.Series[0], chart.Series[1]
	if weight.Metric != domain.MetricWeight || waist.Metric != domain.MetricWaist {
		t.Fatalf("unexpected series order: %s, %s", weight.Metric, waist.Metric)
	}
	if weight.Label != "Weight (kg)" || !weight.SpanGaps {
		t.Errorf("unexpected weight series metadata: %+v", weight)
	}

	if len(weight.Data) != 3 || *weight.Data[0] != 80 || weight.Data[1] != nil || *weight.Data[2] != 77.5 {
		t.Errorf("weight data not aligned with gaps: %v", weight.Data)
	}
	if len(waist.Data) != 3 || *waist.Data[0] != 90 || *waist.Data[1] != 88 || waist.Data[2] != nil {
		t.Errorf("waist data not aligned with gaps: %v", waist.Data)
	}
}

func TestChartSeriesEmpty(t *testing.T) {
	chart := ChartSeries(nil, []domain.Metric{domain.MetricWeight})
	if len(chart.Labels) != 0 || len(chart.Series) != 0 {
		t.Errorf("expected empty chart, got %+v", chart)
	}
}

func TestSummarize(t *testing.T) {
	e1 := entry(t, "2024-01-01", f(80))
	e1.HipsCm = f(101)
	e2 := entry(t, "2024-02-01", f(78))

	summary := Summarize([]domain.ProgressEntry{e1, e2})
	if len(summary) != 2 {
		t.Fatalf("expected weight and hips stats, got %v", summary)
	}
	if summary[domain.MetricHips].DiffText != "0.0" {
		t.Errorf("hips diff = %q, want 0.0", summary[domain.MetricHips].DiffText)
	}
	if summary[domain.MetricWeight].Diff != -2 {
		t.Errorf("weight diff = %v, want -2", summary[domain.MetricWeight].Diff)
	}
}
