package lifecycle

import (
	"testing"
	"time"

	"dietcascade/portal-api/internal/domain"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestComputeEndDate(t *testing.T) {
	cases := []struct {
		start    string
		planType domain.PlanType
		want     string
	}{
		{"2024-01-15", domain.PlanOneMonth, "2024-02-15"},
		{"2024-01-15", domain.PlanThreeMonth, "2024-04-15"},
		{"2024-01-15", domain.PlanSixMonth, "2024-07-15"},
		{"2024-11-20", domain.PlanThreeMonth, "2025-02-20"},
		{"2024-01-31", domain.PlanOneMonth, "2024-02-29"},
		{"2023-01-31", domain.PlanOneMonth, "2023-02-28"},
		{"2024-08-31", domain.PlanSixMonth, "2025-02-28"},
		{"2024-03-31", domain.PlanThreeMonth, "2024-06-30"},
		{"2024-01-15", domain.PlanType("Custom Plan"), "2024-02-15"},
		{"2024-01-15", domain.PlanType(""), "2024-02-15"},
	}
	for _, tc := range cases {
		got := FormatDate(ComputeEndDate(date(t, tc.start), tc.planType))
		if got != tc.want {
			t.Errorf("ComputeEndDate(%s, %q) = %s, want %s", tc.start, tc.planType, got, tc.want)
		}
	}
}

func TestDaysRemaining(t *testing.T) {
	if got := DaysRemaining(nil, time.Now()); got != nil {
		t.Fatalf("expected nil without end date, got %d", *got)
	}

	end := date(t, "2024-04-15")
	cases := []struct {
		now  time.Time
		want int
	}{
		{date(t, "2024-04-10"), 5},
		{date(t, "2024-04-14").Add(1 * time.Hour), 1},
		{date(t, "2024-04-15"), 0},
		{date(t, "2024-04-15").Add(1 * time.Minute), 0},
		{date(t, "2024-06-01"), 0},
	}
	for _, tc := range cases {
		got := DaysRemaining(&end, tc.now)
		if got == nil || *got != tc.want {
			t.Errorf("DaysRemaining(%v) = %v, want %d", tc.now, got, tc.want)
		}
		if *got < 0 {
			t.Errorf("DaysRemaining must never be negative, got %d", *got)
		}
	}
}

func TestJourneyProgressPercentScenario(t *testing.T) {
	start := date(t, "2024-01-15")
	end := ComputeEndDate(start, domain.PlanThreeMonth)
	if FormatDate(end) != "2024-04-15" {
		t.Fatalf("expected end 2024-04-15, got %s", FormatDate(end))
	}
	now := date(t, "2024-03-01")

	if got := DaysElapsed(start, now); got != 46 {
		t.Errorf("DaysElapsed = %d, want 46", got)
	}
	if got := TotalDays(start, end); got != 91 {
		t.Errorf("TotalDays = %d, want 91", got)
	}
	if got := JourneyProgressPercent(&start, &end, now); got != 51 {
		t.Errorf("JourneyProgressPercent = %d, want 51", got)
	}
}

func TestJourneyProgressPercentBounds(t *testing.T) {
	start := date(t, "2024-01-15")
	end := date(t, "2024-04-15")

	if got := JourneyProgressPercent(&start, &end, start.AddDate(0, 0, -10)); got != 0 {
		t.Errorf("before start: got %d, want 0", got)
	}
	if got := JourneyProgressPercent(&start, &end, start); got != 0 {
		t.Errorf("at start: got %d, want 0", got)
	}
	if got := JourneyProgressPercent(&start, &end, end); got != 100 {
		t.Errorf("at end: got %d, want 100", got)
	}
	if got := JourneyProgressPercent(&start, &end, end.AddDate(1, 0, 0)); got != 100 {
		t.Errorf("after end: got %d, want 100", got)
	}
	if got := JourneyProgressPercent(nil, &end, start); got != 0 {
		t.Errorf("missing start: got %d, want 0", got)
	}
	if got := JourneyProgressPercent(&end, &start, end); got != 0 {
		t.Errorf("non-positive length: got %d, want 0", got)
	}
}

func TestJourneyProgressPercentMonotonic(t *testing.T) {
	start := date(t, "2024-01-15")
	end := date(t, "2024-07-15")

	prev := -1
	for now := start.Add(-48 * time.Hour); !now.After(end.Add(48 * time.Hour)); now = now.Add(7 * time.Hour) {
		got := JourneyProgressPercent(&start, &end, now)
		if got < prev {
			t.Fatalf("percent decreased at %v: %d < %d", now, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("percent out of range at %v: %d", now, got)
		}
		prev = got
	}
}

func TestPlanTimeline(t *testing.T) {
	start := date(t, "2024-01-15")
	end := date(t, "2024-04-15")
	plan := domain.PlanRecord{PlanType: domain.PlanThreeMonth, StartDate: &start, EndDate: &end, Status: domain.StatusActive}

	tl := PlanTimeline(plan, date(t, "2024-03-01"))
	if tl.DaysRemaining == nil || *tl.DaysRemaining != 45 {
		t.Errorf("DaysRemaining = %v, want 45", tl.DaysRemaining)
	}
	if tl.TotalDays == nil || *tl.TotalDays != 91 {
		t.Errorf("TotalDays = %v, want 91", tl.TotalDays)
	}
	if tl.DaysElapsed == nil || *tl.DaysElapsed != 46 {
		t.Errorf("DaysElapsed = %v, want 46", tl.DaysElapsed)
	}
	if tl.JourneyPercent != 51 {
		t.Errorf("JourneyPercent = %d, want 51", tl.JourneyPercent)
	}

	empty := PlanTimeline(domain.PlanRecord{}, time.Now())
	if empty.DaysRemaining != nil || empty.TotalDays != nil || empty.DaysElapsed != nil || empty.JourneyPercent != 0 {
		t.Errorf("expected empty timeline, got %+v", empty)
	}
}
