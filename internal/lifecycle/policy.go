// Package lifecycle holds the plan-lifecycle rules: end-date computation and
// the day-based figures derived from a plan's date range. Everything here is
// a pure function of its inputs.
package lifecycle

import (
	"math"
	"time"

	"dietcascade/portal-api/internal/domain"
)

const day = 24 * time.Hour

// ComputeEndDate adds the plan's number of calendar months to start.
// A start day that does not exist in the target month is clamped to that
// month's last day (Jan 31 + 1 month = Feb 28 or 29).
func ComputeEndDate(start time.Time, planType domain.PlanType) time.Time {
	return AddMonths(start, planType.Months())
}

// AddMonths adds n calendar months to t, clamping the day to the end of the
// target month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(firstOfTarget); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// ceilDays converts d into whole days, rounding up.
func ceilDays(d time.Duration) int {
	q := d / day
	if d%day > 0 {
		q++
	}
	return int(q)
}

// DaysRemaining returns max(0, ceil((end - now) / 1 day)), or nil when the
// plan has no end date.
func DaysRemaining(end *time.Time, now time.Time) *int {
	if end == nil {
		return nil
	}
	n := ceilDays(end.Sub(now))
	if n < 0 {
		n = 0
	}
	return &n
}

// DaysElapsed returns max(0, ceil((now - start) / 1 day)).
func DaysElapsed(start, now time.Time) int {
	n := ceilDays(now.Sub(start))
	if n < 0 {
		return 0
	}
	return n
}

// TotalDays returns ceil((end - start) / 1 day).
func TotalDays(start, end time.Time) int {
	return ceilDays(end.Sub(start))
}

// JourneyProgressPercent is the share of the plan duration already elapsed,
// rounded to a whole percent and clamped to [0, 100]. It is 0 when either date
// is missing or the plan has no positive length.
func JourneyProgressPercent(start, end *time.Time, now time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	total := TotalDays(*start, *end)
	if total <= 0 {
		return 0
	}
	elapsed := ceilDays(now.Sub(*start))
	pct := int(math.Round(float64(elapsed) * 100 / float64(total)))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Timeline bundles the day-based figures shown on dashboards.
type Timeline struct {
	DaysRemaining  *int `json:"daysRemaining"`
	TotalDays      *int `json:"totalDays"`
	DaysElapsed    *int `json:"daysElapsed"`
	JourneyPercent int  `json:"journeyPercent"`
}

// PlanTimeline computes the Timeline of plan at now.
func PlanTimeline(plan domain.PlanRecord, now time.Time) Timeline {
	t := Timeline{
		DaysRemaining:  DaysRemaining(plan.EndDate, now),
		JourneyPercent: JourneyProgressPercent(plan.StartDate, plan.EndDate, now),
	}
	if plan.StartDate != nil {
		elapsed := DaysElapsed(*plan.StartDate, now)
		t.DaysElapsed = &elapsed
		if plan.EndDate != nil {
			total := TotalDays(*plan.StartDate, *plan.EndDate)
			t.TotalDays = &total
		}
	}
	return t
}
