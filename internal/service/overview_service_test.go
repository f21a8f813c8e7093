package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/validation"
)

func TestDashboardAndDetail(t *testing.T) {
	log, _ := newTestLogger()
	clients := newFakeClientRepo()
	users := newFakeUserRepo()
	progress := newFakeProgressRepo()
	plans := newFakeDietPlanRepo()
	v := validation.New()

	clientSvc := NewClientService(clients, users, NewAuthService(users, log, "s", time.Hour), v, log)
	progressSvc := NewProgressService(progress, newFakeStorage("progress-photos"), newFakeCache(), v, log)
	planSvc := NewDietPlanService(plans, clients, newFakeStorage("diet-plans"), v, log, time.Minute)
	svc := NewOverviewService(clientSvc, progressSvc, planSvc, progress).(*overviewService)
	svc.clock = fixedClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	c := clients.seed(domain.Client{FullName: "Jane", PlanType: domain.PlanThreeMonth, PlanStartDate: &start, PlanEndDate: &end, Status: domain.StatusActive})
	ctx := context.Background()

	dash, err := svc.Dashboard(ctx, c.ID)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.LatestEntry != nil || dash.EntryCount != 0 || dash.LatestDietPlan != nil {
		t.Errorf("expected empty dashboard, got %+v", dash)
	}
	if *dash.Timeline.DaysElapsed != 46 || *dash.Timeline.TotalDays != 91 || dash.Timeline.JourneyPercent != 51 {
		t.Errorf("timeline = %+v", dash.Timeline)
	}

	for _, in := range []ProgressInput{
		{Date: "2024-02-01", WeightKg: f64(76)},
		{Date: "2024-01-01", WeightKg: f64(80)},
	} {
		if _, err := progressSvc.Create(ctx, c.ID, in); err != nil {
			t.Fatal(err)
		}
	}

	dash, err = svc.Dashboard(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if dash.EntryCount != 2 || dash.LatestEntry == nil || *dash.LatestEntry.WeightKg != 76 {
		t.Errorf("latest entry should be the one dated last, got %+v", dash.LatestEntry)
	}

	detail, err := svc.ClientDetail(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Progress) != 2 || detail.Stats[domain.MetricWeight].Diff != -4 {
		t.Errorf("unexpected detail %+v", detail)
	}

	if _, err := svc.Dashboard(ctx, primitive.NewObjectID()); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}
