package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/analytics"
	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/lifecycle"
	"dietcascade/portal-api/internal/repository"
)

// Dashboard is the client portal landing summary.
type Dashboard struct {
	Client         domain.Client         `json:"client"`
	Timeline       lifecycle.Timeline    `json:"timeline"`
	LatestEntry    *domain.ProgressEntry `json:"latestEntry"`
	EntryCount     int64                 `json:"entryCount"`
	LatestDietPlan *domain.DietPlan      `json:"latestDietPlan"`
}

// ClientDetail is the admin view of one client.
type ClientDetail struct {
	Client    domain.Client          `json:"client"`
	Timeline  lifecycle.Timeline     `json:"timeline"`
	DietPlans []domain.DietPlan      `json:"dietPlans"`
	Progress  []domain.ProgressEntry `json:"progress"`
	Stats     analytics.Summary      `json:"stats"`
}

type OverviewService interface {
	Dashboard(ctx context.Context, clientID primitive.ObjectID) (*Dashboard, error)
	ClientDetail(ctx context.Context, clientID primitive.ObjectID) (*ClientDetail, error)
}

type overviewService struct {
	clientService   ClientService
	progressService ProgressService
	dietPlanService DietPlanService
	progressRepo    repository.ProgressRepository
	clock           func() time.Time
}

func NewOverviewService(
	clientService ClientService,
	progressService ProgressService,
	dietPlanService DietPlanService,
	progressRepo repository.ProgressRepository,
) OverviewService {
	return &overviewService{
		clientService:   clientService,
		progressService: progressService,
		dietPlanService: dietPlanService,
		progressRepo:    progressRepo,
		clock:           time.Now,
	}
}

// Dashboard reads the latest entry and the exact entry count straight from
// the store rather than loading the whole history.
func (s *overviewService) Dashboard(ctx context.Context, clientID primitive.ObjectID) (*Dashboard, error) {
	client, err := s.clientService.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Client:   *client,
		Timeline: lifecycle.PlanTimeline(client.Plan(), s.clock()),
	}

	latest, err := s.progressRepo.Latest(ctx, clientID)
	switch {
	case err == nil:
		dash.LatestEntry = latest
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeError("latest progress entry", err)
	}

	if dash.EntryCount, err = s.progressRepo.CountByClient(ctx, clientID); err != nil {
		return nil, storeError("count progress entries", err)
	}

	if dash.LatestDietPlan, err = s.dietPlanService.Latest(ctx, clientID); err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *overviewService) ClientDetail(ctx context.Context, clientID primitive.ObjectID) (*ClientDetail, error) {
	client, err := s.clientService.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	plans, err := s.dietPlanService.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	entries, err := s.progressService.List(ctx, clientID)
	if err != nil {
		return nil, err
	}

	return &ClientDetail{
		Client:    *client,
		Timeline:  lifecycle.PlanTimeline(client.Plan(), s.clock()),
		DietPlans: plans,
		Progress:  entries,
		Stats:     analytics.Summarize(entries),
	}, nil
}
