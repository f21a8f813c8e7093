package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/lifecycle"
	"dietcascade/portal-api/internal/repository"
	"dietcascade/portal-api/internal/validation"
)

// OnboardClientInput creates a login account and a client record in one step.
type OnboardClientInput struct {
	FullName      string `json:"fullName" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Phone         string `json:"phone" validate:"max=40"`
	Instagram     string `json:"instagram" validate:"max=100"`
	InitialGoals  string `json:"initialGoals" validate:"max=4000"`
	PlanType      string `json:"assignedPlanType" validate:"required"`
	PlanStartDate string `json:"planStartDate" validate:"required,datetime=2006-01-02"`
	Status        string `json:"status" validate:"omitempty,oneof=active paused completed inactive pending"`
}

// UpdateClientInput edits the client profile. Nil fields are left unchanged.
type UpdateClientInput struct {
	FullName     *string `json:"fullName" validate:"omitempty,min=1,max=200"`
	Phone        *string `json:"phone" validate:"omitempty,max=40"`
	Instagram    *string `json:"instagram" validate:"omitempty,max=100"`
	InitialGoals *string `json:"initialGoals" validate:"omitempty,max=4000"`
}

// ClientOverview is a client with its plan figures as of the request time.
type ClientOverview struct {
	Client   domain.Client      `json:"client"`
	Timeline lifecycle.Timeline `json:"timeline"`
}

// ClientDirectory is the admin client list.
type ClientDirectory struct {
	Clients []ClientOverview        `json:"clients"`
	Counts  repository.ClientCounts `json:"counts"`
}

type ClientService interface {
	Onboard(ctx context.Context, in OnboardClientInput) (*domain.Client, error)
	List(ctx context.Context, search, status string) (*ClientDirectory, error)
	Get(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error)
	Update(ctx context.Context, clientID primitive.ObjectID, in UpdateClientInput) (*domain.Client, error)

	// Plan record
	AssignPlan(ctx context.Context, clientID primitive.ObjectID, planType, startDate string) (*domain.PlanRecord, error)
	UpdateStatus(ctx context.Context, clientID primitive.ObjectID, status string) (*domain.PlanRecord, error)
	GetPlan(ctx context.Context, clientID primitive.ObjectID) (*domain.PlanRecord, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
	authService AuthService
	validate    *validation.Validator
	log         *logrus.Logger
	clock       func() time.Time
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	authService AuthService,
	validate *validation.Validator,
	log *logrus.Logger,
) ClientService {
	return &clientService{
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		authService: authService,
		validate:    validate,
		log:         log,
		clock:       time.Now,
	}
}

// parsePlan validates the plan type and start date of a plan assignment.
func parsePlan(planType, startDate string) (domain.PlanType, time.Time, error) {
	pt, ok := domain.ParsePlanType(planType)
	if !ok {
		return "", time.Time{}, newValidationError("assignedPlanType", "assignedPlanType must be one of: 1 Month Plan, 3 Month Plan, 6 Month Plan")
	}
	start, err := lifecycle.ParseDate(startDate)
	if err != nil {
		return "", time.Time{}, newValidationError("planStartDate", "planStartDate must be a date in YYYY-MM-DD format")
	}
	return pt, start, nil
}

// Onboard creates the client's login user and then the client record. If the
// record cannot be written the new user is removed again.
func (s *clientService) Onboard(ctx context.Context, in OnboardClientInput) (*domain.Client, error) {
	// 1. Basic Input Validation
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	planType, start, err := parsePlan(in.PlanType, in.PlanStartDate)
	if err != nil {
		return nil, err
	}
	status := domain.StatusActive
	if in.Status != "" {
		status = domain.ClientStatus(in.Status)
	}

	// 2. Create the login account (role client)
	user, err := s.authService.Register(ctx, strings.TrimSpace(in.FullName), in.Email, in.Password, domain.RoleClient)
	if err != nil {
		return nil, err
	}

	// 3. Build the client record; the end date is derived once, here
	end := lifecycle.ComputeEndDate(start, planType)
	client := &domain.Client{
		UserID:        user.ID,
		FullName:      strings.TrimSpace(in.FullName),
		Phone:         strings.TrimSpace(in.Phone),
		Instagram:     strings.TrimPrefix(strings.TrimSpace(in.Instagram), "@"),
		InitialGoals:  strings.TrimSpace(in.InitialGoals),
		PlanType:      planType,
		PlanStartDate: &start,
		PlanEndDate:   &end,
		Status:        status,
	}

	// 4. Save the client; if that fails, remove the account created in step 2
	clientID, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		if delErr := s.userRepo.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			s.log.WithField("userId", user.ID.Hex()).Warnf("Failed to remove user after client insert failure: %+v", delErr)
		}
		return nil, storeError("create client", err)
	}
	client.ID = clientID

	s.log.WithFields(logrus.Fields{"clientId": clientID.Hex(), "planType": planType}).Info("Client onboarded")
	return client, nil
}

// List returns the directory ordered newest first together with the status counts.
func (s *clientService) List(ctx context.Context, search, status string) (*ClientDirectory, error) {
	filter := repository.ClientFilter{Search: strings.TrimSpace(search)}
	if status != "" && status != "all" {
		st := domain.ClientStatus(status)
		if !st.Valid() {
			return nil, newValidationError("status", "status must be one of: active, paused, completed, inactive, pending")
		}
		filter.Status = st
	}

	clients, err := s.clientRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list clients", err)
	}
	counts, err := s.clientRepo.Counts(ctx)
	if err != nil {
		return nil, storeError("count clients", err)
	}

	now := s.clock()
	dir := &ClientDirectory{Clients: make([]ClientOverview, 0, len(clients)), Counts: *counts}
	for _, c := range clients {
		dir.Clients = append(dir.Clients, ClientOverview{
			Client:   c,
			Timeline: lifecycle.PlanTimeline(c.Plan(), now),
		})
	}
	return dir, nil
}

func (s *clientService) getClient(ctx context.Context, get func() (*domain.Client, error)) (*domain.Client, error) {
	client, err := get()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, storeError("get client", err)
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, error) {
	return s.getClient(ctx, func() (*domain.Client, error) { return s.clientRepo.GetByID(ctx, clientID) })
}

// GetByUserID resolves the client record of a logged in client user.
func (s *clientService) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error) {
	return s.getClient(ctx, func() (*domain.Client, error) { return s.clientRepo.GetByUserID(ctx, userID) })
}

func (s *clientService) Update(ctx context.Context, clientID primitive.ObjectID, in UpdateClientInput) (*domain.Client, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	update := repository.ClientUpdate{
		FullName:     trimPtr(in.FullName),
		Phone:        trimPtr(in.Phone),
		Instagram:    trimPtr(in.Instagram),
		InitialGoals: trimPtr(in.InitialGoals),
	}
	if update.Instagram != nil {
		handle := strings.TrimPrefix(*update.Instagram, "@")
		update.Instagram = &handle
	}

	if err := s.clientRepo.Update(ctx, clientID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, storeError("update client", err)
	}
	return s.Get(ctx, clientID)
}

// AssignPlan computes the end date once from the start date and plan type and stores the range.
func (s *clientService) AssignPlan(ctx context.Context, clientID primitive.ObjectID, planType, startDate string) (*domain.PlanRecord, error) {
	pt, start, err := parsePlan(planType, startDate)
	if err != nil {
		return nil, err
	}
	end := lifecycle.ComputeEndDate(start, pt)

	plan := domain.PlanRecord{ClientID: clientID, PlanType: pt, StartDate: &start, EndDate: &end}
	if err := s.clientRepo.UpdatePlan(ctx, clientID, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, storeError("assign plan", err)
	}
	return s.GetPlan(ctx, clientID)
}

// UpdateStatus accepts any known status regardless of the current one.
func (s *clientService) UpdateStatus(ctx context.Context, clientID primitive.ObjectID, status string) (*domain.PlanRecord, error) {
	st := domain.ClientStatus(status)
	if !st.Valid() {
		return nil, newValidationError("status", "status must be one of: active, paused, completed, inactive, pending")
	}
	if err := s.clientRepo.UpdateStatus(ctx, clientID, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, storeError("update status", err)
	}
	return s.GetPlan(ctx, clientID)
}

func (s *clientService) GetPlan(ctx context.Context, clientID primitive.ObjectID) (*domain.PlanRecord, error) {
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	plan := client.Plan()
	return &plan, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
