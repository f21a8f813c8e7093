package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/repository"
	"dietcascade/portal-api/internal/storage"
	"dietcascade/portal-api/internal/validation"
)

// DietPlanInput is a diet plan document upload (PDF, JPEG or PNG).
type DietPlanInput struct {
	PlanName string      `json:"planName" validate:"required,max=200"`
	Notes    string      `json:"notes" validate:"max=2000"`
	File     *FileUpload `json:"-" validate:"-"`
}

type DietPlanService interface {
	Upload(ctx context.Context, uploaderID, clientID primitive.ObjectID, in DietPlanInput) (*domain.DietPlan, error)
	List(ctx context.Context, clientID primitive.ObjectID) ([]domain.DietPlan, error)
	// Latest returns nil without error when the client has no plans.
	Latest(ctx context.Context, clientID primitive.ObjectID) (*domain.DietPlan, error)
	Delete(ctx context.Context, clientID, planID primitive.ObjectID) error
	DownloadURL(ctx context.Context, clientID, planID primitive.ObjectID) (string, error)
}

// dietPlanService implements the DietPlanService interface.
type dietPlanService struct {
	dietPlanRepo  repository.DietPlanRepository
	clientRepo    repository.ClientRepository
	files         storage.FileStorage
	validate      *validation.Validator
	log           *logrus.Logger
	presignExpiry time.Duration
	clock         func() time.Time
}

// NewDietPlanService creates a new instance of dietPlanService.
func NewDietPlanService(
	dietPlanRepo repository.DietPlanRepository,
	clientRepo repository.ClientRepository,
	files storage.FileStorage,
	validate *validation.Validator,
	log *logrus.Logger,
	presignExpiry time.Duration,
) DietPlanService {
	return &dietPlanService{
		dietPlanRepo:  dietPlanRepo,
		clientRepo:    clientRepo,
		files:         files,
		validate:      validate,
		log:           log,
		presignExpiry: presignExpiry,
		clock:         time.Now,
	}
}

// Upload stores the document and then its metadata; the document is removed
// again if the metadata cannot be written.
func (s *dietPlanService) Upload(ctx context.Context, uploaderID, clientID primitive.ObjectID, in DietPlanInput) (*domain.DietPlan, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if in.File == nil {
		return nil, newValidationError("file", "file is required")
	}
	file, err := readUpload("file", in.File, MaxDietPlanSize, isDietPlanDocument, "Only PDF, JPEG or PNG files allowed")
	if err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, storeError("get client", err)
	}

	key, url, err := putFile(ctx, s.files, clientID.Hex(), s.clock(), file)
	if err != nil {
		return nil, err
	}

	plan := &domain.DietPlan{
		ClientID:   clientID,
		PlanName:   strings.TrimSpace(in.PlanName),
		FileURL:    url,
		Notes:      strings.TrimSpace(in.Notes),
		UploadedBy: uploaderID,
	}
	id, err := s.dietPlanRepo.Create(ctx, plan)
	if err != nil {
		releaseObject(ctx, s.files, s.log, key, "diet plan insert failed")
		return nil, storeError("create diet plan", err)
	}
	plan.ID = id

	s.log.WithFields(logrus.Fields{"clientId": clientID.Hex(), "planId": id.Hex()}).Info("Diet plan uploaded")
	return plan, nil
}

// List returns the client's plans, newest first.
func (s *dietPlanService) List(ctx context.Context, clientID primitive.ObjectID) ([]domain.DietPlan, error) {
	plans, err := s.dietPlanRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeError("list diet plans", err)
	}
	return plans, nil
}

func (s *dietPlanService) Latest(ctx context.Context, clientID primitive.ObjectID) (*domain.DietPlan, error) {
	plan, err := s.dietPlanRepo.Latest(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("latest diet plan", err)
	}
	return plan, nil
}

func (s *dietPlanService) loadOwned(ctx context.Context, clientID, planID primitive.ObjectID) (*domain.DietPlan, error) {
	plan, err := s.dietPlanRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDietPlanNotFound
		}
		return nil, storeError("get diet plan", err)
	}
	if plan.ClientID != clientID {
		return nil, ErrAccessDenied
	}
	return plan, nil
}

// Delete removes the metadata and then, best effort, the document.
func (s *dietPlanService) Delete(ctx context.Context, clientID, planID primitive.ObjectID) error {
	plan, err := s.loadOwned(ctx, clientID, planID)
	if err != nil {
		return err
	}
	if err := s.dietPlanRepo.Delete(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDietPlanNotFound
		}
		return storeError("delete diet plan", err)
	}
	if plan.FileURL != "" {
		releaseObjectByURL(ctx, s.files, s.log, plan.FileURL, "diet plan deleted")
	}
	return nil
}

// DownloadURL returns a short-lived presigned GET URL for the document.
func (s *dietPlanService) DownloadURL(ctx context.Context, clientID, planID primitive.ObjectID) (string, error) {
	plan, err := s.loadOwned(ctx, clientID, planID)
	if err != nil {
		return "", err
	}
	key, err := storage.KeyFromURL(plan.FileURL)
	if err != nil {
		return "", storeError("resolve diet plan file", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.presignExpiry)
	if err != nil {
		return "", storeError("presign diet plan download", err)
	}
	return url, nil
}
