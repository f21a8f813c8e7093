package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/analytics"
	"dietcascade/portal-api/internal/cache"
	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/lifecycle"
	"dietcascade/portal-api/internal/repository"
	"dietcascade/portal-api/internal/storage"
	"dietcascade/portal-api/internal/validation"
)

const emptyEntryMessage = "Please enter at least one measurement, photo, or note"

// ProgressInput is a new progress entry. Measurements out of range are
// rejected, never clamped.
type ProgressInput struct {
	Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg *float64    `json:"weight_kg" validate:"omitempty,gte=20,lte=300"`
	ChestCm  *float64    `json:"chest_cm" validate:"omitempty,gte=50,lte=200"`
	WaistCm  *float64    `json:"waist_cm" validate:"omitempty,gte=40,lte=200"`
	HipsCm   *float64    `json:"hips_cm" validate:"omitempty,gte=50,lte=200"`
	Notes    string      `json:"notes" validate:"max=2000"`
	Photo    *FileUpload `json:"-" validate:"-"`
}

// ProgressPatch edits an entry. Nil fields are left unchanged; Clear removes
// measurements and may not name a measurement the patch also sets;
// RemovePhoto drops the photo unless a new Photo replaces it.
type ProgressPatch struct {
	Date        *string         `json:"date" validate:"omitempty,datetime=2006-01-02"`
	WeightKg    *float64        `json:"weight_kg" validate:"omitempty,gte=20,lte=300"`
	ChestCm     *float64        `json:"chest_cm" validate:"omitempty,gte=50,lte=200"`
	WaistCm     *float64        `json:"waist_cm" validate:"omitempty,gte=40,lte=200"`
	HipsCm      *float64        `json:"hips_cm" validate:"omitempty,gte=50,lte=200"`
	Notes       *string         `json:"notes" validate:"omitempty,max=2000"`
	Clear       []domain.Metric `json:"clear" validate:"dive,oneof=weight_kg chest_cm waist_cm hips_cm"`
	RemovePhoto bool            `json:"remove_photo"`
	Photo       *FileUpload     `json:"-" validate:"-"`
}

// values maps each metric to the value the patch sets, nil when untouched.
func (p *ProgressPatch) values() map[domain.Metric]*float64 {
	return map[domain.Metric]*float64{
		domain.MetricWeight: p.WeightKg,
		domain.MetricChest:  p.ChestCm,
		domain.MetricWaist:  p.WaistCm,
		domain.MetricHips:   p.HipsCm,
	}
}

// ProgressHistory is the client history page: entries, per-metric stats and chart data.
type ProgressHistory struct {
	Entries []domain.ProgressEntry `json:"entries"`
	Stats   analytics.Summary      `json:"stats"`
	Chart   analytics.Chart        `json:"chart"`
}

type ProgressService interface {
	Create(ctx context.Context, clientID primitive.ObjectID, in ProgressInput) (*domain.ProgressEntry, error)
	Update(ctx context.Context, clientID, entryID primitive.ObjectID, patch ProgressPatch) (*domain.ProgressEntry, error)
	Delete(ctx context.Context, clientID, entryID primitive.ObjectID) error
	List(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error)
	History(ctx context.Context, clientID primitive.ObjectID, metrics []domain.Metric) (*ProgressHistory, error)
}

// progressService implements the ProgressService interface.
type progressService struct {
	progressRepo repository.ProgressRepository
	photos       storage.FileStorage
	cache        cache.ProgressCache
	validate     *validation.Validator
	log          *logrus.Logger
	clock        func() time.Time
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	photos storage.FileStorage,
	progressCache cache.ProgressCache,
	validate *validation.Validator,
	log *logrus.Logger,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		photos:       photos,
		cache:        progressCache,
		validate:     validate,
		log:          log,
		clock:        time.Now,
	}
}

func (s *progressService) readPhoto(photo *FileUpload) (*sniffedFile, error) {
	if photo == nil {
		return nil, nil
	}
	return readUpload("photo", photo, MaxPhotoSize, isImage, "Only image files allowed")
}

// Create validates the entry, uploads the photo and then writes the record.
// If the record write fails the photo is deleted again.
func (s *progressService) Create(ctx context.Context, clientID primitive.ObjectID, in ProgressInput) (*domain.ProgressEntry, error) {
	// 1. Input validation (ranges, date format)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	date, err := lifecycle.ParseDate(in.Date)
	if err != nil {
		return nil, newValidationError("date", "date must be a date in YYYY-MM-DD format")
	}

	// 2. Build the entry; ID and timestamps are set by the repository layer
	entry := &domain.ProgressEntry{
		ClientID: clientID,
		Date:     date,
		WeightKg: in.WeightKg,
		ChestCm:  in.ChestCm,
		WaistCm:  in.WaistCm,
		HipsCm:   in.HipsCm,
		Notes:    strings.TrimSpace(in.Notes),
	}
	if !entry.HasContent() && in.Photo == nil {
		return nil, newValidationError("entry", emptyEntryMessage)
	}

	// 3. Check and upload the photo first
	photo, err := s.readPhoto(in.Photo)
	if err != nil {
		return nil, err
	}

	var photoKey string
	if photo != nil {
		photoKey, entry.PhotoURL, err = putFile(ctx, s.photos, clientID.Hex(), s.clock(), photo)
		if err != nil {
			return nil, err
		}
	}

	// 4. Save the record; a failed insert releases the uploaded photo
	id, err := s.progressRepo.Create(ctx, entry)
	if err != nil {
		if photoKey != "" {
			releaseObject(ctx, s.photos, s.log, photoKey, "progress entry insert failed")
		}
		return nil, storeError("create progress entry", err)
	}
	entry.ID = id

	s.invalidate(ctx, clientID)
	return entry, nil
}

// loadOwned fetches an entry and checks that it belongs to clientID.
func (s *progressService) loadOwned(ctx context.Context, clientID, entryID primitive.ObjectID) (*domain.ProgressEntry, error) {
	entry, err := s.progressRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, storeError("get progress entry", err)
	}
	if entry.ClientID != clientID {
		return nil, ErrAccessDenied
	}
	return entry, nil
}

// Update merges patch into the stored entry. A replaced or removed photo is
// released only after the record write succeeded.
func (s *progressService) Update(ctx context.Context, clientID, entryID primitive.ObjectID, patch ProgressPatch) (*domain.ProgressEntry, error) {
	// 1. Input validation, before any store is touched
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	values := patch.values()
	for _, m := range patch.Clear {
		if values[m] != nil {
			return nil, newValidationError(string(m), fmt.Sprintf("%s cannot be set and cleared in the same edit", m))
		}
	}

	// 2. Load the entry and check ownership
	existing, err := s.loadOwned(ctx, clientID, entryID)
	if err != nil {
		return nil, err
	}

	// 3. Merge the patch into a copy of the stored entry
	merged := *existing
	if patch.Date != nil {
		date, err := lifecycle.ParseDate(*patch.Date)
		if err != nil {
			return nil, newValidationError("date", "date must be a date in YYYY-MM-DD format")
		}
		merged.Date = date
	}
	for m, v := range values {
		if v != nil {
			merged.SetValue(m, v)
		}
	}
	for _, m := range patch.Clear {
		merged.SetValue(m, nil)
	}
	if patch.Notes != nil {
		merged.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.RemovePhoto {
		merged.PhotoURL = ""
	}

	// The merged entry must still carry something
	if !merged.HasContent() && patch.Photo == nil {
		return nil, newValidationError("entry", emptyEntryMessage)
	}

	// 4. Upload the replacement photo, if any
	photo, err := s.readPhoto(patch.Photo)
	if err != nil {
		return nil, err
	}

	var newKey string
	if photo != nil {
		newKey, merged.PhotoURL, err = putFile(ctx, s.photos, clientID.Hex(), s.clock(), photo)
		if err != nil {
			return nil, err
		}
	}

	// 5. Persist; on failure the new photo is released again
	if err := s.progressRepo.Update(ctx, &merged); err != nil {
		if newKey != "" {
			releaseObject(ctx, s.photos, s.log, newKey, "progress entry update failed")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, storeError("update progress entry", err)
	}

	// 6. Only now drop the old photo (replaced or removed)
	if existing.PhotoURL != "" && existing.PhotoURL != merged.PhotoURL {
		releaseObjectByURL(ctx, s.photos, s.log, existing.PhotoURL, "progress photo replaced")
	}

	s.invalidate(ctx, clientID)
	return &merged, nil
}

// Delete removes the record first and then makes exactly one attempt to
// delete its photo. A failed photo delete is logged, not returned.
func (s *progressService) Delete(ctx context.Context, clientID, entryID primitive.ObjectID) error {
	entry, err := s.loadOwned(ctx, clientID, entryID)
	if err != nil {
		return err
	}

	if err := s.progressRepo.Delete(ctx, entryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgressNotFound
		}
		return storeError("delete progress entry", err)
	}

	if entry.PhotoURL != "" {
		releaseObjectByURL(ctx, s.photos, s.log, entry.PhotoURL, "progress entry deleted")
	}

	s.invalidate(ctx, clientID)
	return nil
}

// List returns the client's entries in chronological order, served from the
// history cache when possible.
func (s *progressService) List(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	key := clientID.Hex()

	entries, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warnf("Failed to read progress cache for client %s: %+v", key, err)
	}
	if ok {
		return entries, nil
	}

	// Taken before the store read; a write in between makes the fill a no-op.
	gen, genErr := s.cache.Generation(ctx, key)
	if genErr != nil {
		s.log.Warnf("Failed to read progress cache generation for client %s: %+v", key, genErr)
	}

	entries, err = s.progressRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeError("list progress entries", err)
	}
	entries = analytics.SortEntries(entries)

	if genErr == nil {
		if _, err := s.cache.SetIfUnchanged(ctx, key, gen, entries); err != nil {
			s.log.Warnf("Failed to write progress cache for client %s: %+v", key, err)
		}
	}
	return entries, nil
}

// defaultChartMetrics are charted when the caller picks none.
var defaultChartMetrics = []domain.Metric{domain.MetricWeight}

// History builds the history page. Stats always cover every metric; the
// chart shows the requested metrics, weight only when none are given.
func (s *progressService) History(ctx context.Context, clientID primitive.ObjectID, metrics []domain.Metric) (*ProgressHistory, error) {
	for _, m := range metrics {
		if !m.Valid() {
			return nil, newValidationError("metrics", "metrics must be any of: weight_kg, chest_cm, waist_cm, hips_cm")
		}
	}
	if len(metrics) == 0 {
		metrics = defaultChartMetrics
	}

	entries, err := s.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &ProgressHistory{
		Entries: entries,
		Stats:   analytics.Summarize(entries),
		Chart:   analytics.ChartSeries(entries, metrics),
	}, nil
}

func (s *progressService) invalidate(ctx context.Context, clientID primitive.ObjectID) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), clientID.Hex()); err != nil {
		s.log.Warnf("Failed to invalidate progress cache for client %s: %+v", clientID.Hex(), err)
	}
}
