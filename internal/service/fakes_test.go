package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/repository"
	"dietcascade/portal-api/internal/validation"
)

var errBoom = errors.New("boom")

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	textBytes = []byte("just some notes, not an image")
)

func upload(name string, data []byte) *FileUpload {
	return &FileUpload{Filename: name, Content: bytes.NewReader(data)}
}

func f64(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func newTestLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	return log, hook
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// --- storage ---

type fakeStorage struct {
	mu        sync.Mutex
	bucket    string
	objects   map[string][]byte
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func newFakeStorage(bucket string) *fakeStorage {
	return &fakeStorage{bucket: bucket, objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, key)
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://files.test/" + s.bucket + "/" + key
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://files.test/" + s.bucket + "/" + key + "?expires=" + expires.String(), nil
}

// --- cache ---

type fakeCache struct {
	data        map[string][]domain.ProgressEntry
	generations map[string]int64
	invalidated []string
	skipped     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]domain.ProgressEntry{}, generations: map[string]int64{}}
}

func (c *fakeCache) Get(_ context.Context, id string) ([]domain.ProgressEntry, bool, error) {
	e, ok := c.data[id]
	return e, ok, nil
}

func (c *fakeCache) Generation(_ context.Context, id string) (int64, error) {
	return c.generations[id], nil
}

func (c *fakeCache) SetIfUnchanged(_ context.Context, id string, gen int64, entries []domain.ProgressEntry) (bool, error) {
	if c.generations[id] != gen {
		c.skipped++
		return false, nil
	}
	c.data[id] = entries
	return true, nil
}

func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	c.generations[id]++
	delete(c.data, id)
	return nil
}

// --- progress repository ---

type fakeProgressRepo struct {
	entries   map[primitive.ObjectID]domain.ProgressEntry
	afterList func() // Runs once the list has been read, before it is returned
	calls     []string
	createErr error
	updateErr error
	deleteErr error
	seq       int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{entries: map[primitive.ObjectID]domain.ProgressEntry{}}
}

func (r *fakeProgressRepo) Create(_ context.Context, e *domain.ProgressEntry) (primitive.ObjectID, error) {
	r.calls = append(r.calls, "create")
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	r.seq++
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Date(2024, 1, 1, 0, 0, r.seq, 0, time.UTC)
	r.entries[e.ID] = *e
	return e.ID, nil
}

func (r *fakeProgressRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error) {
	r.calls = append(r.calls, "get")
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *fakeProgressRepo) Update(_ context.Context, e *domain.ProgressEntry) error {
	r.calls = append(r.calls, "update")
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.entries[e.ID]; !ok {
		return repository.ErrNotFound
	}
	r.entries[e.ID] = *e
	return nil
}

func (r *fakeProgressRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.calls = append(r.calls, "delete")
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeProgressRepo) sorted(clientID primitive.ObjectID) []domain.ProgressEntry {
	out := []domain.ProgressEntry{}
	for _, e := range r.entries {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *fakeProgressRepo) ListByClient(_ context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	r.calls = append(r.calls, "list")
	out := r.sorted(clientID)
	if r.afterList != nil {
		hook := r.afterList
		r.afterList = nil
		hook()
	}
	return out, nil
}

func (r *fakeProgressRepo) Latest(_ context.Context, clientID primitive.ObjectID) (*domain.ProgressEntry, error) {
	all := r.sorted(clientID)
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	return &all[len(all)-1], nil
}

func (r *fakeProgressRepo) CountByClient(_ context.Context, clientID primitive.ObjectID) (int64, error) {
	return int64(len(r.sorted(clientID))), nil
}

func (r *fakeProgressRepo) seed(e domain.ProgressEntry) domain.ProgressEntry {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.entries[e.ID] = e
	return e
}

// --- user repository ---

type fakeUserRepo struct {
	users   map[primitive.ObjectID]domain.User
	deleted []primitive.ObjectID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = *u
	return u.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.deleted = append(r.deleted, id)
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// --- client repository ---

type fakeClientRepo struct {
	clients   map[primitive.ObjectID]domain.Client
	createErr error
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[primitive.ObjectID]domain.Client{}}
}

func (r *fakeClientRepo) Create(_ context.Context, c *domain.Client) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	r.clients[c.ID] = *c
	return c.ID, nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeClientRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeClientRepo) List(_ context.Context, f repository.ClientFilter) ([]domain.Client, error) {
	out := []domain.Client{}
	for _, c := range r.clients {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.FullName+" "+c.Phone+" "+c.Instagram), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeClientRepo) Counts(_ context.Context) (*repository.ClientCounts, error) {
	counts := &repository.ClientCounts{}
	for _, c := range r.clients {
		counts.Total++
		switch c.Status {
		case domain.StatusActive:
			counts.Active++
		case domain.StatusCompleted:
			counts.Completed++
		case domain.StatusPaused:
			counts.Paused++
		}
	}
	return counts, nil
}

func (r *fakeClientRepo) Update(_ context.Context, id primitive.ObjectID, u repository.ClientUpdate) error {
	c, ok := r.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.FullName != nil {
		c.FullName = *u.FullName
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Instagram != nil {
		c.Instagram = *u.Instagram
	}
	if u.InitialGoals != nil {
		c.InitialGoals = *u.InitialGoals
	}
	r.clients[id] = c
	return nil
}

func (r *fakeClientRepo) UpdatePlan(_ context.Context, id primitive.ObjectID, p domain.PlanRecord) error {
	c, ok := r.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.PlanType, c.PlanStartDate, c.PlanEndDate = p.PlanType, p.StartDate, p.EndDate
	r.clients[id] = c
	return nil
}

func (r *fakeClientRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, st domain.ClientStatus) error {
	c, ok := r.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = st
	r.clients[id] = c
	return nil
}

func (r *fakeClientRepo) seed(c domain.Client) domain.Client {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	r.clients[c.ID] = c
	return c
}

// --- diet plan repository ---

type fakeDietPlanRepo struct {
	plans     map[primitive.ObjectID]domain.DietPlan
	createErr error
	seq       int
}

func newFakeDietPlanRepo() *fakeDietPlanRepo {
	return &fakeDietPlanRepo{plans: map[primitive.ObjectID]domain.DietPlan{}}
}

func (r *fakeDietPlanRepo) Create(_ context.Context, p *domain.DietPlan) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	r.seq++
	p.ID = primitive.NewObjectID()
	p.UploadedAt = time.Date(2024, 1, 1, 0, 0, r.seq, 0, time.UTC)
	r.plans[p.ID] = *p
	return p.ID, nil
}

func (r *fakeDietPlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.DietPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakeDietPlanRepo) ListByClient(_ context.Context, clientID primitive.ObjectID) ([]domain.DietPlan, error) {
	out := []domain.DietPlan{}
	for _, p := range r.plans {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *fakeDietPlanRepo) Latest(ctx context.Context, clientID primitive.ObjectID) (*domain.DietPlan, error) {
	all, _ := r.ListByClient(ctx, clientID)
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	return &all[0], nil
}

func (r *fakeDietPlanRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

// --- wiring ---

type progressFixture struct {
	svc    *progressService
	repo   *fakeProgressRepo
	photos *fakeStorage
	cache  *fakeCache
	hook   *test.Hook
}

func newProgressFixture() *progressFixture {
	log, hook := newTestLogger()
	repo := newFakeProgressRepo()
	photos := newFakeStorage("progress-photos")
	c := newFakeCache()
	svc := NewProgressService(repo, photos, c, validation.New(), log).(*progressService)
	svc.clock = fixedClock(time.UnixMilli(1704067200000))
	return &progressFixture{svc: svc, repo: repo, photos: photos, cache: c, hook: hook}
}
