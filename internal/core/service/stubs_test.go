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

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	byID      map[string]*domain.Identity
	createErr error
	deleteErr error
	deleted   []string
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byID: make(map[string]*domain.Identity)}
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == identity.Email {
			return nil, domain.ErrIdentityExists
		}
	}
	clone := *identity
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	clone := *i
	return &clone, nil
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	for _, i := range r.byID {
		if i.Email == email {
			clone := *i
			return &clone, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) UpdateEmail(_ context.Context, id, email string) error {
	i, ok := r.byID[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.Email = email
	return nil
}

func (r *stubIdentityRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrIdentityNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubProfileRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Profile
	findErr   error // returned by FindByID when set
	insertErr error // returned by Insert when set
	inserts   int
	// onInsert runs before Insert stores the row, to simulate a concurrent
	// writer.
	onInsert func(p *domain.Profile)
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{byID: make(map[string]*domain.Profile)}
}

func (r *stubProfileRepo) put(p domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = &p
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) Insert(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	r.mu.Lock()
	r.inserts++
	hook := r.onInsert
	r.mu.Unlock()
	if hook != nil {
		hook(p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	if _, ok := r.byID[p.ID]; ok {
		return nil, domain.ErrProfileExists
	}
	clone := *p
	r.byID[p.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProfileRepo) List(_ context.Context) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Profile, 0, len(r.byID))
	for _, p := range r.byID {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProfileRepo) Update(_ context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProfileNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubProfileRepo) Count(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.byID {
		if role == "" || p.Role == role {
			n++
		}
	}
	return n, nil
}

type stubJobRepo struct {
	byID      map[string]*domain.JobPosting
	lastList  ports.JobFilter
	updateErr error
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{byID: make(map[string]*domain.JobPosting)}
}

func (r *stubJobRepo) put(j domain.JobPosting) {
	r.byID[j.ID] = &j
}

func (r *stubJobRepo) Create(_ context.Context, j *domain.JobPosting) error {
	clone := *j
	r.byID[j.ID] = &clone
	return nil
}

func (r *stubJobRepo) FindByID(_ context.Context, id string) (*domain.JobPosting, error) {
	j, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	clone := *j
	return &clone, nil
}

func (r *stubJobRepo) List(_ context.Context, f ports.JobFilter) ([]*domain.JobPosting, error) {
	r.lastList = f
	var out []*domain.JobPosting
	for _, j := range r.byID {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Department != "" && j.Department != f.Department {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(f.Search)) {
			continue
		}
		clone := *j
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (r *stubJobRepo) Update(_ context.Context, j *domain.JobPosting) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[j.ID]; !ok {
		return domain.ErrJobNotFound
	}
	clone := *j
	r.byID[j.ID] = &clone
	return nil
}

func (r *stubJobRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubJobRepo) ClearCreator(_ context.Context, profileID string) (int64, error) {
	var n int64
	for _, j := range r.byID {
		if j.CreatedBy == profileID {
			j.CreatedBy = ""
			n++
		}
	}
	return n, nil
}

type stubApplicationRepo struct {
	byID      map[string]*domain.Application
	createErr error
	// calls records the order of mutating calls.
	calls []string
}

func newStubApplicationRepo() *stubApplicationRepo {
	return &stubApplicationRepo{byID: make(map[string]*domain.Application)}
}

func (r *stubApplicationRepo) put(a domain.Application) {
	r.byID[a.ID] = &a
}

func (r *stubApplicationRepo) matches(a *domain.Application, f ports.ApplicationFilter) bool {
	return (f.ApplicantID == "" || a.ApplicantID == f.ApplicantID) &&
		(f.JobID == "" || a.JobID == f.JobID) &&
		(f.Status == "" || a.Status == f.Status)
}

func (r *stubApplicationRepo) Create(_ context.Context, a *domain.Application) error {
	r.calls = append(r.calls, "create")
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.JobID == a.JobID && existing.ApplicantID == a.ApplicantID {
			return domain.ErrDuplicateApplication
		}
	}
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubApplicationRepo) FindByID(_ context.Context, id string) (*domain.Application, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubApplicationRepo) FindByResumePath(_ context.Context, path string) (*domain.Application, error) {
	for _, a := range r.byID {
		if a.ResumePath == path {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrApplicationNotFound
}

func (r *stubApplicationRepo) List(_ context.Context, f ports.ApplicationFilter) ([]*domain.Application, error) {
	var out []*domain.Application
	for _, a := range r.byID {
		if r.matches(a, f) {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubApplicationRepo) Count(_ context.Context, f ports.ApplicationFilter) (int64, error) {
	var n int64
	for _, a := range r.byID {
		if r.matches(a, f) {
			n++
		}
	}
	return n, nil
}

func (r *stubApplicationRepo) UpdateStatus(_ context.Context, id string, status domain.ApplicationStatus, comment string, at time.Time) (*domain.Application, error) {
	r.calls = append(r.calls, "update_status")
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	a.Status, a.Comment, a.UpdatedAt = status, comment, at
	clone := *a
	return &clone, nil
}

func (r *stubApplicationRepo) DeleteByApplicant(_ context.Context, applicantID string) (int64, error) {
	r.calls = append(r.calls, "delete_by_applicant")
	var n int64
	for id, a := range r.byID {
		if a.ApplicantID == applicantID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Storage, session and feed stubs
// ---------------------------------------------------------------------------

type stubObjectStorage struct {
	objects map[string][]byte
	putErr  error
	deleted []string
}

func newStubObjectStorage() *stubObjectStorage {
	return &stubObjectStorage{objects: make(map[string][]byte)}
}

func (s *stubObjectStorage) Put(_ context.Context, path string, r io.Reader, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[path] = data
	return nil
}

func (s *stubObjectStorage) Open(_ context.Context, path string) (*ports.Object, error) {
	data, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return &ports.Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(data)),
		Path:        path,
		ContentType: "application/pdf",
		Size:        int64(len(data)),
	}, nil
}

func (s *stubObjectStorage) Delete(_ context.Context, path string) error {
	if _, ok := s.objects[path]; !ok {
		return domain.ErrObjectNotFound
	}
	delete(s.objects, path)
	s.deleted = append(s.deleted, path)
	return nil
}

type stubImageStorage struct {
	uploaded []string
	deleted  []string
}

func (s *stubImageStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://img.example.com/" + folder + "/" + fileName
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *stubImageStorage) DeleteImage(_ context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

type stubSessionStore struct {
	revoked  map[string]time.Duration
	checkErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{revoked: make(map[string]time.Duration)}
}

func (s *stubSessionStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.revoked[tokenID] = ttl
	return nil
}

func (s *stubSessionStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	_, ok := s.revoked[tokenID]
	return ok, nil
}

type stubLimiter struct {
	max      int
	attempts map[string]int
	err      error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{max: max, attempts: make(map[string]int)}
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.attempts[key]++
	return l.attempts[key] <= l.max, nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.attempts, key)
	return nil
}

type stubFeed struct {
	events     []domain.ChangeEvent
	publishErr error
}

func (f *stubFeed) Publish(_ context.Context, ev domain.ChangeEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *stubFeed) Subscribe(context.Context) (<-chan []byte, func(), error) {
	return nil, nil, errors.New("not supported")
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	superAdmin = domain.Principal{ID: "admin-1", Email: "root@corp.example", Role: domain.RoleSuperAdmin}
	hrUser     = domain.Principal{ID: "hr-1", Email: "hr.jane@corp.example", Role: domain.RoleHR}
	applicant  = domain.Principal{ID: "app-1", Email: "jane@mail.example", Role: domain.RoleApplicant}
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
