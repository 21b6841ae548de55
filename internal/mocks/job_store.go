package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/store"
)

// JobStore is an in-memory implementation of store.JobStore for testing.
// Individual methods can be overridden through the function fields; by
// default they operate on the internal map.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.GenerationJob

	CreateFunc func(ctx context.Context, job *domain.GenerationJob) error
	UpdateFunc func(ctx context.Context, job *domain.GenerationJob) error
}

// NewJobStore creates an empty in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[uuid.UUID]*domain.GenerationJob),
	}
}

// Ensure JobStore implements store.JobStore
var _ store.JobStore = (*JobStore)(nil)

// Create implements store.JobStore.Create
func (s *JobStore) Create(ctx context.Context, job *domain.GenerationJob) error {
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, job)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

// GetByID implements store.JobStore.GetByID
func (s *JobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

// ListByUser implements store.JobStore.ListByUser
func (s *JobStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := []*domain.GenerationJob{}
	for _, job := range s.jobs {
		if job.UserID == userID {
			copied := *job
			jobs = append(jobs, &copied)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// ListByStatus implements store.JobStore.ListByStatus
func (s *JobStore) ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := []*domain.GenerationJob{}
	for _, job := range s.jobs {
		if job.Status == status {
			copied := *job
			jobs = append(jobs, &copied)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// Update implements store.JobStore.Update
func (s *JobStore) Update(ctx context.Context, job *domain.GenerationJob) error {
	if s.UpdateFunc != nil {
		return s.UpdateFunc(ctx, job)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[job.ID]
	if !ok {
		return store.ErrJobNotFound
	}
	// Terminal rows are immutable, matching the real store's status guard.
	if existing.Terminal() {
		return store.ErrJobFinalized
	}
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

// WithTx implements store.JobStore.WithTx. The mock has no transactions, so
// it returns itself.
func (s *JobStore) WithTx(tx *sql.Tx) store.JobStore {
	return s
}
