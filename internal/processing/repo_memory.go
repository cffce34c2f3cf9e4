package processing

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job // jobID -> job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

// Create stores a job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.Status == "" {
		job.Status = StatusQueued
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

// GetByID returns a job scoped to the org.
func (r *MemoryRepo) GetByID(ctx context.Context, orgID, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok || job.OrgID != orgID {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// ListByOrg lists jobs newest-first.
func (r *MemoryRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Job
	for _, job := range r.jobs {
		if job.OrgID == orgID {
			out = append(out, job)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Job{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// MarkProcessing moves a job to processing.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, orgID, jobID string, startedAt time.Time) error {
	return r.update(ctx, orgID, jobID, func(job *Job) {
		job.Status = StatusProcessing
		t := startedAt
		job.StartedAt = &t
	})
}

// Complete records the result payload.
func (r *MemoryRepo) Complete(ctx context.Context, orgID, jobID string, result map[string]any, completedAt time.Time) error {
	return r.update(ctx, orgID, jobID, func(job *Job) {
		job.Status = StatusCompleted
		job.Result = result
		t := completedAt
		job.CompletedAt = &t
	})
}

// Fail records the failure reason.
func (r *MemoryRepo) Fail(ctx context.Context, orgID, jobID, errorCode, errorMessage string, completedAt time.Time) error {
	return r.update(ctx, orgID, jobID, func(job *Job) {
		job.Status = StatusFailed
		job.ErrorCode = errorCode
		job.ErrorMessage = errorMessage
		t := completedAt
		job.CompletedAt = &t
	})
}

func (r *MemoryRepo) update(ctx context.Context, orgID, jobID string, fn func(*Job)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.OrgID != orgID {
		return ErrNotFound
	}
	fn(&job)
	r.jobs[jobID] = job
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
