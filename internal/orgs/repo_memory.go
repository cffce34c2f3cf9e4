package orgs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps orgs in process memory for local development.
type MemoryRepo struct {
	mu   sync.RWMutex
	orgs map[string]Org
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{orgs: make(map[string]Org)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, org Org) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.orgs[org.ID]; ok {
		existing.Name = org.Name
		existing.UpdatedAt = now
		r.orgs[org.ID] = existing
		return nil
	}
	if org.Plan == "" {
		org.Plan = "free"
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	r.orgs[org.ID] = org
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, orgID string) (Org, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.orgs[orgID]
	if !ok {
		return Org{}, ErrNotFound
	}
	return org, nil
}

func (r *MemoryRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.orgs))
	for id := range r.orgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryRepo) Purge(ctx context.Context, orgID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.orgs, orgID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
