package notifications

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Notification // orgID -> notifications
	seen map[string]struct{}       // orgID|documentID|urgency
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Notification),
		seen: make(map[string]struct{}),
	}
}

// CreateIfAbsent inserts unless the triple was already notified.
func (r *MemoryRepo) CreateIfAbsent(ctx context.Context, n Notification) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := n.OrgID + "|" + n.DocumentID + "|" + n.Urgency
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[key]; ok {
		return false, nil
	}
	r.seen[key] = struct{}{}
	r.data[n.OrgID] = append(r.data[n.OrgID], n)
	return true, nil
}

// ListByOrg returns notifications newest-first.
func (r *MemoryRepo) ListByOrg(ctx context.Context, orgID string, unreadOnly bool, limit int) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Notification
	for _, n := range r.data[orgID] {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkRead flags a notification as read.
func (r *MemoryRepo) MarkRead(ctx context.Context, orgID, notificationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[orgID]
	for i := range list {
		if list[i].ID == notificationID {
			list[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
