package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // orgID -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

// Create stores a document for an org.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.OrgID] = append(r.data[doc.OrgID], doc)
	return nil
}

// GetByID returns a document by ID for an org.
func (r *MemoryRepo) GetByID(ctx context.Context, orgID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.data[orgID]
	for i := range docs {
		if docs[i].ID == documentID {
			return docs[i], nil
		}
	}
	return Document{}, ErrNotFound
}

// ListByOrg returns documents for an org, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	orgDocs := r.data[orgID]
	r.mu.RUnlock()

	if len(orgDocs) == 0 || offset >= len(orgDocs) {
		return []Document{}, nil
	}

	docs := make([]Document, len(orgDocs))
	copy(docs, orgDocs)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return docs[offset:end], nil
}

// ListLineage returns documents matching the lineage key,
// expiration-descending with null expirations last.
func (r *MemoryRepo) ListLineage(ctx context.Context, orgID, licenseNumber, ownerNormalized string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Document
	for _, doc := range r.data[orgID] {
		if doc.LicenseNumber == licenseNumber && doc.OwnerNormalized == ownerNormalized {
			out = append(out, doc)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].ExpirationDate, out[j].ExpirationDate
		if (di == nil) != (dj == nil) {
			return di != nil
		}
		if di == nil {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return di.After(*dj)
	})

	return out, nil
}

// ListCurrent returns active documents for an org, soonest expiration first.
func (r *MemoryRepo) ListCurrent(ctx context.Context, orgID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Document
	for _, doc := range r.data[orgID] {
		if doc.Status == StatusActive {
			out = append(out, doc)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].ExpirationDate, out[j].ExpirationDate
		if (di == nil) != (dj == nil) {
			return di != nil
		}
		if di == nil {
			return false
		}
		return di.Before(*dj)
	})

	return out, nil
}

// ApplyExtraction fills extracted fields and final status; renewals mark the
// superseded document historical under the same lock.
func (r *MemoryRepo) ApplyExtraction(ctx context.Context, orgID, documentID string, fields ExtractedFields, status, supersedeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.data[orgID]
	target := -1
	for i := range docs {
		if docs[i].ID == documentID {
			target = i
			break
		}
	}
	if target == -1 {
		return ErrNotFound
	}

	ownerNormalized := fields.ownerNormalized()

	if status == StatusActive {
		for i := range docs {
			if i == target || docs[i].ID == supersedeID {
				continue
			}
			if docs[i].Status == StatusActive &&
				docs[i].LicenseNumber == fields.LicenseNumber &&
				docs[i].OwnerNormalized == ownerNormalized &&
				fields.LicenseNumber != "" && ownerNormalized != "" {
				return ErrLineageConflict
			}
		}
	}

	if supersedeID != "" {
		for i := range docs {
			if docs[i].ID == supersedeID {
				docs[i].Status = StatusHistorical
			}
		}
	}

	extractedAt := fields.ExtractedAt
	docs[target].DocumentType = fields.DocumentType
	docs[target].LicenseNumber = fields.LicenseNumber
	docs[target].OwnerName = fields.OwnerName
	docs[target].OwnerNormalized = ownerNormalized
	docs[target].ExpirationDate = copyTime(fields.ExpirationDate)
	docs[target].Status = status
	docs[target].ExtractedAt = &extractedAt
	r.data[orgID] = docs
	return nil
}

// SoftDelete removes a document from the org's visible set.
func (r *MemoryRepo) SoftDelete(ctx context.Context, orgID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.data[orgID]
	for i := range docs {
		if docs[i].ID == documentID {
			r.data[orgID] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// PurgeOrg removes every document owned by the org.
func (r *MemoryRepo) PurgeOrg(ctx context.Context, orgID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.data[orgID])
	delete(r.data, orgID)
	return n, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

var _ Repo = (*MemoryRepo)(nil)
