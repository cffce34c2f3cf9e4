package documents

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, orgID, documentID string) (Document, error)
	ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Document, error)
	// ListLineage returns the documents sharing a license number and
	// normalized owner name, expiration-descending with nulls last.
	ListLineage(ctx context.Context, orgID, licenseNumber, ownerNormalized string) ([]Document, error)
	// ListCurrent returns non-historical documents for urgency projections.
	ListCurrent(ctx context.Context, orgID string) ([]Document, error)
	// ApplyExtraction fills in extracted fields and the final status for a
	// pending document. When supersedeID is non-empty the superseded
	// document transitions to historical in the same transaction, keeping
	// the one-active-per-lineage invariant.
	ApplyExtraction(ctx context.Context, orgID, documentID string, fields ExtractedFields, status, supersedeID string) error
	SoftDelete(ctx context.Context, orgID, documentID string) error
	PurgeOrg(ctx context.Context, orgID string) (int, error)
}
