package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/shared/metrics"
	"compliance-backend/internal/shared/storage/object"
	"compliance-backend/internal/shared/telemetry"
	"compliance-backend/internal/shared/util"
)

const maxUploadBytes = 10 << 20

var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// Service contains business logic for document uploads and lineage
// classification.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Upload stores the file bytes and creates a pending document record. The
// document stays pending until extraction fills in its compliance fields.
func (s *Service) Upload(ctx context.Context, orgID, fileName string, r io.Reader) (Document, error) {
	if orgID == "" {
		return Document{}, ErrInvalidInput
	}

	safeName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Document{}, ErrInvalidInput
	}

	storageKey, sizeBytes, mimeType, err := s.Store.Save(ctx, orgID, safeName, io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return Document{}, err
	}
	if sizeBytes == 0 || sizeBytes > maxUploadBytes {
		return Document{}, ErrInvalidInput
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return Document{}, ErrInvalidInput
	}

	doc := Document{
		ID:               uuid.NewString(),
		OrgID:            orgID,
		FileName:         safeName,
		OriginalFilename: strings.TrimSpace(fileName),
		MimeType:         mimeType,
		ContentType:      mimeType,
		SizeBytes:        sizeBytes,
		StorageProvider:  "object",
		StorageKey:       storageKey,
		Status:           StatusPending,
		CreatedAt:        s.now(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	telemetry.Info("document.uploaded", map[string]any{
		"org_id":      orgID,
		"document_id": doc.ID,
		"size_bytes":  sizeBytes,
		"mime_type":   mimeType,
	})

	return doc, nil
}

// Get returns one document scoped to the org.
func (s *Service) Get(ctx context.Context, orgID, documentID string) (Document, error) {
	if orgID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, orgID, documentID)
}

// List returns the org's documents, newest first.
func (s *Service) List(ctx context.Context, orgID string, limit, offset int) ([]Document, error) {
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByOrg(ctx, orgID, limit, offset)
}

// History returns the full lineage of a document: every version sharing its
// license number and normalized owner name, newest expiration first.
func (s *Service) History(ctx context.Context, orgID, documentID string) ([]Document, error) {
	doc, err := s.Get(ctx, orgID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.LicenseNumber == "" || doc.OwnerNormalized == "" {
		return []Document{doc}, nil
	}
	return s.Repo.ListLineage(ctx, orgID, doc.LicenseNumber, doc.OwnerNormalized)
}

// Classify runs the pure classifier against the org's stored lineage for the
// candidate's identity fields.
func (s *Service) Classify(ctx context.Context, orgID string, candidate compliance.Candidate) (compliance.Verdict, error) {
	if orgID == "" {
		return compliance.Verdict{}, ErrInvalidInput
	}

	licenseNumber := strings.TrimSpace(candidate.LicenseNumber)
	ownerNormalized := compliance.NormalizeOwnerName(candidate.OwnerName)
	if licenseNumber == "" || ownerNormalized == "" {
		return compliance.Verdict{}, nil
	}

	docs, err := s.Repo.ListLineage(ctx, orgID, licenseNumber, ownerNormalized)
	if err != nil {
		return compliance.Verdict{}, err
	}

	existing := make([]compliance.ExistingDocument, 0, len(docs))
	for _, doc := range docs {
		existing = append(existing, doc.AsExisting())
	}

	return compliance.ClassifyCandidate(candidate, existing), nil
}

// CommitVerdict applies extracted fields and the classification outcome to a
// pending document. Duplicates are rejected and the pending upload removed;
// renewals supersede the previous active version atomically.
func (s *Service) CommitVerdict(ctx context.Context, orgID, documentID string, fields ExtractedFields, verdict compliance.Verdict) (string, error) {
	if orgID == "" || documentID == "" {
		return "", ErrInvalidInput
	}
	if fields.ExtractedAt.IsZero() {
		fields.ExtractedAt = s.now()
	}

	switch {
	case verdict.IsDuplicate:
		metrics.IncVerdict("duplicate")
		if err := s.Repo.SoftDelete(ctx, orgID, documentID); err != nil && !errors.Is(err, ErrNotFound) {
			return "", err
		}
		existingID := ""
		if verdict.ExistingDocument != nil {
			existingID = verdict.ExistingDocument.ID
		}
		telemetry.Info("document.duplicate_rejected", map[string]any{
			"org_id":      orgID,
			"document_id": documentID,
			"existing_id": existingID,
		})
		return "duplicate", nil

	case verdict.IsRenewal:
		metrics.IncVerdict("renewal")
		if err := s.Repo.ApplyExtraction(ctx, orgID, documentID, fields, StatusActive, verdict.DocumentToMarkHistorical); err != nil {
			return "", err
		}
		telemetry.Info("document.renewed", map[string]any{
			"org_id":        orgID,
			"document_id":   documentID,
			"superseded_id": verdict.DocumentToMarkHistorical,
		})
		return StatusActive, nil

	case verdict.IsHistorical:
		metrics.IncVerdict("historical")
		if err := s.Repo.ApplyExtraction(ctx, orgID, documentID, fields, StatusHistorical, ""); err != nil {
			return "", err
		}
		return StatusHistorical, nil

	default:
		metrics.IncVerdict("new")
		if err := s.Repo.ApplyExtraction(ctx, orgID, documentID, fields, StatusActive, ""); err != nil {
			return "", err
		}
		return StatusActive, nil
	}
}

// Current returns the org's active documents with urgency facts merged in,
// soonest expiration first.
func (s *Service) Current(ctx context.Context, orgID string) ([]DocumentView, error) {
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	docs, err := s.Repo.ListCurrent(ctx, orgID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, NewDocumentView(doc, now))
	}
	return views, nil
}

// Delete soft-deletes a document.
func (s *Service) Delete(ctx context.Context, orgID, documentID string) error {
	if orgID == "" || documentID == "" {
		return ErrInvalidInput
	}
	return s.Repo.SoftDelete(ctx, orgID, documentID)
}
