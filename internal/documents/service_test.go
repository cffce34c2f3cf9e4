package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"compliance-backend/internal/compliance"
)

type fakeStore struct {
	mime string
}

func (f fakeStore) Save(ctx context.Context, orgID, fileName string, r io.Reader) (string, int64, string, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", 0, "", err
	}
	return "objects/" + orgID + "/" + fileName, n, f.mime, nil
}

func (f fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func newTestService(repo Repo) *Service {
	return &Service{
		Repo:  repo,
		Store: fakeStore{mime: "application/pdf"},
		Now:   func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedActive(t *testing.T, repo Repo, id, license, owner string, expiration *time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), Document{
		ID:              id,
		OrgID:           "org-1",
		FileName:        id + ".pdf",
		LicenseNumber:   license,
		OwnerName:       owner,
		OwnerNormalized: compliance.NormalizeOwnerName(owner),
		ExpirationDate:  expiration,
		Status:          StatusActive,
		CreatedAt:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestUploadCreatesPendingDocument(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Upload(context.Background(), "org-1", "RN License.pdf", strings.NewReader("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Status != StatusPending {
		t.Fatalf("status = %q, want pending", doc.Status)
	}
	if doc.ID == "" || doc.StorageKey == "" {
		t.Fatalf("missing id or storage key: %+v", doc)
	}

	stored, err := repo.GetByID(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.MimeType != "application/pdf" {
		t.Fatalf("mime = %q", stored.MimeType)
	}
}

func TestUploadRejectsUnsupportedMime(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Store: fakeStore{mime: "image/png"}}

	_, err := svc.Upload(context.Background(), "org-1", "scan.png", strings.NewReader("png bytes"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestClassifyRenewalAgainstStoredLineage(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	seedActive(t, repo, "doc-old", "RN-12345", "Jane Smith", datePtr(2026, 6, 30))

	verdict, err := svc.Classify(context.Background(), "org-1", compliance.Candidate{
		LicenseNumber:  "RN-12345",
		OwnerName:      "JANE SMITH",
		ExpirationDate: "2028-06-30",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !verdict.IsRenewal {
		t.Fatalf("expected renewal, got %+v", verdict)
	}
	if verdict.DocumentToMarkHistorical != "doc-old" {
		t.Fatalf("DocumentToMarkHistorical = %q", verdict.DocumentToMarkHistorical)
	}
}

func TestClassifyDuplicateIgnoresOwnerFormatting(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	seedActive(t, repo, "doc-old", "RN-12345", "Jane Smith", datePtr(2026, 6, 30))

	verdict, err := svc.Classify(context.Background(), "org-1", compliance.Candidate{
		LicenseNumber:  " RN-12345 ",
		OwnerName:      "jane, smith",
		ExpirationDate: "2026-06-30",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !verdict.IsDuplicate {
		t.Fatalf("expected duplicate, got %+v", verdict)
	}
}

func TestClassifyIsTenantScoped(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	seedActive(t, repo, "doc-old", "RN-12345", "Jane Smith", datePtr(2026, 6, 30))

	verdict, err := svc.Classify(context.Background(), "org-2", compliance.Candidate{
		LicenseNumber:  "RN-12345",
		OwnerName:      "Jane Smith",
		ExpirationDate: "2026-06-30",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if verdict.IsDuplicate || verdict.IsRenewal || verdict.IsHistorical {
		t.Fatalf("expected no signal across tenants, got %+v", verdict)
	}
}

func TestCommitVerdictRenewalSupersedes(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	seedActive(t, repo, "doc-old", "RN-12345", "Jane Smith", datePtr(2026, 6, 30))

	pending, err := svc.Upload(context.Background(), "org-1", "renewal.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	fields := ExtractedFields{
		DocumentType:   "nursing_license",
		LicenseNumber:  "RN-12345",
		OwnerName:      "Jane Smith",
		ExpirationDate: datePtr(2028, 6, 30),
	}
	verdict, err := svc.Classify(context.Background(), "org-1", compliance.Candidate{
		LicenseNumber:  fields.LicenseNumber,
		OwnerName:      fields.OwnerName,
		ExpirationDate: "2028-06-30",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	status, err := svc.CommitVerdict(context.Background(), "org-1", pending.ID, fields, verdict)
	if err != nil {
		t.Fatalf("CommitVerdict: %v", err)
	}
	if status != StatusActive {
		t.Fatalf("status = %q, want active", status)
	}

	old, err := repo.GetByID(context.Background(), "org-1", "doc-old")
	if err != nil {
		t.Fatalf("GetByID old: %v", err)
	}
	if old.Status != StatusHistorical {
		t.Fatalf("superseded status = %q, want historical", old.Status)
	}

	fresh, err := repo.GetByID(context.Background(), "org-1", pending.ID)
	if err != nil {
		t.Fatalf("GetByID new: %v", err)
	}
	if fresh.Status != StatusActive || fresh.OwnerNormalized != "janesmith" {
		t.Fatalf("renewed doc = %+v", fresh)
	}
}

func TestCommitVerdictDuplicateRemovesPendingUpload(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	seedActive(t, repo, "doc-old", "RN-12345", "Jane Smith", datePtr(2026, 6, 30))

	pending, err := svc.Upload(context.Background(), "org-1", "dup.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	verdict := compliance.Verdict{
		IsDuplicate:      true,
		ExistingDocument: &compliance.ExistingDocument{ID: "doc-old"},
	}

	status, err := svc.CommitVerdict(context.Background(), "org-1", pending.ID, ExtractedFields{}, verdict)
	if err != nil {
		t.Fatalf("CommitVerdict: %v", err)
	}
	if status != "duplicate" {
		t.Fatalf("status = %q, want duplicate", status)
	}

	if _, err := repo.GetByID(context.Background(), "org-1", pending.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending upload should be removed, got %v", err)
	}
}

func TestCurrentMergesUrgencyFacts(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	// now is 2026-01-15; expiring 2026-02-01 is 17 days out.
	seedActive(t, repo, "doc-soon", "RN-1", "Jane Smith", datePtr(2026, 2, 1))
	seedActive(t, repo, "doc-later", "RN-2", "Bob Jones", datePtr(2026, 8, 1))

	views, err := svc.Current(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views", len(views))
	}
	if views[0].ID != "doc-soon" {
		t.Fatalf("expected soonest expiration first, got %q", views[0].ID)
	}
	if views[0].UrgencyLevel == nil || *views[0].UrgencyLevel != compliance.UrgencyCritical {
		t.Fatalf("doc-soon urgency = %v", views[0].UrgencyLevel)
	}
	if views[0].DaysUntilExpiration == nil || *views[0].DaysUntilExpiration != 17 {
		t.Fatalf("doc-soon days = %v", views[0].DaysUntilExpiration)
	}
	if views[1].UrgencyLevel == nil || *views[1].UrgencyLevel != compliance.UrgencyLow {
		t.Fatalf("doc-later urgency = %v", views[1].UrgencyLevel)
	}
}

func TestHistoryReturnsLineageNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	seedActive(t, repo, "doc-2024", "RN-12345", "Jane Smith", datePtr(2024, 6, 30))
	seedActive(t, repo, "doc-2026", "RN-12345", "Jane Smith", datePtr(2026, 6, 30))

	docs, err := svc.History(context.Background(), "org-1", "doc-2024")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents", len(docs))
	}
	if docs[0].ID != "doc-2026" || docs[1].ID != "doc-2024" {
		t.Fatalf("order = %q, %q", docs[0].ID, docs[1].ID)
	}
}
