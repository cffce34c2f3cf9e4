package dashboard

import (
	"context"
	"io"
	"testing"
	"time"

	"compliance-backend/internal/documents"
)

type nilStore struct{}

func (nilStore) Save(ctx context.Context, orgID, fileName string, r io.Reader) (string, int64, string, error) {
	return "", 0, "", nil
}

func (nilStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return nil, nil
}

func seedDoc(t *testing.T, repo documents.Repo, id string, expiration *time.Time, now time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), documents.Document{
		ID:              id,
		OrgID:           "org-1",
		FileName:        id + ".pdf",
		LicenseNumber:   "LN-" + id,
		OwnerName:       "Owner " + id,
		OwnerNormalized: "owner" + id,
		ExpirationDate:  expiration,
		Status:          documents.StatusActive,
		CreatedAt:       now,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestSummaryBucketsAndScore(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	repo := documents.NewMemoryRepo()
	docSvc := &documents.Service{
		Repo:  repo,
		Store: nilStore{},
		Now:   func() time.Time { return now },
	}
	svc := &Service{Docs: docSvc}

	seedDoc(t, repo, "expired", datePtr(now.AddDate(0, 0, -5)), now)
	seedDoc(t, repo, "critical", datePtr(now.AddDate(0, 0, 10)), now)
	seedDoc(t, repo, "high", datePtr(now.AddDate(0, 0, 45)), now)
	seedDoc(t, repo, "medium", datePtr(now.AddDate(0, 0, 75)), now)
	seedDoc(t, repo, "low", datePtr(now.AddDate(0, 0, 365)), now)
	seedDoc(t, repo, "forever", nil, now)

	summary, err := svc.Summary(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if summary.TotalActive != 6 {
		t.Fatalf("totalActive = %d", summary.TotalActive)
	}
	if summary.Expired != 1 {
		t.Fatalf("expired = %d", summary.Expired)
	}
	// expired docs land in the critical bucket (days <= 30), never-expiring
	// docs in low.
	if summary.Counts["critical"] != 2 {
		t.Fatalf("critical count = %d", summary.Counts["critical"])
	}
	if summary.Counts["high"] != 1 || summary.Counts["medium"] != 1 {
		t.Fatalf("counts = %v", summary.Counts)
	}
	if summary.Counts["low"] != 2 {
		t.Fatalf("low count = %d", summary.Counts["low"])
	}

	// 100 - 25 (expired) - 10 (critical) - 5 (high) - 2 (medium) = 58
	if summary.AuditScore != 58 {
		t.Fatalf("auditScore = %d, want 58", summary.AuditScore)
	}
}

func TestSummaryScoreFloorsAtZero(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	repo := documents.NewMemoryRepo()
	docSvc := &documents.Service{
		Repo:  repo,
		Store: nilStore{},
		Now:   func() time.Time { return now },
	}
	svc := &Service{Docs: docSvc}

	for i := 0; i < 6; i++ {
		seedDoc(t, repo, string(rune('a'+i)), datePtr(now.AddDate(0, 0, -10)), now)
	}

	summary, err := svc.Summary(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.AuditScore != 0 {
		t.Fatalf("auditScore = %d, want 0", summary.AuditScore)
	}
}

func TestSummaryEmptyOrg(t *testing.T) {
	repo := documents.NewMemoryRepo()
	svc := &Service{Docs: &documents.Service{Repo: repo, Store: nilStore{}}}

	summary, err := svc.Summary(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalActive != 0 || summary.AuditScore != 100 {
		t.Fatalf("summary = %+v", summary)
	}
}
