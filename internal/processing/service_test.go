package processing

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/extraction"
	"compliance-backend/internal/queue"
	"compliance-backend/internal/shared/storage/object"
	"compliance-backend/internal/usage"
)

type fakeStore struct{}

func (fakeStore) Save(ctx context.Context, orgID, fileName string, r io.Reader) (string, int64, string, error) {
	n, _ := io.Copy(io.Discard, r)
	return "objects/" + orgID + "/" + fileName, n, "application/pdf", nil
}

func (fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("raw bytes")), nil
}

type stubExtractor struct {
	fields extraction.Fields
	err    error
	calls  int
}

func (s *stubExtractor) ExtractFields(ctx context.Context, input extraction.Input) (extraction.Fields, error) {
	s.calls++
	if s.err != nil {
		return extraction.Fields{}, s.err
	}
	return s.fields, nil
}

type capturingQueue struct {
	sent []queue.Message
	err  error
}

func (q *capturingQueue) Send(ctx context.Context, msg queue.Message) error {
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

func stubText(ctx context.Context, store object.ObjectStore, storageKey, mimeType, fileName string) (string, error) {
	return "Registered Nurse License RN-12345 Jane Smith Expires 2028-06-30", nil
}

func newTestEnv(t *testing.T, extractor extraction.Client, q queue.Client) (*Service, *documents.Service, *documents.MemoryRepo) {
	t.Helper()
	docRepo := documents.NewMemoryRepo()
	docSvc := &documents.Service{Repo: docRepo, Store: fakeStore{}}
	svc := &Service{
		Repo:        NewMemoryRepo(),
		Docs:        docSvc,
		Usage:       usage.NewService(),
		Store:       fakeStore{},
		Extractor:   extractor,
		Queue:       q,
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		ExtractText: stubText,
	}
	return svc, docSvc, docRepo
}

func uploadPending(t *testing.T, docSvc *documents.Service, orgID string) documents.Document {
	t.Helper()
	doc, err := docSvc.Upload(context.Background(), orgID, "license.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return doc
}

func TestEnqueueSendsQueueMessage(t *testing.T) {
	q := &capturingQueue{}
	svc, docSvc, _ := newTestEnv(t, &stubExtractor{}, q)
	doc := uploadPending(t, docSvc, "org-1")

	job, err := svc.Enqueue(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("status = %q", job.Status)
	}
	if len(q.sent) != 1 {
		t.Fatalf("sent %d messages", len(q.sent))
	}
	if q.sent[0].JobID != job.ID || q.sent[0].OrgID != "org-1" {
		t.Fatalf("message = %+v", q.sent[0])
	}
}

func TestEnqueueUnknownDocument(t *testing.T) {
	svc, _, _ := newTestEnv(t, &stubExtractor{}, &capturingQueue{})

	_, err := svc.Enqueue(context.Background(), "org-1", "missing")
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnqueueRespectsQuota(t *testing.T) {
	svc, docSvc, _ := newTestEnv(t, &stubExtractor{}, &capturingQueue{})
	doc := uploadPending(t, docSvc, "org-1")

	if _, err := svc.Usage.Consume(context.Background(), "org-1", 25); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	_, err := svc.Enqueue(context.Background(), "org-1", doc.ID)
	if !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestProcessJobCompletesAndActivatesDocument(t *testing.T) {
	extractor := &stubExtractor{fields: extraction.Fields{
		DocumentType:   "nursing_license",
		LicenseNumber:  "RN-12345",
		OwnerName:      "Jane Smith",
		ExpirationDate: "2028-06-30",
	}}
	q := &capturingQueue{}
	svc, docSvc, docRepo := newTestEnv(t, extractor, q)
	doc := uploadPending(t, docSvc, "org-1")

	job, err := svc.Enqueue(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.ProcessJob(context.Background(), "org-1", job.ID); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}

	done, err := svc.Get(context.Background(), "org-1", job.ID)
	if err != nil {
		t.Fatalf("Get job: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("job status = %q (%s: %s)", done.Status, done.ErrorCode, done.ErrorMessage)
	}
	if done.Result["finalStatus"] != documents.StatusActive {
		t.Fatalf("finalStatus = %v", done.Result["finalStatus"])
	}

	stored, err := docRepo.GetByID(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != documents.StatusActive {
		t.Fatalf("document status = %q", stored.Status)
	}
	if stored.OwnerNormalized != "janesmith" {
		t.Fatalf("ownerNormalized = %q", stored.OwnerNormalized)
	}
	if stored.ExpirationDate == nil || stored.ExpirationDate.Format("2006-01-02") != "2028-06-30" {
		t.Fatalf("expiration = %v", stored.ExpirationDate)
	}
}

func TestProcessJobRenewalMarksPreviousHistorical(t *testing.T) {
	extractor := &stubExtractor{fields: extraction.Fields{
		DocumentType:   "nursing_license",
		LicenseNumber:  "RN-12345",
		OwnerName:      "Jane Smith",
		ExpirationDate: "2028-06-30",
	}}
	svc, docSvc, docRepo := newTestEnv(t, extractor, &capturingQueue{})

	prevExpiration := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	if err := docRepo.Create(context.Background(), documents.Document{
		ID:              "doc-old",
		OrgID:           "org-1",
		FileName:        "old.pdf",
		LicenseNumber:   "RN-12345",
		OwnerName:       "Jane Smith",
		OwnerNormalized: compliance.NormalizeOwnerName("Jane Smith"),
		ExpirationDate:  &prevExpiration,
		Status:          documents.StatusActive,
		CreatedAt:       time.Now().UTC().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	doc := uploadPending(t, docSvc, "org-1")
	job, err := svc.Enqueue(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.ProcessJob(context.Background(), "org-1", job.ID); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}

	old, err := docRepo.GetByID(context.Background(), "org-1", "doc-old")
	if err != nil {
		t.Fatalf("GetByID old: %v", err)
	}
	if old.Status != documents.StatusHistorical {
		t.Fatalf("old status = %q, want historical", old.Status)
	}

	fresh, err := docRepo.GetByID(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID new: %v", err)
	}
	if fresh.Status != documents.StatusActive {
		t.Fatalf("new status = %q, want active", fresh.Status)
	}
}

func TestProcessJobExtractionFailureRecordsError(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("openai error: server_error (server_error)")}
	svc, docSvc, _ := newTestEnv(t, extractor, &capturingQueue{})
	doc := uploadPending(t, docSvc, "org-1")

	job, err := svc.Enqueue(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.ProcessJob(context.Background(), "org-1", job.ID); err == nil {
		t.Fatal("expected processing error")
	}

	failed, err := svc.Get(context.Background(), "org-1", job.ID)
	if err != nil {
		t.Fatalf("Get job: %v", err)
	}
	if failed.Status != StatusFailed {
		t.Fatalf("status = %q", failed.Status)
	}
	if failed.ErrorCode != "extraction_failed" {
		t.Fatalf("errorCode = %q", failed.ErrorCode)
	}
}

func TestParseExpirationDate(t *testing.T) {
	cases := []struct {
		raw  string
		want string // "" means nil
	}{
		{"2027-06-30", "2027-06-30"},
		{"2027-06-30T23:59:59Z", "2027-06-30"},
		{" 2027-06-30 ", "2027-06-30"},
		{"06/30/2027", ""},
		{"", ""},
		{"soon", ""},
	}
	for _, tc := range cases {
		got := parseExpirationDate(tc.raw)
		if tc.want == "" {
			if got != nil {
				t.Errorf("parseExpirationDate(%q) = %v, want nil", tc.raw, got)
			}
			continue
		}
		if got == nil || got.Format("2006-01-02") != tc.want {
			t.Errorf("parseExpirationDate(%q) = %v, want %s", tc.raw, got, tc.want)
		}
	}
}
