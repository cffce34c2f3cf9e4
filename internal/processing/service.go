package processing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/extract"
	"compliance-backend/internal/extraction"
	"compliance-backend/internal/queue"
	"compliance-backend/internal/shared/metrics"
	"compliance-backend/internal/shared/storage/object"
	"compliance-backend/internal/shared/telemetry"
	"compliance-backend/internal/usage"
)

// TextExtractor pulls plain text from a stored object.
type TextExtractor func(ctx context.Context, store object.ObjectStore, storageKey, mimeType, fileName string) (string, error)

// Service runs the extraction pipeline: queued job -> document text -> AI
// fields -> classification verdict -> document state transition.
type Service struct {
	Repo      Repo
	Docs      *documents.Service
	Usage     *usage.Service
	Store     object.ObjectStore
	Extractor extraction.Client
	Queue     queue.Client
	Provider  string
	Model     string

	// ExtractText defaults to extract.Text; injectable for tests.
	ExtractText TextExtractor
}

// Enqueue creates a queued job for the document and hands it to the queue
// backend, or completes it on a goroutine when no queue is configured.
func (s *Service) Enqueue(ctx context.Context, orgID, documentID string) (Job, error) {
	if orgID == "" || documentID == "" {
		return Job{}, ErrInvalidInput
	}

	doc, err := s.Docs.Get(ctx, orgID, documentID)
	if err != nil {
		return Job{}, err
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, orgID, 1)
		if err != nil {
			return Job{}, err
		}
		if !ok {
			return Job{}, usage.ErrLimitReached
		}
	}

	job := Job{
		ID:         uuid.NewString(),
		OrgID:      orgID,
		DocumentID: doc.ID,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, orgID, 1); err != nil {
			return Job{}, err
		}
	}

	if s.Queue != nil {
		msg := queue.Message{
			JobID:      job.ID,
			OrgID:      orgID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: job.CreatedAt.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			s.failJob(ctx, orgID, job.ID, "enqueue_failed", fmt.Errorf("queue send: %w", err))
			return Job{}, err
		}
		return job, nil
	}

	go s.completeAsync(backgroundWithRequestID(ctx), orgID, job.ID)
	return job, nil
}

// Get returns a job scoped to the org.
func (s *Service) Get(ctx context.Context, orgID, jobID string) (Job, error) {
	if orgID == "" || jobID == "" {
		return Job{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, orgID, jobID)
}

// List returns jobs for an org ordered newest-first.
func (s *Service) List(ctx context.Context, orgID string, limit, offset int) ([]Job, error) {
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOrg(ctx, orgID, limit, offset)
}

func (s *Service) completeAsync(ctx context.Context, orgID, jobID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failJob(ctx, orgID, jobID, "internal_error", fmt.Errorf("panic: %v", r))
		}
	}()
	if err := s.ProcessJob(ctx, orgID, jobID); err != nil {
		telemetry.Error("job.process", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"org_id":     orgID,
			"job_id":     jobID,
			"error":      err.Error(),
		})
	}
}

// ProcessJob drives one job through the full pipeline. Failures are recorded
// on the job; the returned error is for the caller's queue retry semantics.
func (s *Service) ProcessJob(ctx context.Context, orgID, jobID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.MarkProcessing(ctx, orgID, jobID, startedAt); err != nil {
		return fmt.Errorf("set processing: %w", err)
	}
	metrics.IncJobStarted()

	job, err := s.Repo.GetByID(ctx, orgID, jobID)
	if err != nil {
		return s.failJob(ctx, orgID, jobID, "internal_error", fmt.Errorf("job lookup: %w", err))
	}

	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"org_id":            orgID,
		"job_id":            jobID,
		"document_id":       job.DocumentID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.Docs == nil || s.Store == nil {
		return s.failJob(ctx, orgID, jobID, "internal_error", errors.New("missing document store dependencies"))
	}
	if s.Extractor == nil {
		return s.failJob(ctx, orgID, jobID, "internal_error", errors.New("missing extraction client"))
	}

	doc, err := s.Docs.Get(ctx, orgID, job.DocumentID)
	if err != nil {
		return s.failJob(ctx, orgID, jobID, "document_not_found", fmt.Errorf("document lookup id=%s: %w", job.DocumentID, err))
	}

	extractText := s.ExtractText
	if extractText == nil {
		extractText = extract.Text
	}
	text, err := extractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return s.failJob(ctx, orgID, jobID, "extract_failed", fmt.Errorf("document %s mime %s: %w", doc.ID, doc.MimeType, err))
	}

	fields, err := s.Extractor.ExtractFields(ctx, extraction.Input{Text: text, FileName: doc.FileName})
	if err != nil {
		code := "extraction_failed"
		if errors.Is(err, extraction.ErrProviderUnavailable) {
			code = "provider_unavailable"
		}
		return s.failJob(ctx, orgID, jobID, code, fmt.Errorf("extract fields: %w", err))
	}

	candidate := compliance.Candidate{
		LicenseNumber:  fields.LicenseNumber,
		OwnerName:      fields.OwnerName,
		ExpirationDate: fields.ExpirationDate,
	}
	verdict, err := s.Docs.Classify(ctx, orgID, candidate)
	if err != nil {
		return s.failJob(ctx, orgID, jobID, "internal_error", fmt.Errorf("classify: %w", err))
	}

	extracted := documents.ExtractedFields{
		DocumentType:   fields.DocumentType,
		LicenseNumber:  strings.TrimSpace(fields.LicenseNumber),
		OwnerName:      strings.TrimSpace(fields.OwnerName),
		ExpirationDate: parseExpirationDate(fields.ExpirationDate),
		ExtractedAt:    time.Now().UTC(),
	}
	finalStatus, err := s.Docs.CommitVerdict(ctx, orgID, job.DocumentID, extracted, verdict)
	if err != nil {
		if errors.Is(err, documents.ErrLineageConflict) {
			return s.failJob(ctx, orgID, jobID, "lineage_conflict", fmt.Errorf("commit verdict: %w", err))
		}
		return s.failJob(ctx, orgID, jobID, "internal_error", fmt.Errorf("commit verdict: %w", err))
	}

	result := map[string]any{
		"documentType":   fields.DocumentType,
		"licenseNumber":  extracted.LicenseNumber,
		"ownerName":      extracted.OwnerName,
		"expirationDate": fields.ExpirationDate,
		"verdict":        verdict,
		"finalStatus":    finalStatus,
		"provider":       s.Provider,
		"model":          s.Model,
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.Complete(ctx, orgID, jobID, result, completedAt); err != nil {
		return s.failJob(ctx, orgID, jobID, "internal_error", fmt.Errorf("set result: %w", err))
	}

	metrics.IncJobCompleted()
	metrics.ObserveJobDurationSeconds(completedAt.Sub(startedAt).Seconds())
	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"org_id":            orgID,
		"job_id":            jobID,
		"document_id":       job.DocumentID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"final_status":      finalStatus,
		"duration_ms":       completedAt.Sub(startedAt).Milliseconds(),
	})
	return nil
}

func (s *Service) failJob(ctx context.Context, orgID, jobID, code string, cause error) error {
	metrics.IncJobFailed()
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	if err := s.Repo.Fail(ctx, orgID, jobID, code, message, time.Now().UTC()); err != nil {
		telemetry.Error("job.fail_write", map[string]any{
			"org_id": orgID,
			"job_id": jobID,
			"error":  err.Error(),
		})
	}
	telemetry.Error("job.failed", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"org_id":     orgID,
		"job_id":     jobID,
		"error_code": code,
		"error":      message,
	})
	return cause
}

// parseExpirationDate accepts bare ISO dates or RFC 3339 timestamps and
// truncates to the calendar day; anything else means no expiration.
func parseExpirationDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if len(s) < 10 {
		return nil
	}
	day, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return nil
	}
	return &day
}
