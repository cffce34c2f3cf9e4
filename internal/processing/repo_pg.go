package processing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `
id, org_id, document_id, status, error_code, error_message, result,
created_at, started_at, completed_at`

// Create inserts a new queued job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO extraction_jobs (id, org_id, document_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)`
	status := job.Status
	if status == "" {
		status = StatusQueued
	}
	_, err := r.DB.ExecContext(ctx, query, job.ID, job.OrgID, job.DocumentID, status, job.CreatedAt)
	return err
}

// GetByID fetches a job scoped to the org.
func (r *PGRepo) GetByID(ctx context.Context, orgID, jobID string) (Job, error) {
	query := `
SELECT ` + jobColumns + `
FROM extraction_jobs
WHERE org_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, orgID, jobID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

// ListByOrg lists jobs newest-first.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + jobColumns + `
FROM extraction_jobs
WHERE org_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// MarkProcessing moves a queued job to processing.
func (r *PGRepo) MarkProcessing(ctx context.Context, orgID, jobID string, startedAt time.Time) error {
	const query = `
UPDATE extraction_jobs
SET status = $1, started_at = $2, updated_at = $2
WHERE org_id = $3 AND id = $4`
	res, err := r.DB.ExecContext(ctx, query, StatusProcessing, startedAt, orgID, jobID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete records the result payload and marks the job completed.
func (r *PGRepo) Complete(ctx context.Context, orgID, jobID string, result map[string]any, completedAt time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	const query = `
UPDATE extraction_jobs
SET status = $1, result = $2, completed_at = $3, updated_at = $3
WHERE org_id = $4 AND id = $5`
	res, err := r.DB.ExecContext(ctx, query, StatusCompleted, payload, completedAt, orgID, jobID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Fail records the failure reason.
func (r *PGRepo) Fail(ctx context.Context, orgID, jobID, errorCode, errorMessage string, completedAt time.Time) error {
	const query = `
UPDATE extraction_jobs
SET status = $1, error_code = $2, error_message = $3, completed_at = $4, updated_at = $4
WHERE org_id = $5 AND id = $6`
	res, err := r.DB.ExecContext(ctx, query, StatusFailed, errorCode, errorMessage, completedAt, orgID, jobID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var result []byte
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.OrgID,
		&job.DocumentID,
		&job.Status,
		&errorCode,
		&errorMessage,
		&result,
		&job.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return Job{}, err
	}

	job.ErrorCode = errorCode.String
	job.ErrorMessage = errorMessage.String
	if len(result) > 0 {
		if err := json.Unmarshal(result, &job.Result); err != nil {
			return Job{}, err
		}
	}
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}

var _ Repo = (*PGRepo)(nil)
