package processing

import (
	"context"
	"time"
)

// Repo defines persistence operations for extraction jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, orgID, jobID string) (Job, error)
	ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Job, error)
	MarkProcessing(ctx context.Context, orgID, jobID string, startedAt time.Time) error
	Complete(ctx context.Context, orgID, jobID string, result map[string]any, completedAt time.Time) error
	Fail(ctx context.Context, orgID, jobID, errorCode, errorMessage string, completedAt time.Time) error
}
