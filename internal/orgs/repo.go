package orgs

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "org not found" }

type Repo interface {
	Upsert(ctx context.Context, org Org) error
	GetByID(ctx context.Context, orgID string) (Org, error)
	// ListIDs returns every org id; the notification scanner walks these.
	ListIDs(ctx context.Context) ([]string, error)
	// Purge removes the org row plus its jobs, notifications, and quota
	// rows. Documents are soft-deleted by the documents repo separately.
	Purge(ctx context.Context, orgID string) error
}
