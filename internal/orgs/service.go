package orgs

import (
	"context"

	"compliance-backend/internal/shared/telemetry"
)

// DocumentPurger soft-deletes every document that belongs to an org.
type DocumentPurger interface {
	PurgeOrg(ctx context.Context, orgID string) (int, error)
}

type Service struct {
	Repo Repo
	Docs DocumentPurger
}

// EnsureOrg registers the org on first sight. Sign-in calls this so a
// tenant exists before any document lands.
func (s *Service) EnsureOrg(ctx context.Context, orgID, name string) error {
	if orgID == "" {
		return ErrNotFound
	}
	return s.Repo.Upsert(ctx, Org{ID: orgID, Name: name})
}

func (s *Service) Get(ctx context.Context, orgID string) (Org, error) {
	return s.Repo.GetByID(ctx, orgID)
}

// ListIDs satisfies the notification scanner's org walk.
func (s *Service) ListIDs(ctx context.Context) ([]string, error) {
	return s.Repo.ListIDs(ctx)
}

// Purge removes the tenant and everything it owns.
func (s *Service) Purge(ctx context.Context, orgID string) error {
	if _, err := s.Repo.GetByID(ctx, orgID); err != nil {
		return err
	}
	if s.Docs != nil {
		if _, err := s.Docs.PurgeOrg(ctx, orgID); err != nil {
			return err
		}
	}
	if err := s.Repo.Purge(ctx, orgID); err != nil {
		return err
	}
	telemetry.Info("org.purged", map[string]any{"orgId": orgID})
	return nil
}
