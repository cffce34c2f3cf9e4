package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/shared/metrics"
	"compliance-backend/internal/shared/telemetry"
)

// OrgLister yields the org IDs a scan should cover.
type OrgLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Service creates expiration notifications from urgency scans.
type Service struct {
	Repo Repo
	Docs *documents.Service
	Orgs OrgLister
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Scan walks every org's active documents and records a notification for each
// document sitting in the critical or high urgency tier. Safe to run on a
// timer: existing (document, tier) notifications are skipped.
func (s *Service) Scan(ctx context.Context) (int, error) {
	orgIDs, err := s.Orgs.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orgs: %w", err)
	}

	created := 0
	for _, orgID := range orgIDs {
		n, err := s.ScanOrg(ctx, orgID)
		if err != nil {
			telemetry.Error("notifications.scan_org", map[string]any{
				"org_id": orgID,
				"error":  err.Error(),
			})
			continue
		}
		created += n
	}
	return created, nil
}

// ScanOrg scans a single org.
func (s *Service) ScanOrg(ctx context.Context, orgID string) (int, error) {
	views, err := s.Docs.Current(ctx, orgID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, view := range views {
		if view.UrgencyLevel == nil {
			continue
		}
		level := *view.UrgencyLevel
		if level != compliance.UrgencyCritical && level != compliance.UrgencyHigh {
			continue
		}

		n := Notification{
			ID:         uuid.NewString(),
			OrgID:      orgID,
			DocumentID: view.ID,
			Urgency:    string(level),
			Message:    buildMessage(view),
			CreatedAt:  s.now(),
		}
		inserted, err := s.Repo.CreateIfAbsent(ctx, n)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
			metrics.IncNotificationCreated()
			telemetry.Info("notification.created", map[string]any{
				"org_id":      orgID,
				"document_id": view.ID,
				"urgency":     n.Urgency,
			})
		}
	}
	return created, nil
}

// List returns an org's notifications.
func (s *Service) List(ctx context.Context, orgID string, unreadOnly bool, limit int) ([]Notification, error) {
	return s.Repo.ListByOrg(ctx, orgID, unreadOnly, limit)
}

// MarkRead flags a notification as read.
func (s *Service) MarkRead(ctx context.Context, orgID, notificationID string) error {
	return s.Repo.MarkRead(ctx, orgID, notificationID)
}

func buildMessage(view documents.DocumentView) string {
	name := view.OwnerName
	if name == "" {
		name = view.FileName
	}
	kind := view.DocumentType
	if kind == "" {
		kind = "document"
	}
	if view.DaysUntilExpiration == nil {
		return fmt.Sprintf("%s for %s is approaching expiration", kind, name)
	}
	days := *view.DaysUntilExpiration
	switch {
	case days < 0:
		return fmt.Sprintf("%s for %s expired %d days ago", kind, name, -days)
	case days == 0:
		return fmt.Sprintf("%s for %s expires today", kind, name)
	default:
		return fmt.Sprintf("%s for %s expires in %d days", kind, name, days)
	}
}
