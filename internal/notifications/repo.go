package notifications

import "context"

// Repo defines persistence operations for notifications.
type Repo interface {
	// CreateIfAbsent inserts the notification unless one already exists for
	// the same (org, document, urgency) triple. Returns true when a row was
	// actually created.
	CreateIfAbsent(ctx context.Context, n Notification) (bool, error)
	ListByOrg(ctx context.Context, orgID string, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, orgID, notificationID string) error
}
