package notifications

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateIfAbsent inserts with ON CONFLICT DO NOTHING over the unique
// (org_id, document_id, urgency) index.
func (r *PGRepo) CreateIfAbsent(ctx context.Context, n Notification) (bool, error) {
	const query = `
INSERT INTO notifications (id, org_id, document_id, urgency, message, read, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6)
ON CONFLICT (org_id, document_id, urgency) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query, n.ID, n.OrgID, n.DocumentID, n.Urgency, n.Message, n.CreatedAt)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// ListByOrg returns notifications newest-first.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
SELECT id, org_id, document_id, urgency, message, read, created_at
FROM notifications
WHERE org_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += `
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.OrgID, &n.DocumentID, &n.Urgency, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.
func (r *PGRepo) MarkRead(ctx context.Context, orgID, notificationID string) error {
	const query = `
UPDATE notifications SET read = TRUE
WHERE org_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, orgID, notificationID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
