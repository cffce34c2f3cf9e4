package orgs

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, org Org) error {
	const query = `
INSERT INTO orgs (id, name, plan, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  updated_at = now()`
	plan := org.Plan
	if plan == "" {
		plan = "free"
	}
	_, err := r.DB.ExecContext(ctx, query, org.ID, org.Name, plan)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, orgID string) (Org, error) {
	const query = `
SELECT id, name, plan, created_at, updated_at
FROM orgs
WHERE id = $1
LIMIT 1`
	var org Org
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, orgID).Scan(
		&org.ID,
		&org.Name,
		&org.Plan,
		&org.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Org{}, ErrNotFound
		}
		return Org{}, err
	}
	if updatedAt.Valid {
		org.UpdatedAt = updatedAt.Time
	} else {
		org.UpdatedAt = time.Now().UTC()
	}
	return org, nil
}

func (r *PGRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM orgs ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Purge deletes the org and its dependent rows in one transaction.
func (r *PGRepo) Purge(ctx context.Context, orgID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM notifications WHERE org_id = $1`,
		`DELETE FROM extraction_jobs WHERE org_id = $1`,
		`DELETE FROM org_usage WHERE org_id = $1`,
		`DELETE FROM users WHERE org_id = $1`,
		`DELETE FROM orgs WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, orgID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var _ Repo = (*PGRepo)(nil)
