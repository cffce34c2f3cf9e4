package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, orgID string) (Usage, error) {
	return s.ensure(ctx, orgID)
}

func (s *pgStore) EnsurePeriod(ctx context.Context, orgID string) (Usage, error) {
	return s.ensure(ctx, orgID)
}

func (s *pgStore) Consume(ctx context.Context, orgID string, n int) (Usage, error) {
	if n <= 0 {
		return s.ensure(ctx, orgID)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, orgID)
	if err != nil {
		return Usage{}, err
	}

	if u.Used+n > u.Limit {
		err = ErrLimitReached
		return Usage{}, err
	}
	u.Used += n
	if _, err = tx.ExecContext(ctx, `
UPDATE org_usage SET used = $1 WHERE org_id = $2`, u.Used, orgID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Reset(ctx context.Context, orgID string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	def := defaultUsage()
	resetsAt := time.Now().UTC().Add(periodLength)
	if _, err = tx.ExecContext(ctx, `
INSERT INTO org_usage (org_id, plan, usage_limit, used, resets_at)
VALUES ($1, $2, $3, 0, $4)
ON CONFLICT (org_id) DO UPDATE SET used = 0, resets_at = EXCLUDED.resets_at`,
		orgID, def.Plan, def.Limit, resetsAt); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return Usage{Plan: def.Plan, Limit: def.Limit, Used: 0, ResetsAt: resetsAt}, nil
}

func (s *pgStore) ensure(ctx context.Context, orgID string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	u, err := s.lockAndEnsure(ctx, tx, orgID)
	if err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, orgID string) (Usage, error) {
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT plan, usage_limit, used, resets_at FROM org_usage WHERE org_id = $1 FOR UPDATE`, orgID)
	err := row.Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			u = defaultUsage()
			if _, err = tx.ExecContext(ctx, `
INSERT INTO org_usage (org_id, plan, usage_limit, used, resets_at) VALUES ($1, $2, $3, $4, $5)`,
				orgID, u.Plan, u.Limit, u.Used, u.ResetsAt); err != nil {
				return Usage{}, err
			}
			return u, nil
		}
		return Usage{}, err
	}

	now := time.Now().UTC()
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(periodLength)
		if _, err = tx.ExecContext(ctx, `UPDATE org_usage SET used = $1, resets_at = $2 WHERE org_id = $3`, u.Used, u.ResetsAt, orgID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
