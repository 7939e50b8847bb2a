package renewal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekid-reports/ekid/internal/platform/db"
	"github.com/ekid-reports/ekid/internal/plans"
	"github.com/ekid-reports/ekid/internal/shared"
)

// Repository runs renewal checks against Postgres. Each InTx call wraps the
// whole check in a repeatable-read transaction.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

type txStore struct {
	tx pgx.Tx
}

const planColumns = `id, title, description, fiscal_month, fiscal_year, target, deadline, status, created_at, updated_at`

func scanPlan(row pgx.Row) (*plans.Plan, error) {
	var p plans.Plan
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.FiscalMonth, &p.FiscalYear,
		&p.Target, &p.Deadline, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *txStore) FindActivePlan(ctx context.Context) (*plans.Plan, error) {
	row := s.tx.QueryRow(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE status = 'active'
		ORDER BY fiscal_year DESC, fiscal_month DESC
		LIMIT 1`)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("active plan: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find active plan: %w", err)
	}
	return p, nil
}

func (s *txStore) FindLatestPlan(ctx context.Context) (*plans.Plan, error) {
	row := s.tx.QueryRow(ctx, `
		SELECT `+planColumns+`
		FROM plans
		ORDER BY fiscal_year DESC, fiscal_month DESC
		LIMIT 1`)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("latest plan: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find latest plan: %w", err)
	}
	return p, nil
}

func (s *txStore) CreatePlan(ctx context.Context, in CreatePlanInput) (*plans.Plan, error) {
	row := s.tx.QueryRow(ctx, `
		INSERT INTO plans (title, description, fiscal_month, fiscal_year, target, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING `+planColumns,
		in.Title, in.Description, in.Period.Month, in.Period.Year, in.Target, in.Deadline)
	p, err := scanPlan(row)
	if db.IsUniqueViolation(err) {
		return nil, fmt.Errorf("plan for %d-%d already active: %w", in.Period.Month, in.Period.Year, shared.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return p, nil
}

func (s *txStore) ArchivePlan(ctx context.Context, id int64) error {
	tag, err := s.tx.Exec(ctx, `
		UPDATE plans SET status = 'archived', updated_at = now()
		WHERE id = $1 AND status = 'active'`, id)
	if err != nil {
		return fmt.Errorf("archive plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %d not active: %w", id, shared.ErrConflict)
	}
	return nil
}

func (s *txStore) ListBranchUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT id FROM users
		WHERE role = 'branch' AND is_active
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list branch users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *txStore) BulkCreateReports(ctx context.Context, planID int64, userIDs []int64) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO reports (plan_id, user_id, status)
		SELECT $1, unnest($2::bigint[]), 'pending'`, planID, userIDs)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("report stubs already exist for plan %d: %w", planID, shared.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("bulk create reports: %w", err)
	}
	return nil
}
