package plans

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekid-reports/ekid/internal/shared"
)

// Repository provides PostgreSQL backed persistence for plans.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const planColumns = `
	id, title, description, fiscal_month, fiscal_year, target, deadline,
	status, created_at, updated_at`

func scanPlan(row pgx.Row) (Plan, error) {
	var p Plan
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.FiscalMonth, &p.FiscalYear,
		&p.Target, &p.Deadline, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// FindActive returns the currently active plan.
func (r *Repository) FindActive(ctx context.Context) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE status = $1
		ORDER BY fiscal_year DESC, fiscal_month DESC
		LIMIT 1`, StatusActive)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Get fetches one plan by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE id = $1`, id)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListArchived returns archived plans, newest period first.
func (r *Repository) ListArchived(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE status = $1
		ORDER BY fiscal_year DESC, fiscal_month DESC`, StatusArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateTarget sets a new target amount on the active plan and returns it.
func (r *Repository) UpdateTarget(ctx context.Context, id int64, target float64) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE plans
		SET target = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING `+planColumns, id, target, StatusActive)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListActivities returns the activities attached to a plan.
func (r *Repository) ListActivities(ctx context.Context, planID int64) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, plan_id, title, target, created_at
		FROM activities
		WHERE plan_id = $1
		ORDER BY id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.PlanID, &a.Title, &a.Target, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CreateActivity inserts one activity for a plan.
func (r *Repository) CreateActivity(ctx context.Context, planID int64, in CreateActivityInput) (*Activity, error) {
	var a Activity
	err := r.pool.QueryRow(ctx, `
		INSERT INTO activities (plan_id, title, target)
		VALUES ($1, $2, $3)
		RETURNING id, plan_id, title, target, created_at`,
		planID, in.Title, in.Target,
	).Scan(&a.ID, &a.PlanID, &a.Title, &a.Target, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
