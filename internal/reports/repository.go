package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekid-reports/ekid/internal/platform/db"
	"github.com/ekid-reports/ekid/internal/shared"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reportWithPlanColumns = `
	r.id, r.plan_id, r.user_id, r.achieved, r.percentage, r.notes,
	r.status, r.submitted_at, r.created_at, r.updated_at,
	p.target, p.deadline`

func scanReportWithPlan(row pgx.Row) (*Report, error) {
	var r Report
	err := row.Scan(
		&r.ID, &r.PlanID, &r.UserID, &r.Achieved, &r.Percentage, &r.Notes,
		&r.Status, &r.SubmittedAt, &r.CreatedAt, &r.UpdatedAt,
		&r.PlanTarget, &r.PlanDeadline,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindWithPlan loads a report together with its plan's target and deadline.
func (r *Repository) FindWithPlan(ctx context.Context, id int64) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reportWithPlanColumns+`
		FROM reports r
		JOIN plans p ON p.id = r.plan_id
		WHERE r.id = $1`, id)
	rep, err := scanReportWithPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	return rep, nil
}

// FindForUserAndPlan loads the caller's own report for the given plan.
func (r *Repository) FindForUserAndPlan(ctx context.Context, userID, planID int64) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reportWithPlanColumns+`
		FROM reports r
		JOIN plans p ON p.id = r.plan_id
		WHERE r.user_id = $1 AND r.plan_id = $2`, userID, planID)
	rep, err := scanReportWithPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report for user %d plan %d: %w", userID, planID, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	return rep, nil
}

// ListForUser returns the caller's reports across all plans, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportWithPlanColumns+`
		FROM reports r
		JOIN plans p ON p.id = r.plan_id
		WHERE r.user_id = $1
		ORDER BY p.fiscal_year DESC, p.fiscal_month DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		rep, err := scanReportWithPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

// ListByPlan returns every report for a plan with submitter and branch names,
// for the admin overview and the export.
func (r *Repository) ListByPlan(ctx context.Context, planID int64) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportWithPlanColumns+`, u.name, COALESCE(b.name, '')
		FROM reports r
		JOIN plans p ON p.id = r.plan_id
		JOIN users u ON u.id = r.user_id
		LEFT JOIN branches b ON b.id = u.branch_id
		WHERE r.plan_id = $1
		ORDER BY b.name NULLS FIRST, u.name`, planID)
	if err != nil {
		return nil, fmt.Errorf("list plan reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var rep Report
		err := rows.Scan(
			&rep.ID, &rep.PlanID, &rep.UserID, &rep.Achieved, &rep.Percentage, &rep.Notes,
			&rep.Status, &rep.SubmittedAt, &rep.CreatedAt, &rep.UpdatedAt,
			&rep.PlanTarget, &rep.PlanDeadline,
			&rep.UserName, &rep.BranchName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// UpdateSubmission records the one pending-to-final transition. The status
// guard in the WHERE clause makes the transition race-safe.
func (r *Repository) UpdateSubmission(ctx context.Context, id int64, achieved, percentage float64, notes string, status Status, submittedAt time.Time) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE reports r
		SET achieved = $2, percentage = $3, notes = $4, status = $5,
		    submitted_at = $6, updated_at = now()
		FROM plans p
		WHERE r.id = $1 AND r.status = 'pending' AND p.id = r.plan_id
		RETURNING `+reportWithPlanColumns, id, achieved, percentage, notes, status, submittedAt)
	rep, err := scanReportWithPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %d no longer pending: %w", id, shared.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	return rep, nil
}

// FindActivity loads one activity and the plan it belongs to.
func (r *Repository) FindActivity(ctx context.Context, id int64) (planID int64, target float64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT plan_id, target FROM activities WHERE id = $1`, id,
	).Scan(&planID, &target)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("activity %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("find activity: %w", err)
	}
	return planID, target, nil
}

// CreateActivityEntry inserts a per-activity achieved value. The unique
// constraint on (report_id, activity_id) rejects duplicates.
func (r *Repository) CreateActivityEntry(ctx context.Context, reportID, activityID int64, achieved, percentage float64) (*ActivityEntry, error) {
	var e ActivityEntry
	err := r.pool.QueryRow(ctx, `
		INSERT INTO activity_entries (report_id, activity_id, achieved, percentage)
		VALUES ($1, $2, $3, $4)
		RETURNING id, report_id, activity_id, achieved, percentage, created_at`,
		reportID, activityID, achieved, percentage,
	).Scan(&e.ID, &e.ReportID, &e.ActivityID, &e.Achieved, &e.Percentage, &e.CreatedAt)
	if db.IsUniqueViolation(err) {
		return nil, fmt.Errorf("activity %d already reported: %w", activityID, shared.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create activity entry: %w", err)
	}
	return &e, nil
}

// ListActivityEntries returns all per-activity entries for a report.
func (r *Repository) ListActivityEntries(ctx context.Context, reportID int64) ([]ActivityEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_id, activity_id, achieved, percentage, created_at
		FROM activity_entries
		WHERE report_id = $1
		ORDER BY id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.ActivityID, &e.Achieved, &e.Percentage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
