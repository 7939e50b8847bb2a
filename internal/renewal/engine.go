// Package renewal drives the monthly plan lifecycle. A periodic check
// archives a plan once its deadline has passed, materializes the plan for the
// next fiscal period, and fans out a pending report stub to every branch
// user. The whole transition runs in one transaction so a failure leaves the
// previous state untouched until the next tick retries.
package renewal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ekid-reports/ekid/internal/period"
	"github.com/ekid-reports/ekid/internal/plans"
	"github.com/ekid-reports/ekid/internal/shared"
)

// defaultTitle names a plan created when no prior plan exists to copy from.
const defaultTitle = "Monthly Plan"

// Store is the transactional persistence surface of one renewal check. All
// methods see the same transaction.
type Store interface {
	// FindActivePlan returns the single active plan or shared.ErrNotFound.
	FindActivePlan(ctx context.Context) (*plans.Plan, error)
	// FindLatestPlan returns the most recent plan of any status or
	// shared.ErrNotFound when the table is empty.
	FindLatestPlan(ctx context.Context) (*plans.Plan, error)
	CreatePlan(ctx context.Context, in CreatePlanInput) (*plans.Plan, error)
	ArchivePlan(ctx context.Context, id int64) error
	ListBranchUserIDs(ctx context.Context) ([]int64, error)
	BulkCreateReports(ctx context.Context, planID int64, userIDs []int64) error
}

// TxRepository demarcates the transaction a renewal check runs in.
type TxRepository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// CreatePlanInput carries the fields of a plan materialized by the engine.
type CreatePlanInput struct {
	Title       string
	Description string
	Period      period.Period
	Target      float64
	Deadline    time.Time
}

// Engine is the renewal state machine. It is the only component that changes
// a plan's status.
type Engine struct {
	repo   TxRepository
	logger *slog.Logger
}

func NewEngine(repo TxRepository, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, logger: logger}
}

// CheckAndRenew runs one renewal check at the given instant.
//
// No active plan: create one for the current period, copying the target from
// the latest prior plan when one exists. Active plan before its deadline:
// no-op. Active plan past its deadline: archive it and create the plan for
// the next period with the same target. Every created plan fans out pending
// stubs to the branch users present at creation time.
//
// Running it repeatedly within one period is idempotent: the unique active
// constraint makes a duplicate create fail with shared.ErrConflict instead of
// silently duplicating plans or stubs.
func (e *Engine) CheckAndRenew(ctx context.Context, now time.Time) error {
	now = now.UTC()
	return e.repo.InTx(ctx, func(ctx context.Context, s Store) error {
		active, err := s.FindActivePlan(ctx)
		if errors.Is(err, shared.ErrNotFound) {
			return e.bootstrap(ctx, s, now)
		}
		if err != nil {
			return fmt.Errorf("find active plan: %w", err)
		}

		if !now.After(active.Deadline) {
			return nil
		}

		if err := s.ArchivePlan(ctx, active.ID); err != nil {
			return fmt.Errorf("archive plan %d: %w", active.ID, err)
		}
		next := active.Period().Next()
		created, err := s.CreatePlan(ctx, CreatePlanInput{
			Title:       active.Title,
			Description: active.Description,
			Period:      next,
			Target:      active.Target,
			Deadline:    period.DeadlineFor(next),
		})
		if err != nil {
			return fmt.Errorf("create plan for %s: %w", next.Name(), err)
		}
		e.logger.Info("plan rolled over",
			slog.Int64("archived_plan_id", active.ID),
			slog.Int64("plan_id", created.ID),
			slog.Int("fiscal_month", next.Month),
			slog.Int("fiscal_year", next.Year))
		return e.fanOut(ctx, s, created.ID)
	})
}

// bootstrap creates the plan for the current period when none is active. The
// target comes from the most recent prior plan so a fresh period starts from
// the last known commitment.
func (e *Engine) bootstrap(ctx context.Context, s Store, now time.Time) error {
	p := period.Current(now)

	title := defaultTitle
	description := ""
	target := 0.0
	latest, err := s.FindLatestPlan(ctx)
	switch {
	case err == nil:
		title = latest.Title
		description = latest.Description
		target = latest.Target
	case !errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("find latest plan: %w", err)
	}

	created, err := s.CreatePlan(ctx, CreatePlanInput{
		Title:       title,
		Description: description,
		Period:      p,
		Target:      target,
		Deadline:    period.DeadlineFor(p),
	})
	if err != nil {
		return fmt.Errorf("create plan for %s: %w", p.Name(), err)
	}
	e.logger.Info("plan created",
		slog.Int64("plan_id", created.ID),
		slog.Int("fiscal_month", p.Month),
		slog.Int("fiscal_year", p.Year),
		slog.Float64("target", target))
	return e.fanOut(ctx, s, created.ID)
}

func (e *Engine) fanOut(ctx context.Context, s Store, planID int64) error {
	userIDs, err := s.ListBranchUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list branch users: %w", err)
	}
	if len(userIDs) == 0 {
		e.logger.Warn("no branch users to fan out to", slog.Int64("plan_id", planID))
		return nil
	}
	if err := s.BulkCreateReports(ctx, planID, userIDs); err != nil {
		return fmt.Errorf("fan out report stubs: %w", err)
	}
	e.logger.Info("report stubs fanned out",
		slog.Int64("plan_id", planID),
		slog.Int("count", len(userIDs)))
	return nil
}
