package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ekid-reports/ekid/internal/shared"
)

// RepositoryPort is the persistence surface the service needs.
type RepositoryPort interface {
	FindWithPlan(ctx context.Context, id int64) (*Report, error)
	FindForUserAndPlan(ctx context.Context, userID, planID int64) (*Report, error)
	ListForUser(ctx context.Context, userID int64) ([]Report, error)
	ListByPlan(ctx context.Context, planID int64) ([]Report, error)
	UpdateSubmission(ctx context.Context, id int64, achieved, percentage float64, notes string, status Status, submittedAt time.Time) (*Report, error)
	FindActivity(ctx context.Context, id int64) (planID int64, target float64, err error)
	CreateActivityEntry(ctx context.Context, reportID, activityID int64, achieved, percentage float64) (*ActivityEntry, error)
	ListActivityEntries(ctx context.Context, reportID int64) ([]ActivityEntry, error)
}

type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo RepositoryPort) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Submit turns a pending stub into a graded report. The percentage is
// achieved/target*100 when the target is positive and 0 otherwise, stored
// unclamped so over-achievement stays visible. A submission after the plan
// deadline is recorded as late instead of rejected.
func (s *Service) Submit(ctx context.Context, userID, reportID int64, in SubmitInput) (*Report, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	rep, err := s.repo.FindWithPlan(ctx, reportID)
	if err != nil {
		return nil, err
	}
	// A caller may only see their own report. Hiding foreign reports behind
	// not-found avoids leaking their existence.
	if rep.UserID != userID {
		return nil, fmt.Errorf("report %d: %w", reportID, shared.ErrNotFound)
	}
	if rep.Status != StatusPending {
		return nil, fmt.Errorf("report %d already submitted: %w", reportID, shared.ErrConflict)
	}

	now := s.now().UTC()
	status := StatusSubmitted
	if now.After(rep.PlanDeadline) {
		status = StatusLate
	}
	pct := Percentage(in.Achieved, rep.PlanTarget)

	return s.repo.UpdateSubmission(ctx, reportID, in.Achieved, pct, in.Notes, status, now)
}

// SubmitActivity records an achieved value for one activity on the caller's
// report. Activity percentages are capped at 100.
func (s *Service) SubmitActivity(ctx context.Context, userID, reportID, activityID int64, achieved float64) (*ActivityEntry, error) {
	if achieved < 0 {
		return nil, fmt.Errorf("achieved must not be negative: %w", shared.ErrValidation)
	}

	rep, err := s.repo.FindWithPlan(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep.UserID != userID {
		return nil, fmt.Errorf("report %d: %w", reportID, shared.ErrNotFound)
	}

	planID, target, err := s.repo.FindActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if planID != rep.PlanID {
		return nil, fmt.Errorf("activity %d: %w", activityID, shared.ErrNotFound)
	}

	pct := Percentage(achieved, target)
	if pct > 100 {
		pct = 100
	}
	return s.repo.CreateActivityEntry(ctx, reportID, activityID, achieved, pct)
}

// Mine returns the caller's report for the given plan.
func (s *Service) Mine(ctx context.Context, userID, planID int64) (*Report, error) {
	return s.repo.FindForUserAndPlan(ctx, userID, planID)
}

// History returns all of the caller's reports, newest period first.
func (s *Service) History(ctx context.Context, userID int64) ([]Report, error) {
	return s.repo.ListForUser(ctx, userID)
}

// ListByPlan returns every report for a plan, for the admin overview.
func (s *Service) ListByPlan(ctx context.Context, planID int64) ([]Report, error) {
	return s.repo.ListByPlan(ctx, planID)
}

// Entries returns the per-activity breakdown of the caller's report.
func (s *Service) Entries(ctx context.Context, userID, reportID int64) ([]ActivityEntry, error) {
	rep, err := s.repo.FindWithPlan(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep.UserID != userID {
		return nil, fmt.Errorf("report %d: %w", reportID, shared.ErrNotFound)
	}
	return s.repo.ListActivityEntries(ctx, reportID)
}

// Percentage grades achieved against target. A zero or negative target
// yields 0 rather than dividing by zero.
func Percentage(achieved, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return achieved / target * 100
}
