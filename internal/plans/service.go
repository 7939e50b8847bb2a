package plans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekid-reports/ekid/internal/shared"
)

// RepositoryPort defines data access methods for plans.
type RepositoryPort interface {
	FindActive(ctx context.Context) (*Plan, error)
	Get(ctx context.Context, id int64) (*Plan, error)
	ListArchived(ctx context.Context) ([]Plan, error)
	UpdateTarget(ctx context.Context, id int64, target float64) (*Plan, error)
	ListActivities(ctx context.Context, planID int64) ([]Activity, error)
	CreateActivity(ctx context.Context, planID int64, in CreateActivityInput) (*Activity, error)
}

// Renewer runs the plan renewal check. Implemented by the renewal engine.
type Renewer interface {
	CheckAndRenew(ctx context.Context, now time.Time) error
}

// Service coordinates plan reads and target management.
type Service struct {
	repo    RepositoryPort
	renewer Renewer
	now     func() time.Time
}

// NewService builds the service.
func NewService(repo RepositoryPort, renewer Renewer) *Service {
	return &Service{repo: repo, renewer: renewer, now: func() time.Time { return time.Now().UTC() }}
}

// GetCurrent returns the active plan, creating it through the renewal engine
// when no plan exists yet (first access after deployment).
func (s *Service) GetCurrent(ctx context.Context) (*Plan, error) {
	plan, err := s.repo.FindActive(ctx)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if s.renewer != nil {
		if err := s.renewer.CheckAndRenew(ctx, s.now()); err != nil {
			return nil, fmt.Errorf("plans: materialize current plan: %w", err)
		}
	}
	return s.repo.FindActive(ctx)
}

// Get returns one plan by id.
func (s *Service) Get(ctx context.Context, id int64) (*Plan, error) {
	return s.repo.Get(ctx, id)
}

// ListArchived returns past plans.
func (s *Service) ListArchived(ctx context.Context) ([]Plan, error) {
	return s.repo.ListArchived(ctx)
}

// UpdateTarget changes the target amount on the current plan.
func (s *Service) UpdateTarget(ctx context.Context, target float64) (*Plan, error) {
	if target < 0 {
		return nil, fmt.Errorf("plans: target must not be negative: %w", shared.ErrValidation)
	}
	plan, err := s.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateTarget(ctx, plan.ID, target)
}

// ListCurrentActivities returns the activities of the current plan.
func (s *Service) ListCurrentActivities(ctx context.Context) ([]Activity, error) {
	plan, err := s.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListActivities(ctx, plan.ID)
}

// AddActivity attaches an activity to the current plan.
func (s *Service) AddActivity(ctx context.Context, in CreateActivityInput) (*Activity, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	plan, err := s.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateActivity(ctx, plan.ID, in)
}
