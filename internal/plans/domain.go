package plans

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekid-reports/ekid/internal/period"
	"github.com/ekid-reports/ekid/internal/shared"
)

// Status enumerates plan lifecycle values.
type Status string

const (
	// StatusActive marks the plan branch users currently report against.
	// At most one plan is active per fiscal period, enforced by the store.
	StatusActive Status = "active"
	// StatusArchived marks a plan whose deadline has passed and that was
	// rolled over. Archived plans are never mutated again.
	StatusArchived Status = "archived"
)

// Plan is the reporting target for exactly one fiscal period.
type Plan struct {
	ID          int64
	Title       string
	Description string
	FiscalMonth int
	FiscalYear  int
	Target      float64
	Deadline    time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Period returns the fiscal period this plan belongs to.
func (p Plan) Period() period.Period {
	return period.Period{Month: p.FiscalMonth, Year: p.FiscalYear}
}

// Activity is one line item of a plan with its own target.
type Activity struct {
	ID        int64
	PlanID    int64
	Title     string
	Target    float64
	CreatedAt time.Time
}

// CreateActivityInput captures activity creation input.
type CreateActivityInput struct {
	Title  string
	Target float64
}

// Validate ensures correctness.
func (in CreateActivityInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("plans: activity title required: %w", shared.ErrValidation)
	}
	if in.Target < 0 {
		return fmt.Errorf("plans: activity target must not be negative: %w", shared.ErrValidation)
	}
	return nil
}
