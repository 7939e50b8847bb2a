package branches

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekid-reports/ekid/internal/shared"
)

// Kind distinguishes the two branch tiers of the organization.
type Kind string

const (
	// KindSubCity is a sub-city level office.
	KindSubCity Kind = "subcity"
	// KindWoreda is a woreda level office.
	KindWoreda Kind = "woreda"
)

// Branch represents a reporting office.
type Branch struct {
	ID        int64
	Name      string
	Kind      Kind
	CreatedAt time.Time
}

// CreateBranchInput captures branch creation input.
type CreateBranchInput struct {
	Name string
	Kind Kind
}

// Validate ensures correctness.
func (in CreateBranchInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("branches: name required: %w", shared.ErrValidation)
	}
	if in.Kind != KindSubCity && in.Kind != KindWoreda {
		return fmt.Errorf("branches: unknown kind %q: %w", in.Kind, shared.ErrValidation)
	}
	return nil
}
