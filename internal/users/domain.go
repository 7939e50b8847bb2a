package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekid-reports/ekid/internal/shared"
)

// Role enumerates account roles.
type Role string

const (
	// RoleAdmin manages plans, branches and accounts at the head office.
	RoleAdmin Role = "admin"
	// RoleBranch marks a reporting branch account; these receive report
	// obligations whenever a plan is created.
	RoleBranch Role = "branch"
)

// User represents an account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	BranchID     *int64
	BranchName   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput captures account creation input.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     Role
	BranchID *int64
}

// Validate ensures correctness.
func (in CreateUserInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("users: email required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("users: name required: %w", shared.ErrValidation)
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("users: password must be at least 8 characters: %w", shared.ErrValidation)
	}
	switch in.Role {
	case RoleAdmin:
	case RoleBranch:
		if in.BranchID == nil || *in.BranchID == 0 {
			return fmt.Errorf("users: branch accounts require a branch: %w", shared.ErrValidation)
		}
	default:
		return fmt.Errorf("users: unknown role %q: %w", in.Role, shared.ErrValidation)
	}
	return nil
}
