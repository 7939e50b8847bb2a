package reports

import (
	"time"
)

// Status enumerates the lifecycle of a report obligation.
type Status string

const (
	// StatusPending marks a stub waiting for its branch user to report.
	StatusPending Status = "pending"
	// StatusSubmitted marks a report turned in on or before the deadline.
	StatusSubmitted Status = "submitted"
	// StatusLate marks a report turned in after the deadline.
	StatusLate Status = "late"
)

// Report is one branch user's obligation to report against a plan. A stub is
// created pending at plan creation and transitions to submitted or late
// exactly once.
type Report struct {
	ID          int64
	PlanID      int64
	UserID      int64
	Achieved    float64
	Percentage  float64
	Notes       string
	Status      Status
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined plan fields needed to grade a submission.
	PlanTarget   float64
	PlanDeadline time.Time

	// Joined display fields for admin listings.
	UserName   string
	BranchName string
}

// ActivityEntry is a per-activity achieved value attached to a report.
type ActivityEntry struct {
	ID         int64
	ReportID   int64
	ActivityID int64
	Achieved   float64
	Percentage float64
	CreatedAt  time.Time
}

// SubmitInput captures a monthly report submission.
type SubmitInput struct {
	Achieved float64 `validate:"gte=0"`
	Notes    string  `validate:"max=2000"`
}
