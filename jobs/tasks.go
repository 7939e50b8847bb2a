package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPlanRenewal is the periodic plan renewal check.
	TaskPlanRenewal = "plan:renew"
)

// NewPlanRenewalTask constructs the renewal check task. The check carries no
// payload: it reads the clock when it runs.
func NewPlanRenewalTask() *asynq.Task {
	return asynq.NewTask(TaskPlanRenewal, nil)
}
