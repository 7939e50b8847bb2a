package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ekid-reports/ekid/internal/jobs"
	"github.com/ekid-reports/ekid/internal/renewal"
)

// RunPlanRenewal executes one renewal check. Errors are logged and swallowed:
// the check is fire-and-forget and the next scheduled tick retries, so a
// failure must never take down the hosting process or trigger a queue retry
// storm.
func RunPlanRenewal(ctx context.Context, engine *renewal.Engine, logger *slog.Logger, metrics *jobmetrics.Metrics) {
	tracker := metrics.Track("plan_renewal")
	err := engine.CheckAndRenew(ctx, time.Now())
	_ = tracker.End(err)
	if err != nil {
		logger.Error("plan renewal check failed", slog.Any("error", err))
		return
	}
	logger.Debug("plan renewal check completed")
}

// NewPlanRenewalHandler adapts RunPlanRenewal to an Asynq handler. It always
// returns nil so the queue never retries a failed check.
func NewPlanRenewalHandler(engine *renewal.Engine, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		RunPlanRenewal(ctx, engine, logger, metrics)
		return nil
	}
}
