package dispatch_workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/workers/dispatch/activities"
)

// Input selects which region's offices this run resets; each region runs on
// its own cron schedule so the cut-over lands at local midnight.
type Input struct {
	Region location.Region
}

// DailyResetWorkflow zeroes every shipper's pickup/delivery leg counters for
// one region. The workflow is deterministic; all side effects go through
// activities. Offices are reset one by one and a single office failing does
// not abort the rest; the activity retry policy plus the idempotent reset
// make partial failure safe to re-run.
func DailyResetWorkflow(ctx workflow.Context, input Input) error {
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var a *activities.Activities

	var offices []activities.OfficeDTO
	if err := workflow.ExecuteActivity(ctx, a.ListOffices, activities.ListOfficesRequest{Region: input.Region}).Get(ctx, &offices); err != nil {
		return fmt.Errorf("list offices for region %s: %w", input.Region, err)
	}

	var failed int

	for _, office := range offices {
		req := activities.ResetOfficeRequest{PostOfficeID: office.ID, OfficeCode: office.Code}
		if err := workflow.ExecuteActivity(ctx, a.ResetOffice, req).Get(ctx, nil); err != nil {
			logger.Error("reset failed for office", "office", office.Code, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("daily reset: %d of %d offices failed", failed, len(offices))
	}

	logger.Info("daily leg-counter reset complete", "region", input.Region, "offices", len(offices))

	return nil
}
