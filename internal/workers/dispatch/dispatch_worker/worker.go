package dispatch_worker

import (
	"context"
	"fmt"

	logger "github.com/shortlink-org/go-sdk/logger"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/workers/dispatch/activities"
	dispatch_workflow "github.com/shortlink-org/shop/oms/internal/workers/dispatch/workflow"
)

// TaskQueue hosts the daily leg-counter reset workflow.
const TaskQueue = "oms-dispatch-reset"

// DailyResetWorkflowName is the registered workflow name.
const DailyResetWorkflowName = "DispatchDailyReset"

// New registers and starts the dispatch reset worker, then schedules one
// cron workflow per region at the configured local-midnight cut-over.
// cutovers maps region -> IANA timezone (per-office timezone, config).
func New(ctx context.Context, c client.Client, log logger.Logger, acts *activities.Activities, cutovers map[location.Region]string) (worker.Worker, error) {
	w := worker.New(c, TaskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(dispatch_workflow.DailyResetWorkflow, workflow.RegisterOptions{
		Name: DailyResetWorkflowName,
	})
	w.RegisterActivity(acts.ListOffices)
	w.RegisterActivity(acts.ResetOffice)

	go func() {
		if err := w.Run(worker.InterruptCh()); err != nil {
			panic(err)
		}
	}()

	for region, tz := range cutovers {
		opts := client.StartWorkflowOptions{
			ID:        fmt.Sprintf("dispatch-daily-reset-%s", region),
			TaskQueue: TaskQueue,
			// Midnight in the region's own timezone; re-running an already
			// reset region is a no-op.
			CronSchedule:          fmt.Sprintf("CRON_TZ=%s 0 0 * * *", tz),
			WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		}

		if _, err := c.ExecuteWorkflow(ctx, opts, DailyResetWorkflowName, dispatch_workflow.Input{Region: region}); err != nil {
			return nil, fmt.Errorf("schedule daily reset for region %s: %w", region, err)
		}
	}

	log.Info("dispatch reset worker started")

	return w, nil
}
