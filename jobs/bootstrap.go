package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/corpsite/corpsite/internal/observability"
	"github.com/corpsite/corpsite/internal/rbac"
)

// Bootstrapper runs the catalog bootstrap.
type Bootstrapper interface {
	SetupDefaultPermissions(ctx context.Context) (rbac.BootstrapReport, error)
}

// BootstrapJob processes TaskRBACBootstrap tasks.
type BootstrapJob struct {
	service Bootstrapper
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewBootstrapJob constructs the job. metrics may be nil.
func NewBootstrapJob(service Bootstrapper, logger *slog.Logger, metrics *observability.Metrics) *BootstrapJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &BootstrapJob{service: service, logger: logger, metrics: metrics}
}

// Handle executes the bootstrap. A malformed payload is not retried.
func (j *BootstrapJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload BootstrapPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			j.logger.Error("rbac bootstrap payload", slog.Any("error", err))
			return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
		}
	}
	tracker := j.metrics.Track(TaskRBACBootstrap)
	report, err := j.service.SetupDefaultPermissions(ctx)
	if err != nil {
		j.logger.Error("rbac bootstrap failed", slog.String("reason", payload.Reason), slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger.Info("rbac bootstrap done",
		slog.String("reason", payload.Reason),
		slog.Int64("requested_by", payload.RequestedBy),
		slog.Int("permissions", report.Upserted))
	return tracker.End(nil)
}
