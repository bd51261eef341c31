package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRBACBootstrap upserts the permission catalog and re-applies the
	// default grants.
	TaskRBACBootstrap = "rbac:bootstrap"
)

// BootstrapPayload describes a catalog bootstrap request.
type BootstrapPayload struct {
	// Reason is logged with the run, e.g. "deploy" or "cron".
	Reason string `json:"reason"`
	// RequestedBy is the principal that enqueued the run, 0 for the system.
	RequestedBy int64 `json:"requested_by,omitempty"`
}

// NewBootstrapTask constructs an Asynq task.
func NewBootstrapTask(payload BootstrapPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRBACBootstrap, data), nil
}
