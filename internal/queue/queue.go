package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/crescentlab/postpilot/internal/engine"
	"github.com/crescentlab/postpilot/internal/telemetry"
)

// PublishFailure enqueues a failure alert. It satisfies the engine's
// alert sink; the caller treats any error here as non-fatal.
func (q *Queue) PublishFailure(ctx context.Context, alert engine.FailureAlert) error {
	payload, err := json.Marshal(PublishFailurePayload{
		PostID:     alert.PostID,
		ScheduleID: alert.ScheduleID,
		RunID:      alert.RunID,
		Errors:     alert.Errors,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishFailure, payload)
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return err
	}

	telemetry.AlertsEnqueued.Inc()
	slog.Info("failure alert enqueued", "post_id", alert.PostID, "schedule_id", alert.ScheduleID)
	return nil
}
