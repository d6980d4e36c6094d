package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/crescentlab/postpilot/internal/models"
)

// HandlePublishFailureTask creates one notification per active
// operator for a failed publish run. Errors returned here go to
// asynq's own retry machinery and never surface back to the engine
// run that enqueued the task.
func (q *Queue) HandlePublishFailureTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishFailurePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	message := q.buildMessage(ctx, payload)

	operators, err := q.tm.ListOperators(ctx)
	if err != nil {
		return err
	}

	for _, operator := range operators {
		notification := &models.Notification{
			RecipientID: operator.ID,
			PostID:      payload.PostID,
			Message:     message,
		}
		if _, err := q.n.Create(ctx, notification); err != nil {
			slog.Info("failed to create notification", "recipient_id", operator.ID, "post_id", payload.PostID)
		}
	}
	return nil
}

func (q *Queue) buildMessage(ctx context.Context, payload PublishFailurePayload) string {
	title := fmt.Sprintf("post %d", payload.PostID)
	if post, err := q.p.GetByID(ctx, payload.PostID); err == nil && post != nil {
		title = fmt.Sprintf("%q", post.Title)
	}
	return fmt.Sprintf("Publishing failed for %s: %s", title, strings.Join(payload.Errors, "; "))
}
