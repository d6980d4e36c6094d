package queue

import (
	"github.com/hibiken/asynq"

	"github.com/crescentlab/postpilot/internal/repository"
)

// Queue owns the best-effort alerting path: the engine enqueues a
// failure alert and carries on, the worker fans it out into one
// notification row per operator.
type Queue struct {
	client *asynq.Client
	p      repository.PostRepository
	tm     repository.TeamMemberRepository
	n      repository.NotificationRepository
}

func NewQueue(
	client *asynq.Client,
	p repository.PostRepository,
	tm repository.TeamMemberRepository,
	n repository.NotificationRepository) *Queue {
	return &Queue{
		client: client,
		p:      p,
		tm:     tm,
		n:      n,
	}
}

const TaskTypePublishFailure = "notify:publish_failure"

type PublishFailurePayload struct {
	PostID     int64    `json:"post_id"`
	ScheduleID int64    `json:"schedule_id"`
	RunID      string   `json:"run_id"`
	Errors     []string `json:"errors"`
}
