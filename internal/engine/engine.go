package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/crescentlab/postpilot/internal/models"
	"github.com/crescentlab/postpilot/internal/publisher"
	"github.com/crescentlab/postpilot/internal/repository"
	"github.com/crescentlab/postpilot/internal/telemetry"
	"github.com/crescentlab/postpilot/pkg/utils"
)

const (
	// A schedule that keeps failing is deactivated once it has
	// accumulated this many failed attempts inside the window, so a
	// dead credential cannot fire every cron cycle forever.
	failureCeiling = 5
	failureWindow  = 24 * time.Hour

	platformCallTimeout = 60 * time.Second
)

// MediaResolver turns stored media references into URLs the platform
// APIs can fetch.
type MediaResolver interface {
	Resolve(ctx context.Context, refs []string) []string
}

// FailureAlert is the fire-and-forget payload raised towards operators
// when a run leaves at least one platform unpublished.
type FailureAlert struct {
	PostID     int64
	ScheduleID int64
	RunID      string
	Errors     []string
}

// AlertSink dispatches failure alerts. Delivery is best-effort; the
// engine logs sink errors and moves on.
type AlertSink interface {
	PublishFailure(ctx context.Context, alert FailureAlert) error
}

// Summary is the aggregate result of one engine invocation, returned
// to the invoking job rather than thrown: partial failures are data,
// not exceptions.
type Summary struct {
	Processed int      `json:"processed"`
	Published int      `json:"published"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// Engine is the publishing orchestrator. It holds no state between
// invocations; everything durable lives in the store.
type Engine struct {
	schedules repository.ScheduleRepository
	posts     repository.PostRepository
	attempts  repository.PublishAttemptRepository
	creds     repository.CredentialRepository
	registry  *publisher.Registry
	media     MediaResolver
	alerts    AlertSink
	secretKey []byte
	now       func() time.Time
}

func NewEngine(
	schedules repository.ScheduleRepository,
	posts repository.PostRepository,
	attempts repository.PublishAttemptRepository,
	creds repository.CredentialRepository,
	registry *publisher.Registry,
	media MediaResolver,
	alerts AlertSink,
	secretKey []byte) *Engine {
	return &Engine{
		schedules: schedules,
		posts:     posts,
		attempts:  attempts,
		creds:     creds,
		registry:  registry,
		media:     media,
		alerts:    alerts,
		secretKey: secretKey,
		now:       time.Now,
	}
}

// Run sweeps every due schedule once. Schedules are resolved
// sequentially, oldest-due first; the platform fan-out inside a single
// schedule is concurrent. Only a systemic failure (due-query or state
// write) returns an error, together with whatever summary had been
// accumulated by then.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	now := e.now()
	summary := Summary{Errors: []string{}}

	runID, err := gonanoid.New()
	if err != nil {
		runID = now.UTC().Format("20060102T150405Z")
	}

	credentials, err := e.connectedCredentials(ctx)
	if err != nil {
		return summary, err
	}

	due, err := e.schedules.ListDue(ctx, now)
	if err != nil {
		return summary, err
	}

	telemetry.RunsTotal.Inc()
	for _, ds := range due {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Processed++
		outcome, errs, err := e.processSchedule(ctx, ds, credentials, runID, now)
		if err != nil {
			return summary, err
		}

		switch outcome {
		case outcomePublished:
			summary.Published++
			telemetry.SchedulesPublished.Inc()
		case outcomeFailed:
			summary.Failed++
			summary.Errors = append(summary.Errors, errs...)
			telemetry.SchedulesFailed.Inc()
		case outcomeSkipped:
			summary.Skipped++
			telemetry.SchedulesSkipped.Inc()
		}
	}

	telemetry.RunDuration.Observe(time.Since(started).Seconds())
	return summary, nil
}

type runOutcome int

const (
	outcomeSkipped runOutcome = iota
	outcomePublished
	outcomeFailed
)

func (e *Engine) processSchedule(ctx context.Context, ds *models.DueSchedule, credentials map[publisher.Platform]*models.PlatformCredential, runID string, now time.Time) (runOutcome, []string, error) {
	sched, post := ds.Schedule, ds.Post

	// A post with no targets has nothing to attempt: no ledger rows,
	// no state writes.
	if len(post.TargetPlatforms) == 0 {
		slog.Info("skipping schedule with no target platforms", "schedule_id", sched.ID, "post_id", post.ID)
		return outcomeSkipped, nil, nil
	}

	mediaURLs := post.MediaURLs
	if e.media != nil {
		mediaURLs = e.media.Resolve(ctx, post.MediaURLs)
	}

	results := make([]publisher.Result, len(post.TargetPlatforms))
	var wg sync.WaitGroup
	for i, name := range post.TargetPlatforms {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			payload := publisher.Payload{
				PostID:    post.ID,
				Title:     post.Title,
				Body:      post.BodyFor(name),
				MediaURLs: mediaURLs,
			}
			results[i] = e.publishOne(ctx, name, payload, credentials)
		}(i, name)
	}
	wg.Wait()

	allSucceeded := true
	var errs []string
	for _, res := range results {
		attempt := &models.PublishAttempt{
			ScheduleID:     sched.ID,
			PostID:         post.ID,
			Platform:       string(res.Platform),
			Status:         models.AttemptStatusSuccess,
			PlatformPostID: res.PlatformPostID,
			ErrorMessage:   res.Error,
			RunID:          runID,
			CreatedAt:      now,
		}
		if !res.Success {
			attempt.Status = models.AttemptStatusFailed
			allSucceeded = false
			errs = append(errs, fmt.Sprintf("post %d (%s): %s", post.ID, res.Platform, res.Error))
		}
		// Losing one ledger row is not worth aborting the sweep over.
		if _, err := e.attempts.Create(ctx, attempt); err != nil {
			slog.Info("failed to record publish attempt", "schedule_id", sched.ID, "platform", res.Platform)
		}
	}

	if allSucceeded {
		if err := e.posts.UpdateStatus(ctx, models.PostStatusPublished, post.ID); err != nil {
			return outcomeFailed, errs, err
		}
		next := NextRunAt(sched.ScheduleType, sched.RecurrenceRule, sched.RecurrenceEndDate, now)
		if err := e.schedules.CompleteRun(ctx, sched.ID, now, next, next != nil); err != nil {
			return outcomeFailed, errs, err
		}
		return outcomePublished, nil, nil
	}

	// Failure: the post stays retry-eligible, the schedule stays due
	// (next_run_at untouched) unless the failure ceiling is hit.
	failedCount, err := e.attempts.CountFailedSince(ctx, sched.ID, now.Add(-failureWindow))
	if err != nil {
		return outcomeFailed, errs, err
	}
	active := failedCount < failureCeiling
	if err := e.schedules.CompleteRun(ctx, sched.ID, now, nil, active); err != nil {
		return outcomeFailed, errs, err
	}
	if !active {
		slog.Info("deactivating schedule after repeated failures", "schedule_id", sched.ID, "failed_attempts", failedCount)
	}

	if e.alerts != nil {
		alert := FailureAlert{PostID: post.ID, ScheduleID: sched.ID, RunID: runID, Errors: errs}
		if err := e.alerts.PublishFailure(ctx, alert); err != nil {
			slog.Info("failed to dispatch failure alert", "schedule_id", sched.ID)
		}
	}

	return outcomeFailed, errs, nil
}

func (e *Engine) publishOne(ctx context.Context, name string, payload publisher.Payload, credentials map[publisher.Platform]*models.PlatformCredential) publisher.Result {
	platform, err := publisher.ParsePlatform(name)
	if err != nil {
		return publisher.Result{Platform: publisher.Platform(name), Error: err.Error()}
	}

	cred, ok := credentials[platform]
	if !ok {
		return publisher.Result{Platform: platform, Error: "platform is not connected"}
	}

	callCtx, cancel := context.WithTimeout(ctx, platformCallTimeout)
	defer cancel()
	return e.registry.Publish(callCtx, platform, payload, cred)
}

// connectedCredentials builds the per-run platform to credential map.
// It is rebuilt on every invocation because credentials can be rotated
// between runs. A credential that fails to decrypt leaves its platform
// unavailable rather than failing the run.
func (e *Engine) connectedCredentials(ctx context.Context) (map[publisher.Platform]*models.PlatformCredential, error) {
	creds, err := e.creds.ListConnected(ctx)
	if err != nil {
		return nil, err
	}

	byPlatform := make(map[publisher.Platform]*models.PlatformCredential, len(creds))
	for _, cred := range creds {
		platform, err := publisher.ParsePlatform(cred.Platform)
		if err != nil {
			slog.Info("ignoring credential for unsupported platform", "platform", cred.Platform)
			continue
		}
		if len(e.secretKey) > 0 {
			token, err := utils.Decrypt(cred.AccessToken, e.secretKey)
			if err != nil {
				slog.Info("failed to decrypt credential", "platform", cred.Platform)
				continue
			}
			decrypted := *cred
			decrypted.AccessToken = token
			byPlatform[platform] = &decrypted
			continue
		}
		byPlatform[platform] = cred
	}
	return byPlatform, nil
}
