package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/crescentlab/postpilot/internal/engine"
)

// Runner is the engine surface the handler needs.
type Runner interface {
	Run(ctx context.Context) (engine.Summary, error)
}

type CronHandler struct {
	runner Runner
}

func NewCronHandler(runner Runner) *CronHandler {
	return &CronHandler{runner: runner}
}

// RunPublishDue triggers one sweep of due schedules and reports the
// aggregate summary. Partial failures are part of the 200 response; a
// 500 means the run itself broke and carries whatever summary had
// accumulated by then.
func (h *CronHandler) RunPublishDue(c *fiber.Ctx) error {
	summary, err := h.runner.Run(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     err.Error(),
			"processed": summary.Processed,
			"published": summary.Published,
			"failed":    summary.Failed,
			"skipped":   summary.Skipped,
			"errors":    summary.Errors,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":        true,
		"processed": summary.Processed,
		"published": summary.Published,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
		"errors":    summary.Errors,
	})
}
