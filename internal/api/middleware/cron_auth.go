package middleware

import (
	"crypto/subtle"

	config "github.com/crescentlab/postpilot/configs"
	"github.com/gofiber/fiber/v2"
)

// CronSecretHeader is set by trusted timer infrastructure; manual
// invocations may pass ?secret= instead.
const CronSecretHeader = "X-Cron-Secret"

type CronAuthMiddleware struct {
	cfg config.Config
}

func NewCronAuthMiddleware(cfg config.Config) *CronAuthMiddleware {
	return &CronAuthMiddleware{cfg: cfg}
}

func (m *CronAuthMiddleware) CronAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.cfg.CronSecret == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "cron secret is not configured",
			})
		}

		secret := c.Get(CronSecretHeader)
		if secret == "" {
			secret = c.Query("secret")
		}
		if subtle.ConstantTimeCompare([]byte(secret), []byte(m.cfg.CronSecret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}
