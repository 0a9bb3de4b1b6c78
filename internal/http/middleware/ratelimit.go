package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"patientdocs/internal/ratelimit"
)

// RateLimit allows limit requests per window per client IP. When the store is
// unavailable requests pass through and a warning is logged.
func RateLimit(store ratelimit.Store, limit int, window time.Duration, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, resetAt, err := store.Hit(c.UserContext(), c.IP(), window)
		if err != nil {
			logger.Warn("rate limit store unavailable",
				zap.String("request_id", RequestIDFrom(c)),
				zap.Error(err),
			)
			return c.Next()
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			retry := int(math.Ceil(time.Until(resetAt).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return WriteError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
		}
		return c.Next()
	}
}
