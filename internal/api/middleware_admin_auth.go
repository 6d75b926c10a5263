package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

const adminRealm = "Restricted Area"

func (handler *Handler) adminBasicAuth() fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm:           adminRealm,
		Authorizer:      handler.adminAuth.Verify,
		Unauthorized:    handler.adminUnauthorized,
		ContextUsername: contextAdminUserKey,
	})
}

// adminUnauthorized answers rejected credentials with 401, or 429 once the
// client is over the failure limit. Valid credentials always pass.
func (handler *Handler) adminUnauthorized(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) != "" {
		key := requestLimiterKey(c)
		now := time.Now()
		blocked := handler.adminLimiter.blocked(key, now)
		handler.adminLimiter.addFailure(key, now)
		handler.metrics.adminAuthFailures.Inc()
		handler.logger.Warn().
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Bool("throttled", blocked).
			Msg("admin authentication failed")

		if blocked {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(adminAuthFailureWindow.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many attempts")
		}
	}
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+adminRealm+`"`)
	return c.Status(fiber.StatusUnauthorized).SendString("Not authorized")
}

// adminAuthenticated clears the failure history once credentials succeed.
func (handler *Handler) adminAuthenticated(c *fiber.Ctx) error {
	handler.adminLimiter.reset(requestLimiterKey(c))
	return c.Next()
}
