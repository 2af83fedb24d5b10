package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const lookupRateWindow = time.Minute

// LookupRateLimit caps account searches per account number (or client IP when
// none is given) within a one minute window. Cache failures let the request through.
func LookupRateLimit(cache redis.Cmdable, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 10
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		subject := strings.TrimSpace(c.Query("accountNumber"))
		if subject == "" {
			subject = c.IP()
		}
		key := "rl:lookup:" + subject

		ctx := c.UserContext()
		cnt, err := cache.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(ctx, key, lookupRateWindow)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many account lookups, try again later")
		}
		return c.Next()
	}
}
