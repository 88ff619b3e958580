package offline

import (
	"github.com/gofiber/fiber/v2"
)

// Middleware answers GET requests from the active worker. Everything else,
// and everything before the first deploy, goes to the next handler.
func Middleware(lifecycle *Lifecycle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target := c.OriginalURL()
		if !lifecycle.Intercepts(c.Method(), target) {
			return c.Next()
		}

		res := lifecycle.Active().Fetch(c.UserContext(), Request{
			Target: target,
			Accept: c.Get(fiber.HeaderAccept),
		})

		for name, value := range res.Header {
			c.Set(name, value)
		}
		return c.Status(res.Status).Send(res.Body)
	}
}
