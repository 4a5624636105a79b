// Package rayid assigns a unique request identifier to every request.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the request identifier.
const HeaderName = "X-Ray-ID"

// LocalsKey is the Fiber locals key the identifier is stored under.
const LocalsKey = "ray_id"

// New returns a middleware that generates a RayID for every request.
// Incoming requests that already carry the header keep their identifier.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
