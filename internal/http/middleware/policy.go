package middleware

import (
	"github.com/gofiber/fiber/v2"

	"datasync/internal/provider"
)

// PolicyLocalKey is the key used to store the resolved sync policy in Fiber's context locals.
const PolicyLocalKey = "sync_policy"

// PolicyQueryParam selects the sync policy for a request, e.g. /items?policy=network_sync.
const PolicyQueryParam = "policy"

// Policy resolves the sync policy of each request from the policy query
// parameter, falling back to def. An unknown policy name is rejected with 400.
func Policy(def provider.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := def
		if raw := c.Query(PolicyQueryParam); raw != "" {
			parsed, err := provider.ParsePolicy(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			p = parsed
		}
		c.Locals(PolicyLocalKey, p)
		return c.Next()
	}
}

// PolicyFromCtx returns the policy stored by the Policy middleware.
func PolicyFromCtx(c *fiber.Ctx) (provider.Policy, bool) {
	p, ok := c.Locals(PolicyLocalKey).(provider.Policy)
	return p, ok
}
