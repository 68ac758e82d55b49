package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// HealthCheck godoc
// @Summary Readiness probe
// @Description Pings every configured backend.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(checks map[string]Check) fiber.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				return writeErrorDetails(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable",
					map[string]string{"dependency": name})
			}
			results[name] = "ok"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "checks": results})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
