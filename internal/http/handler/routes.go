package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datasync/docs"
	"datasync/internal/http/middleware"
	"datasync/internal/provider"
	"datasync/internal/service"
)

// Pinger reports whether the local store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Routes carries what RegisterRoutes mounts.
type Routes struct {
	// DB is checked by /health. Nil when the local store is in memory.
	DB            Pinger
	Items         service.ItemService
	DefaultPolicy provider.Policy
	// Gatherer backs /metrics. Nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/health", HealthCheck(r.DB))
	app.Get("/healthz", LivenessProbe())

	if r.Gatherer != nil {
		app.Get("/metrics", MetricsHandler(r.Gatherer))
	}

	app.Get("/swagger/*", SwaggerUI())

	items := app.Group("/items", middleware.Policy(r.DefaultPolicy))
	items.Get("/", ListItems(r.Items))
	items.Put("/", PutItem(r.Items))
	items.Get("/:id", GetItem(r.Items))
	items.Delete("/:id", DeleteItem(r.Items))
}

// HealthCheck checks local store connectivity.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain 200 for orchestrators.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// MetricsHandler exposes g in the Prometheus text format.
func MetricsHandler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SwaggerUI serves the API docs with the host and scheme of the current request.
func SwaggerUI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}
