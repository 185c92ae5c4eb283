package middleware

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"datasync/internal/logging"
)

// Logger is a middleware that logs each HTTP request in JSON format.
// Required fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - policy (when the Policy middleware resolved one)
// - status
// - latency (in milliseconds, as float)
func Logger(l *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		fields := map[string]any{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}
		if p, ok := PolicyFromCtx(c); ok {
			fields["policy"] = p.String()
		}
		if err != nil {
			fields["status"] = statusOf(c, err)
			fields["level"] = "error"
			fields["error"] = err.Error()
		}
		l.Log(fields)

		return err
	}
}

// LoggerWithWriter logs to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if w == nil {
		w = os.Stdout
	}
	return Logger(logging.New(w, loc))
}
