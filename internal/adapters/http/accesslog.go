package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Probes and scrapers poll these every few seconds; successful hits are not
// worth a log line.
var quietPaths = map[string]bool{
	"/v1/health": true,
	"/metrics":   true,
}

// AccessLogMiddleware writes one structured slog line per request. Status
// picks the level: 5xx and handler errors log at error, 4xx at warn.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		began := time.Now()
		method := c.Method()
		path := c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		if quietPaths[path] && err == nil && status < 400 {
			return nil
		}

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(began)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, slog.String("request_id", rid))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		slog.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}
