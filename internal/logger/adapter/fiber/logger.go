// Package fiber provides a zerolog based access log middleware for fiber.
package fiber

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/possuite/backoffice/internal/logger"
)

// LocalElapsed is the fiber.Ctx locals key holding the request duration in seconds.
const LocalElapsed = "elapsed"

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Log decides where the access log is written.
	Log logger.Log

	// Output overrides the writers derived from Log. Used by tests.
	Output io.Writer

	// UserID returns the authenticated user of the request, 0 for anonymous.
	UserID func(c *fiber.Ctx) uint64

	// SkipURIs are request paths that are never logged, e.g. /metrics.
	SkipURIs []string
}

// New creates the access log middleware.
func New(cfg Config) fiber.Handler {
	accessLog := zerolog.New(accessWriter(cfg)).With().Timestamp().Logger()

	skip := make(map[string]struct{}, len(cfg.SkipURIs))
	for _, uri := range cfg.SkipURIs {
		skip[uri] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start).Seconds()
		c.Locals(LocalElapsed, elapsed)
		c.Response().Header.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

		if _, ok := skip[c.Path()]; ok {
			return nil
		}

		// RequestURI() is normalized by fasthttp, OriginalURL() is the raw request line.
		uri := c.OriginalURL()

		event := accessLog.Log().
			Str("IP", c.IP()).
			Int("status", c.Response().StatusCode()).
			Float64("X-Performance", elapsed).
			Str("URI", uri).
			Str("method", c.Method()).
			Bytes("host", c.Request().Host()).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderReferer, c.Get(fiber.HeaderReferer))

		if cfg.UserID != nil {
			if id := cfg.UserID(c); id != 0 {
				event.Uint64("user_id", id)
			}
		}

		if chainErr != nil {
			event.Err(chainErr)
		}

		event.Send()

		return nil
	}
}

func accessWriter(cfg Config) io.Writer {
	if cfg.Output != nil {
		return cfg.Output
	}

	var writers []io.Writer

	if cfg.Log.File.Enabled {
		if err := os.MkdirAll(cfg.Log.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.Log.File.Path).Msg("can't create access log directory")
		} else {
			writers = append(writers, logger.NewRollingFile(cfg.Log.File.Path, cfg.Log.File.Access()))
		}
	}

	if cfg.Log.Console.Enabled && cfg.Log.EnableAccessLogToConsole {
		if cfg.Log.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	if len(writers) == 0 {
		return io.Discard
	}

	return zerolog.MultiLevelWriter(writers...)
}
