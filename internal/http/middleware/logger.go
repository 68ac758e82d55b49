package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"smartinventory/internal/logger"
)

// ErrorLocalKey holds an internal error message that must not reach the client but should be logged.
const ErrorLocalKey = "internal_error"

// Logger logs each HTTP request as one structured entry.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
// - user_id when the request was authenticated
// - error when a handler recorded an internal failure under ErrorLocalKey
func Logger(log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if uid, ok := c.Locals(UserIDLocalKey).(string); ok && uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if msg, ok := c.Locals(ErrorLocalKey).(string); ok && msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		lvl := zapcore.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			lvl = zapcore.ErrorLevel
		case status >= fiber.StatusBadRequest:
			lvl = zapcore.WarnLevel
		}
		if ce := log.Check(lvl, "http_request"); ce != nil {
			ce.Write(fields...)
		}

		return err
	}
}

// LoggerWithWriter is Logger writing JSON lines to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logger.NewWithWriter(w, loc))
}
