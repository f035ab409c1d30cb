package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	traceIDHeader = "X-Trace-Id"
	traceIDLocal  = "trace_id"
)

// Tracing tags the request with a trace id, echoed in X-Trace-Id, and
// puts a logger carrying it on the user context. An incoming X-Trace-Id
// is kept when it is a UUID.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(traceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}
		c.Locals(traceIDLocal, traceID)
		c.Set(traceIDHeader, traceID)

		l := log.With().Str("trace_id", traceID).Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))
		return c.Next()
	}
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	id, _ := c.Locals(traceIDLocal).(string)
	return id
}

// Logger returns the request logger set by Tracing, or the global one.
func Logger(c *fiber.Ctx) *zerolog.Logger {
	if l := zerolog.Ctx(c.UserContext()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
