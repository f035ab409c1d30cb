package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for request stats. Exported for the health reset and collect code.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"

	ErrorLogSize = 50
)

// HealthMarker records request stats in Redis (skip /, /health*, favicon).
// Responses with status >= 500 are also pushed onto the error log, which
// keeps the latest 50 entries.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		ctx := c.UserContext()
		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		_ = rdb.Set(ctx, KeyLastReq, lastReq, 0).Err()
		_ = rdb.Incr(ctx, KeyReqTotal).Err()

		err := c.Next()
		if err != nil {
			// run the error handler now so the final status is recorded
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
			err = nil
		}

		ms := time.Since(start).Milliseconds()
		_ = rdb.Incr(ctx, KeyResCount).Err()
		_ = rdb.IncrByFloat(ctx, KeyResTime, float64(ms)).Err()
		if status := c.Response().StatusCode(); status >= fiber.StatusInternalServerError {
			_ = rdb.Incr(ctx, KeyReqErrors).Err()
			entry, _ := json.Marshal(map[string]interface{}{
				"time":     time.Now(),
				"method":   c.Method(),
				"path":     c.OriginalURL(),
				"status":   status,
				"trace_id": GetTraceID(c),
				"message":  string(c.Response().Body()),
			})
			pipe := rdb.TxPipeline()
			pipe.LPush(ctx, KeyErrorLog, entry)
			pipe.LTrim(ctx, KeyErrorLog, 0, ErrorLogSize-1)
			_, _ = pipe.Exec(ctx)
		}
		return err
	}
}
