package health

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"portfolio-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// statKeys are the counters HealthMarker maintains.
var statKeys = []string{
	middleware.KeyReqTotal,
	middleware.KeyReqErrors,
	middleware.KeyResTime,
	middleware.KeyResCount,
	middleware.KeyStartTime,
	middleware.KeyLastReq,
	middleware.KeyErrorLog,
}

// ResetStats drops all counters and the error log and restarts the
// uptime clock at now, atomically.
func ResetStats(ctx context.Context, rdb *redis.Client, now time.Time) error {
	pipe := rdb.TxPipeline()
	pipe.Del(ctx, statKeys...)
	pipe.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(now.UnixMilli(), 10), 0)
	_, err := pipe.Exec(ctx)
	return err
}

// RecentErrors returns up to n of the latest 5xx entries, newest first.
// Entries that are not valid JSON are skipped.
func RecentErrors(ctx context.Context, rdb *redis.Client, n int64) ([]map[string]interface{}, error) {
	if n <= 0 {
		return []map[string]interface{}{}, nil
	}
	raw, err := rdb.LRange(ctx, middleware.KeyErrorLog, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, s := range raw {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(s), &m); err == nil && m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}
