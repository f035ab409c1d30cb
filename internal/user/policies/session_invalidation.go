// Package policies holds rules applied to a user across all of its
// sessions.
package policies

import (
	"context"
	"strconv"

	"portfolio-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DestroyUserSessions removes every session of userID: each session:<sid>
// key and the user_sessions:<user_id> set tracking them.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID uint) error {
	if rdb == nil || userID == 0 {
		return nil
	}
	key := middleware.UserSessionsPrefix + strconv.FormatUint(uint64(userID), 10)
	sids, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("list sessions failed")
		return err
	}
	pipe := rdb.TxPipeline()
	for _, sid := range sids {
		pipe.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("destroy sessions failed")
		return err
	}
	log.Info().Uint("user_id", userID).Int("sessions", len(sids)).Msg("sessions destroyed")
	return nil
}
