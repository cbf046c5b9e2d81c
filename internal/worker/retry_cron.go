package worker

// Background goroutine that moves due entries from the retry zset back onto
// the main queue. Respects the circuit breaker so a downed SMTP host is not
// hammered with the whole backlog at once.

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cashdesk/internal/infra"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// StartRetryCron launches a goroutine that ticks every 30s and requeues due
// retries. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				requeueDue(ctx, rdb, cb)
			}
		}
	}()
}

func requeueDue(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	// If the breaker is open, let entries age in the zset instead
	if cb.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := rdb.ZRangeByScore(ctx, RetryZSet, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to read retry zset")
		return
	}
	if len(due) == 0 {
		return
	}

	log.Info().Int("count", len(due)).Msg("retry_cron: requeueing due retries")

	for _, raw := range due {
		// Remove first so a crash cannot duplicate the job into the queue
		removed, err := rdb.ZRem(ctx, RetryZSet, raw).Result()
		if err != nil || removed == 0 {
			continue // another instance took it
		}
		if err := rdb.LPush(ctx, QueueClosingSummary, raw).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to requeue job")
		}
	}
}
