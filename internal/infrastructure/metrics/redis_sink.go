package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/pkg/config"
)

const (
	attemptListKey = "meetwise:model_attempts"
	attemptListCap = 10000
	sinkTimeout    = 2 * time.Second
)

// RedisSink records model-attempt telemetry in Redis. Every write is
// fire-and-forget: failures are logged and swallowed so a metrics outage can
// never fail an extraction.
type RedisSink struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSink connects to Redis and returns the sink. A connection failure
// is returned so the caller can fall back to a no-op sink.
func NewRedisSink(cfg *config.Config, logger *zap.Logger) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("✅ Metrics sink connected to Redis", zap.String("addr", cfg.GetRedisAddr()))
	return &RedisSink{client: client, logger: logger}, nil
}

// RecordAttempt pushes the attempt onto a capped list and bumps per-model
// counters
func (s *RedisSink) RecordAttempt(ctx context.Context, attempt entities.ModelAttempt) {
	payload, err := json.Marshal(attempt)
	if err != nil {
		s.logger.Warn("⚠️ Failed to serialize model attempt", zap.Error(err))
		return
	}

	// Detach from the request context so telemetry survives request cancellation
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, attemptListKey, payload)
	pipe.LTrim(ctx, attemptListKey, 0, attemptListCap-1)

	counter := fmt.Sprintf("meetwise:model:%s:%s", attempt.Model, outcome(attempt.Success))
	pipe.Incr(ctx, counter)
	if attempt.IsFallback {
		pipe.Incr(ctx, "meetwise:fallback_attempts")
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("⚠️ Failed to record model attempt", zap.Error(err))
	}
}

// Close releases the Redis connection
func (s *RedisSink) Close() error {
	return s.client.Close()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// NoopSink discards telemetry. Used when Redis is unavailable or disabled.
type NoopSink struct{}

// RecordAttempt does nothing
func (NoopSink) RecordAttempt(ctx context.Context, attempt entities.ModelAttempt) {}
