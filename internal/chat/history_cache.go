package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// HistoryCache keeps recent transcripts in Redis so turns do not re-read the
// full session row on every message. Postgres stays the source of truth; a
// cache miss is not an error.
type HistoryCache struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewHistoryCache builds a cache with the given TTL.
func NewHistoryCache(client *redis.Client, ttl time.Duration) *HistoryCache {
	if client == nil {
		panic("chat: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HistoryCache{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("hvac.internal.chat.history"),
	}
}

// Save stores the transcript under the session key.
func (c *HistoryCache) Save(ctx context.Context, sessionID string, history []Message) error {
	ctx, span := c.tracer.Start(ctx, "chat.save_history")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: marshal history: %w", err)
	}
	if err := c.redis.Set(ctx, historyKey(sessionID), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: cache history: %w", err)
	}
	return nil
}

// Load returns the cached transcript, or (nil, false, nil) on a miss.
func (c *HistoryCache) Load(ctx context.Context, sessionID string) ([]Message, bool, error) {
	ctx, span := c.tracer.Start(ctx, "chat.load_history")
	defer span.End()

	data, err := c.redis.Get(ctx, historyKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		span.RecordError(err)
		return nil, false, fmt.Errorf("chat: read cached history: %w", err)
	}

	var history []Message
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("chat: decode cached history: %w", err)
	}
	return history, true, nil
}

// Invalidate drops the cached transcript.
func (c *HistoryCache) Invalidate(ctx context.Context, sessionID string) error {
	if err := c.redis.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("chat: invalidate history: %w", err)
	}
	return nil
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("chat:history:%s", sessionID)
}
