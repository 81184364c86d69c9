package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/and161185/shopfloor/internal/model"
	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream audit events are published to.
const DefaultStream = "shopfloor:audit"

// RedisSink publishes audit events to a capped Redis stream for downstream consumers.
type RedisSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisSink wraps an existing client. Empty stream means DefaultStream.
func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream, maxLen: 100_000}
}

// DialRedis parses url, connects and pings.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// Append adds ev to the stream with XADD, trimming approximately to maxLen.
func (s *RedisSink) Append(ctx context.Context, ev model.AuditEvent) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":         ev.ID.String(),
			"username":   ev.Username,
			"kind":       string(ev.Kind),
			"success":    strconv.FormatBool(ev.Success),
			"detail":     ev.Detail,
			"created_at": ev.CreatedAt.Format(time.RFC3339Nano),
		},
	}).Err()
}
