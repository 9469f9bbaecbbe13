package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a
// ping. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisNotifier publishes panel events on a Redis channel so consumers
// outside the process (dashboards, alerting scripts) can follow along.
// Publication is fire-and-forget: failures are logged and swallowed.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, log zerolog.Logger) *RedisNotifier {
	if channel == "" {
		channel = "serverpanel:events"
	}
	return &RedisNotifier{client: client, channel: channel, log: log}
}

func (n *RedisNotifier) Broadcast(event string, payload any) {
	data, err := json.Marshal(Event{Name: event, Payload: payload})
	if err != nil {
		n.log.Warn().Err(err).Str("event", event).Msg("realtime payload not serializable")
		return
	}
	// Publish off the caller's goroutine; the broadcast contract is
	// non-blocking and at-most-once.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
			n.log.Warn().Err(err).Str("event", event).Msg("redis publish failed")
		}
	}()
}
