package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iov-one/gasless/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the redis channel used when none is configured.
const DefaultChannel = "gasless:events"

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address  string
	Password string
	DB       int
	// Channel events are published to. Each event is also published to
	// "<channel>:<kind>" so that subscribers can filter by kind.
	Channel string
}

// RedisSink publishes notifications as JSON on a redis channel.
type RedisSink struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

var _ Sink = (*RedisSink)(nil)

// NewRedisSink connects to redis and verifies the connection.
func NewRedisSink(cfg *RedisConfig, logger *zap.Logger) (*RedisSink, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, errors.Wrap(errors.ErrInput, "redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(errors.ErrNetwork, "failed to connect to Redis at %s: %s", cfg.Address, err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	logger.Sugar().Infow("Redis event sink initialized", "address", cfg.Address, "channel", channel)
	return &RedisSink{client: client, channel: channel, logger: logger}, nil
}

func (s *RedisSink) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "failed to marshal notification: %s", err)
	}
	pipe := s.client.Pipeline()
	pipe.Publish(ctx, s.channel, payload)
	pipe.Publish(ctx, s.channel+":"+n.Event.EventKind(), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(errors.ErrNetwork, "failed to publish notification: %s", err)
	}
	return nil
}

// Close closes the redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
