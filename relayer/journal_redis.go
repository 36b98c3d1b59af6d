package relayer

import (
	"context"
	"time"

	"github.com/iov-one/gasless/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisPrefix namespaces journal keys.
const DefaultRedisPrefix = "gasless:relay:"

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address  string
	Password string
	DB       int
	// KeyPrefix is prepended to every key, DefaultRedisPrefix when empty.
	KeyPrefix string
	// TTL expires entries. Zero keeps them forever.
	TTL time.Duration
}

// RedisJournal keeps entries in redis, so that several relayer processes
// can share one journal.
type RedisJournal struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

var _ Journal = (*RedisJournal)(nil)

// NewRedisJournal connects to redis and verifies the connection.
func NewRedisJournal(cfg *RedisConfig, logger *zap.Logger) (*RedisJournal, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, errors.Wrap(errors.ErrInput, "redis address cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
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

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	logger.Sugar().Infow("Redis journal initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", prefix)
	return &RedisJournal{client: client, prefix: prefix, ttl: cfg.TTL, logger: logger}, nil
}

func (j *RedisJournal) Reserve(ctx context.Context, e Entry) error {
	ok, err := j.client.SetNX(ctx, j.prefix+e.Key(), time.Now().Unix(), j.ttl).Result()
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "redis: %s", err)
	}
	if !ok {
		return errors.Wrap(errors.ErrDuplicate, e.Key())
	}
	return nil
}

func (j *RedisJournal) Release(ctx context.Context, e Entry) error {
	if err := j.client.Del(ctx, j.prefix+e.Key()).Err(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "redis: %s", err)
	}
	return nil
}

// Close closes the redis connection.
func (j *RedisJournal) Close() error {
	return j.client.Close()
}
