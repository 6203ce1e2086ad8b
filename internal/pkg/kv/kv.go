package kv

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by GetString when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Options controls how Open connects.
type Options struct {
	URL         string
	TLSInsecure bool
	DialTimeout time.Duration
}

// Store is the process-wide connection to Redis (or any RESP compatible
// server such as Dragonfly or Upstash). It is created once at startup and
// passed to whoever needs it.
type Store struct {
	client *redis.Client
}

// RedisOptions parses the URL and applies the TLS and timeout settings, so
// every client talking to the same server connects the same way.
func (o Options) RedisOptions() (*redis.Options, error) {
	redisOpts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if redisOpts.TLSConfig != nil && o.TLSInsecure {
		redisOpts.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // managed redis providers with self-signed certs
			MinVersion:         tls.VersionTLS12,
		}
	}
	if o.DialTimeout > 0 {
		redisOpts.DialTimeout = o.DialTimeout
	}
	return redisOpts, nil
}

// Open parses the URL, connects and pings. A failed ping is returned so that
// startup fails loudly instead of on the first request.
func Open(ctx context.Context, opts Options) (*Store, error) {
	redisOpts, err := opts.RedisOptions()
	if err != nil {
		return nil, err
	}

	store := NewFromClient(redis.NewClient(redisOpts))
	pong, err := store.Ping(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", redisOpts.Addr, err)
	}
	log.Infof("[KV] Successfully connected to redis at %s: %s", redisOpts.Addr, pong)
	return store, nil
}

// NewFromClient wraps an existing client (tests use this with miniredis).
func NewFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) (string, error) {
	return s.client.Ping(ctx).Result()
}

// SetString stores a plain string value without expiration.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// GetString returns ErrNotFound when key is missing.
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

func (s *Store) HashSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		values = append(values, k, v)
	}
	if err := s.client.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// HashGetAll returns an empty map for a missing key.
func (s *Store) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	data, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) SortedSetAdd(ctx context.Context, key string, score float64, member string) error {
	if err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", key, err)
	}
	return nil
}

// SortedSetRangeByScoreDesc returns up to limit members, highest score
// first, skipping the first offset.
func (s *Store) SortedSetRangeByScoreDesc(ctx context.Context, key string, offset, limit int64) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	members, err := s.client.ZRevRange(ctx, key, offset, offset+limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}
	return members, nil
}

func (s *Store) SortedSetCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard %s: %w", key, err)
	}
	return n, nil
}

func (s *Store) ListPushLeft(ctx context.Context, key, value string) error {
	if err := s.client.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	return nil
}

// ListTrim keeps only the elements between start and stop (inclusive).
func (s *Store) ListTrim(ctx context.Context, key string, start, stop int64) error {
	if err := s.client.LTrim(ctx, key, start, stop).Err(); err != nil {
		return fmt.Errorf("ltrim %s: %w", key, err)
	}
	return nil
}

func (s *Store) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	items, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	return items, nil
}

func (s *Store) ListLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", key, err)
	}
	return n, nil
}

// HashIncrBy increments a counter field.
func (s *Store) HashIncrBy(ctx context.Context, key, field string, incr int64) error {
	if err := s.client.HIncrBy(ctx, key, field, incr).Err(); err != nil {
		return fmt.Errorf("hincrby %s: %w", key, err)
	}
	return nil
}

// RunScript evaluates a Lua script (EVALSHA, falling back to EVAL) so its
// commands apply as one unit.
func (s *Store) RunScript(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) (interface{}, error) {
	res, err := script.Run(ctx, s.client, keys, args...).Result()
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return res, nil
}

// Pipelined sends every command queued by fn in one round trip.
func (s *Store) Pipelined(ctx context.Context, fn func(redis.Pipeliner) error) error {
	if _, err := s.client.Pipelined(ctx, fn); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}
