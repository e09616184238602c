package fetchcache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisRecordPrefix = "webget:rec:"
	redisIndexKey     = "webget:index"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	// Addr is the server address, e.g. "localhost:6379".
	Addr string

	// Password authenticates against the server; empty for none.
	Password string

	// DB selects the logical database.
	DB int

	// Size is how many records survive a Trim. When zero, DefaultSize
	// is used.
	Size int
}

// Redis is a Store backed by a Redis server. Each record lives in a
// hash keyed by URL; a sorted set indexed by timestamp drives Trim with
// the same keep-the-newest semantics as the SQL stores.
type Redis struct {
	client *redis.Client
	size   int
}

// NewRedis connects to the server and trims the index.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	r := &Redis{client: client, size: size}
	if err := r.Trim(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return r, nil
}

// Get returns the record for url, or ErrNotFound.
func (r *Redis) Get(ctx context.Context, url string) (*Record, error) {
	fields, err := r.client.HGetAll(ctx, redisRecordPrefix+url).Result()
	if err != nil {
		return nil, fmt.Errorf("fetchcache: redis get: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	code, _ := strconv.Atoi(fields["code"])
	timestamp, _ := strconv.ParseInt(fields["timestamp"], 10, 64)
	return &Record{
		Code:      code,
		Status:    fields["msg"],
		Header:    fields["headers"],
		Body:      []byte(fields["data"]),
		Timestamp: timestamp,
	}, nil
}

// Set upserts the record for url and re-dates it in the trim index.
func (r *Redis) Set(ctx context.Context, url string, rec *Record) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, redisRecordPrefix+url,
		"code", rec.Code,
		"msg", rec.Status,
		"headers", rec.Header,
		"data", rec.Body,
		"timestamp", rec.Timestamp,
	)
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(rec.Timestamp), Member: url})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("fetchcache: redis set: %w", err)
	}
	return nil
}

// Trim deletes the oldest records until at most the configured size
// remain.
func (r *Redis) Trim(ctx context.Context) error {
	total, err := r.client.ZCard(ctx, redisIndexKey).Result()
	if err != nil {
		return fmt.Errorf("fetchcache: redis trim: %w", err)
	}
	excess := total - int64(r.size)
	if excess <= 0 {
		return nil
	}

	oldest, err := r.client.ZRange(ctx, redisIndexKey, 0, excess-1).Result()
	if err != nil {
		return fmt.Errorf("fetchcache: redis trim: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, url := range oldest {
		pipe.Del(ctx, redisRecordPrefix+url)
	}
	pipe.ZRemRangeByRank(ctx, redisIndexKey, 0, excess-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("fetchcache: redis trim: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
