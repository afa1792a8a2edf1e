package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jimezsa/jobradar/internal/models"
)

const DefaultRedisPrefix = "jobradar"

// Redis keeps postings in a hash (id -> JSON) and their insertion order in a
// sorted set scored by a monotonically increasing sequence.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis parses redisURL and verifies connectivity.
func OpenRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) postingsKey() string { return r.prefix + ":postings" }
func (r *Redis) orderKey() string    { return r.prefix + ":order" }
func (r *Redis) seqKey() string      { return r.prefix + ":seq" }

func (r *Redis) Upsert(ctx context.Context, postings []models.Posting) (int, error) {
	if err := validate(postings); err != nil {
		return 0, err
	}
	if len(postings) == 0 {
		return 0, nil
	}

	encoded := make([][]byte, len(postings))
	for i, posting := range postings {
		data, err := encodePosting(posting)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrWrite, err)
		}
		encoded[i] = data
	}

	// Reserve a contiguous block of sequence numbers; ZADD NX keeps the
	// first one an id ever received.
	last, err := r.client.IncrBy(ctx, r.seqKey(), int64(len(postings))).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	first := last - int64(len(postings)) + 1

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, posting := range postings {
			pipe.HSet(ctx, r.postingsKey(), posting.ID, encoded[i])
			pipe.ZAddNX(ctx, r.orderKey(), redis.Z{Score: float64(first + int64(i)), Member: posting.ID})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return len(postings), nil
}

func (r *Redis) All(ctx context.Context) ([]models.Posting, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrange: %w", err)
	}
	if len(ids) == 0 {
		return []models.Posting{}, nil
	}
	values, err := r.client.HMGet(ctx, r.postingsKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hmget: %w", err)
	}
	return decodePostings(values)
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.postingsKey(), r.orderKey(), r.seqKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.HLen(ctx, r.postingsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hlen: %w", err)
	}
	return int(n), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func encodePosting(posting models.Posting) ([]byte, error) {
	return json.Marshal(posting)
}

// decodePostings turns an HMGET reply into postings, skipping ids whose hash
// entry vanished between the two reads.
func decodePostings(values []any) ([]models.Posting, error) {
	out := make([]models.Posting, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var posting models.Posting
		if err := json.Unmarshal([]byte(raw), &posting); err != nil {
			return nil, fmt.Errorf("decode posting: %w", err)
		}
		out = append(out, posting)
	}
	return out, nil
}
