// Package threadcache stores reconstructed thread chains in Redis hashes.
//
// A chain lives under "conversation:<id>" as fields "1".."n" mapping the
// 1-based thread position to the post id, with an expiry on the whole key.
package threadcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iconidentify/xresolve/internal/domain"
)

// Options configures the Redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewClient creates a Redis client for the thread cache.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})
}

// RedisCache implements domain.ThreadCache.
type RedisCache struct {
	client redis.Cmdable
}

// New wraps an existing Redis client.
func New(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Key returns the cache key of a conversation.
func Key(conversationID uint64) string {
	return "conversation:" + strconv.FormatUint(conversationID, 10)
}

// Chain returns all stored positions of a conversation.
func (c *RedisCache) Chain(ctx context.Context, conversationID uint64) (map[int]domain.TweetID, error) {
	fields, err := c.client.HGetAll(ctx, Key(conversationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read thread chain: %w", err)
	}

	chain := make(map[int]domain.TweetID, len(fields))
	for field, value := range fields {
		pos, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		id, err := domain.ParseTweetID(value)
		if err != nil {
			continue
		}
		chain[pos] = id
	}
	return chain, nil
}

// Position returns a single stored position.
func (c *RedisCache) Position(ctx context.Context, conversationID uint64, position int) (domain.TweetID, bool, error) {
	value, err := c.client.HGet(ctx, Key(conversationID), strconv.Itoa(position)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read thread position: %w", err)
	}

	id, err := domain.ParseTweetID(value)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Store writes the chain and its expiry in one MULTI/EXEC transaction so
// readers never observe a chain without its TTL.
func (c *RedisCache) Store(ctx context.Context, conversationID uint64, chain []domain.TweetID, ttl time.Duration) error {
	if len(chain) == 0 {
		return nil
	}

	key := Key(conversationID)
	fieldsValues := make([]interface{}, 0, 2*len(chain))
	for i, id := range chain {
		fieldsValues = append(fieldsValues, strconv.Itoa(i+1), id.String())
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := pipe.HSet(ctx, key, fieldsValues...).Err(); err != nil {
			return err
		}
		return pipe.Expire(ctx, key, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("write thread chain: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
