package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/hemicycle/pkg/cache"
	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// DefaultRedisNamespace prefixes every key written by [RedisStore].
const DefaultRedisNamespace = "hemicycle"

// ResultsKey returns the Redis key of a broadcast's results hash.
// Pattern: {namespace}:results:{broadcast}
func ResultsKey(namespace, broadcast string) string {
	return fmt.Sprintf("%s:results:%s", namespace, broadcast)
}

// RedisStore keeps one hash per broadcast, mapping entry IDs to the JSON of
// their latest update.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStore connects to Redis and verifies the connection. Connection
// failures are retried with backoff.
func NewRedisStore(ctx context.Context, opts *redis.Options, namespace string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	err := cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "ping redis %s", opts.Addr))
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisStoreFromClient(client, namespace), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership: Close closes the client.
func NewRedisStoreFromClient(client redis.UniversalClient, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Save(ctx context.Context, broadcast string, u pipeline.Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	key := ResultsKey(s.namespace, broadcast)
	return cache.RetryWithBackoff(ctx, func() error {
		if err := s.client.HSet(ctx, key, u.Entry, data).Err(); err != nil {
			return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "write %s", key))
		}
		return nil
	})
}

func (s *RedisStore) Load(ctx context.Context, broadcast string) ([]pipeline.Update, error) {
	key := ResultsKey(s.namespace, broadcast)
	hash, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", key)
	}

	out := make([]pipeline.Update, 0, len(hash))
	for entry, raw := range hash {
		var u pipeline.Update
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s field %s", key, entry)
		}
		out = append(out, u)
	}
	sortUpdates(out)
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, broadcast string) error {
	key := ResultsKey(s.namespace, broadcast)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete %s", key)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
