package iocache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// redisKeyPrefix namespaces snapshot slots inside a shared Redis database.
const redisKeyPrefix = "contacts:snapshot:"

// redisOpTimeout bounds each Redis round trip.
const redisOpTimeout = 5 * time.Second

// Hash fields of a snapshot slot.
const (
	fieldValue     = "value"
	fieldVersion   = "version"
	fieldTimestamp = "timestamp"
)

// RedisSnapshotStore keeps each snapshot slot in a Redis hash.
type RedisSnapshotStore struct {
	client *redis.Client
}

var _ contract.SnapshotStore = &RedisSnapshotStore{} // Compile-time check

// NewRedisSnapshotStore connects to the Redis server named by a redis:// URL.
func NewRedisSnapshotStore(connStr string) (*RedisSnapshotStore, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w. Check connection format: redis://[:password@]host:port/db", err)
	}
	return newRedisSnapshotStoreWithClient(redis.NewClient(opts))
}

func newRedisSnapshotStoreWithClient(client *redis.Client) (*RedisSnapshotStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis. Check that the server is running and connection parameters are valid: %w", err)
	}
	return &RedisSnapshotStore{client: client}, nil
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

// Get retrieves a snapshot by slot key. An empty slot yields contract.ErrSnapshotMissing.
func (rs *RedisSnapshotStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := rs.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	value, ok := fields[fieldValue]
	if !ok {
		return nil, 0, 0, contract.ErrSnapshotMissing
	}
	version, err := strconv.Atoi(fields[fieldVersion])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt snapshot version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields[fieldTimestamp], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt snapshot timestamp for %s: %w", key, err)
	}
	return []byte(value), version, ts, nil
}

// Set replaces the snapshot held in a slot. The slot never expires.
func (rs *RedisSnapshotStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey(key))
		pipe.HSet(ctx, redisKey(key), fieldValue, value, fieldVersion, version, fieldTimestamp, timestamp)
		return nil
	})
	return err
}

// Delete empties a slot.
func (rs *RedisSnapshotStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.Del(ctx, redisKey(key)).Err()
}

// Clear removes every snapshot slot under the contacts prefix.
func (rs *RedisSnapshotStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := rs.slotKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rs.client.Del(ctx, keys...).Err()
}

// Close closes the Redis client.
func (rs *RedisSnapshotStore) Close() error {
	return rs.client.Close()
}

// GetStatus returns status information about the snapshot slots in Redis.
func (rs *RedisSnapshotStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(schema.RedisBackend),
		Connected: true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := rs.slotKeys(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to list snapshot keys: %w", err)
	}
	status.TotalEntries = len(keys)

	for _, key := range keys {
		ts, err := rs.client.HGet(ctx, key, fieldTimestamp).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return status, fmt.Errorf("failed to read timestamp of %s: %w", key, err)
		}
		entryTime := time.Unix(ts, 0)
		if status.LastEntryTime.IsZero() || entryTime.After(status.LastEntryTime) {
			status.LastEntryTime = entryTime
		}
		if status.OldestEntryTime.IsZero() || entryTime.Before(status.OldestEntryTime) {
			status.OldestEntryTime = entryTime
		}
		if size, err := rs.client.MemoryUsage(ctx, key).Result(); err == nil {
			status.TableSizeBytes += size
		}
	}
	return status, nil
}

// slotKeys scans for all keys under the snapshot prefix.
func (rs *RedisSnapshotStore) slotKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := rs.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
