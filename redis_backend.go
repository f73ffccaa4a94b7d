package envbase

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is the key-value cache adapter. Every entry is a plain
// string value stored under "<collection>:<KEY>", so multiple collections
// can share one Redis database without colliding.
type RedisBackend struct {
	client     *redis.Client
	collection string
	prefix     string
	ownsClient bool // If true, Close() will close the client
}

// NewRedisBackend dials the server at url and pings it. Any parse, dial,
// or ping failure is reported as an invalid descriptor with the driver
// cause attached.
func NewRedisBackend(ctx context.Context, url, collection string) (*RedisBackend, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, NewDescriptorError(url, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, NewDescriptorError(url, err)
	}

	return &RedisBackend{
		client:     client,
		collection: collection,
		prefix:     collection + ":",
		ownsClient: true,
	}, nil
}

// NewRedisBackendFromClient wraps a caller-supplied client. The client is
// left open when the backend is closed.
func NewRedisBackendFromClient(client *redis.Client, collection string) (*RedisBackend, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	return &RedisBackend{
		client:     client,
		collection: collection,
		prefix:     collection + ":",
	}, nil
}

func (b *RedisBackend) Kind() BackendKind {
	return KindKeyValueCache
}

// EnsureSchema is a no-op: Redis keys need no declared schema.
func (b *RedisBackend) EnsureSchema(ctx context.Context) error {
	return nil
}

// LoadAll walks the collection's namespace with SCAN rather than KEYS so a
// shared Redis server is never blocked by a large keyspace.
func (b *RedisBackend) LoadAll(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	iter := b.client.Scan(ctx, 0, b.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		value, err := b.client.Get(ctx, full).Result()
		if errors.Is(err, redis.Nil) {
			// Expired or deleted between SCAN and GET; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Key:   strings.TrimPrefix(full, b.prefix),
			Value: value,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}

	value, err := b.client.Get(ctx, b.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", WithContext(ErrNotFound, map[string]interface{}{
			"key":        key,
			"collection": b.collection,
		})
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (b *RedisBackend) Put(ctx context.Context, key, value string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, b.prefix+key, value, 0).Err()
}

// Update is an upsert like Put; SET covers both branches.
func (b *RedisBackend) Update(ctx context.Context, key, value string) error {
	return b.Put(ctx, key, value)
}

// Delete removes a key. Deleting an absent key is a silent no-op, matching
// DEL's native semantics.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	return b.client.Del(ctx, b.prefix+key).Err()
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close(ctx context.Context) error {
	if !b.ownsClient {
		return nil
	}
	return b.client.Close()
}
