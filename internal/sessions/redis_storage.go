package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix      = "drinktab:session:"
	redisCommandTimeout = 3 * time.Second
	redisScanBatch      = 100
)

type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage connects to the redis URL and verifies it answers PING.
func NewRedisStorage(rawURL string) (*RedisStorage, error) {
	options, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStorage{client: client}, nil
}

func NewRedisStorageFromClient(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (storage *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()

	value, err := storage.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return value, err
}

func (storage *RedisStorage) Set(key string, value []byte, expiration time.Duration) error {
	if key == "" || len(value) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()
	return storage.client.Set(ctx, redisKeyPrefix+key, value, expiration).Err()
}

func (storage *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()
	return storage.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Reset drops every session key. Other keys in the same database are left alone.
func (storage *RedisStorage) Reset() error {
	ctx := context.Background()
	iterator := storage.client.Scan(ctx, 0, redisKeyPrefix+"*", redisScanBatch).Iterator()

	batch := make([]string, 0, redisScanBatch)
	for iterator.Next(ctx) {
		batch = append(batch, iterator.Val())
		if len(batch) == redisScanBatch {
			if err := storage.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iterator.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return storage.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (storage *RedisStorage) Close() error {
	return storage.client.Close()
}
