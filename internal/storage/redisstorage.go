package storage

import (
	"NetCmdLogParser/internal/config"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore хранит обработанные файлы в hash: поле — путь, значение — размер
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisStore(rdb, cfg.Key)
}

func newRedisStore(rdb *redis.Client, key string) (*RedisStore, error) {
	// Проверяем подключение с тайм-аутом
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}
	return &RedisStore{client: rdb, key: key}, nil
}

func (r *RedisStore) Load() (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	processed := make(map[string]int64, len(fields))
	for path, size := range fields {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			continue // битое значение — файл будет обработан заново
		}
		processed[path] = n
	}
	return processed, nil
}

func (r *RedisStore) Save(data map[string]int64) error {
	if len(data) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	values := make(map[string]interface{}, len(data))
	for path, size := range data {
		values[path] = size
	}
	return r.client.HSet(ctx, r.key, values).Err()
}
