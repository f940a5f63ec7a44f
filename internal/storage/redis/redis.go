// Package redis реализует хранилище состояний поверх Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/companion-chat/internal/config"
)

// Store хранит значения сессии в Redis в виде JSON.
type Store struct {
	Db *redis.Client
}

// New подключается к Redis и проверяет соединение.
func New(ctx context.Context, cfg config.RedisConnection) (*Store, error) {
	const op = "storage.redis.New"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db}, nil
}

// Get читает значение ключа. Отсутствующий ключ не считается ошибкой.
func (s *Store) Get(key string, result any) (bool, error) {
	const op = "storage.redis.Get"
	val, err := s.Db.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение. Нулевой expiration означает хранение без срока.
func (s *Store) Set(key string, value any, expiration time.Duration) error {
	const op = "storage.redis.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Db.Set(context.Background(), key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (s *Store) Invalidate(key string) error {
	const op = "storage.redis.Invalidate"
	if err := s.Db.Del(context.Background(), key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение.
func (s *Store) Close() error {
	return s.Db.Close()
}
