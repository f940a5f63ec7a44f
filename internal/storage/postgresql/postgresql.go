// Package postgresql реализует хранилище состояний поверх PostgreSQL.
// Значения лежат в таблице kv_store в колонке JSONB, схема создаётся миграциями.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store инкапсулирует соединение с базой данных.
type Store struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Store, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{DB: db}, nil
}

// Get читает значение ключа. Просроченные записи считаются отсутствующими.
func (s *Store) Get(key string, result any) (bool, error) {
	const op = "storage.postgresql.Get"

	var raw []byte
	err := s.DB.QueryRowContext(context.Background(), `
		SELECT value FROM kv_store
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(raw, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение. Нулевой expiration означает хранение без срока.
func (s *Store) Set(key string, value any, expiration time.Duration) error {
	const op = "storage.postgresql.Set"

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var expiresAt *time.Time
	if expiration > 0 {
		t := time.Now().Add(expiration)
		expiresAt = &t
	}

	_, err = s.DB.ExecContext(context.Background(), `
		INSERT INTO kv_store (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = now()`,
		key, raw, expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (s *Store) Invalidate(key string) error {
	const op = "storage.postgresql.Invalidate"
	if _, err := s.DB.ExecContext(context.Background(), `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	return s.DB.Close()
}
