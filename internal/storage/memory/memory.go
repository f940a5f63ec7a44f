// Package memory хранилище состояний в памяти процесса. Используется в тестах
// и при запуске без внешнего хранилища.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store потокобезопасное key/value хранилище с JSON-значениями.
type Store struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Get читает значение ключа. Просроченные значения считаются отсутствующими.
func (s *Store) Get(key string, result any) (bool, error) {
	const op = "storage.memory.Get"
	s.mu.Lock()
	e, ok := s.data[key]
	if ok && !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.data, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.value, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение. Нулевой expiration означает хранение без срока.
func (s *Store) Set(key string, value any, expiration time.Duration) error {
	const op = "storage.memory.Set"
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	e := entry{value: raw}
	if expiration > 0 {
		e.expiresAt = s.now().Add(expiration)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = e
	return nil
}

// Invalidate удаляет ключ.
func (s *Store) Invalidate(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
