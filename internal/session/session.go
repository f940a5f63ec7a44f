// Package session сбрасывает сохранённое состояние при старте процесса,
// чтобы каждый запуск начинался с чистого листа.
package session

import (
	"errors"
	"fmt"
)

// Invalidator удаляет значение по ключу.
type Invalidator interface {
	Invalidate(key string) error
}

// Initialize очищает все переданные ключи. Вызывается один раз до того,
// как сервисы прочитают своё состояние из хранилища.
// Ошибка по одному ключу не останавливает очистку остальных.
func Initialize(store Invalidator, keys []string) error {
	const op = "session.Initialize"
	var errs []error
	for _, key := range keys {
		if err := store.Invalidate(key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
