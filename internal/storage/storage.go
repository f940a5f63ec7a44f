// Package storage описывает общий контракт key/value хранилища состояний.
// Реализации: redis (по умолчанию) и postgresql.
package storage

import "time"

// Store хранит JSON-значения по ключу.
type Store interface {
	// Get декодирует значение ключа в result. Возвращает false, если ключа нет.
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Ключи хранилищ, которые очищаются при старте сессии.
const (
	AuthKey         = "companion-auth-storage"
	ChatKey         = "companion-chat-storage"
	SubscriptionKey = "companion-subscription-storage"
	VoiceKey        = "companion-voice-storage"
)

// SessionKeys все ключи, принадлежащие одной сессии устройства.
func SessionKeys() []string {
	return []string{AuthKey, ChatKey, SubscriptionKey, VoiceKey}
}
