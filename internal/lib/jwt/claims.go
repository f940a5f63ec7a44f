// Package jwt реализует выпуск и разбор токенов доступа к приложению.
//
// Токен выдаётся после успешного ввода пароля приложения и несёт идентификатор сессии устройства.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для сессии.
	GenerateToken(sessionID string) (string, error)
	// ParseToken проверяет подпись и срок и возвращает claims.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// SessionClaims данные, хранящиеся в токене.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// MakerImpl реализует Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
