// Package password хранит общие секреты гейтов в виде bcrypt-хешей.
//
// GetHash создает bcrypt-хеш, CompareHash сверяет введённое значение с хешем.
// Secret оборачивает настроенный пароль так, чтобы исходная строка не жила в памяти сервисов.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GetHash принимает пароль и возвращает его bcrypt‑хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Secret фиксированный общий секрет гейта.
type Secret struct {
	hash string
}

// NewSecret хеширует настроенное значение секрета.
func NewSecret(plain string) (*Secret, error) {
	const op = "password.NewSecret"
	if plain == "" {
		return nil, fmt.Errorf("%s: empty secret", op)
	}
	hash, err := GetHash(plain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Secret{hash: hash}, nil
}

// MustSecret как NewSecret, но паникует. Для тестов и констант.
func MustSecret(plain string) *Secret {
	s, err := NewSecret(plain)
	if err != nil {
		panic(err)
	}
	return s
}

// Matches сообщает, совпадает ли кандидат с секретом целиком.
func (s *Secret) Matches(candidate string) bool {
	if candidate == "" {
		return false
	}
	return CompareHash(s.hash, candidate) == nil
}
