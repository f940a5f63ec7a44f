// Package access реализует пароль приложения: вход по общему секрету,
// выход и выпуск JWT для клиентской сессии.
package access

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/companion-chat/internal/lib/jwt"
	"github.com/magabrotheeeer/companion-chat/internal/lib/password"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
)

var (
	// ErrInvalidPassword введён неверный пароль приложения.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrUnauthorized токен недействителен или сессия завершена.
	ErrUnauthorized = errors.New("unauthorized")
)

type state struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	ModalVisible    bool   `json:"showAuthModal"`
	SessionID       string `json:"sessionId,omitempty"`
}

// Service гейт входа в приложение.
type Service struct {
	log      *slog.Logger
	store    storage.Store
	secret   *password.Secret
	jwtMaker jwt.Maker

	mu    sync.Mutex
	state state
}

// New создаёт гейт и читает сохранённое состояние.
func New(log *slog.Logger, store storage.Store, secret *password.Secret, jwtMaker jwt.Maker) *Service {
	s := &Service{
		log:      log,
		store:    store,
		secret:   secret,
		jwtMaker: jwtMaker,
	}
	var st state
	found, err := store.Get(storage.AuthKey, &st)
	if err != nil {
		log.Warn("failed to load auth state", sl.Err(err))
	}
	if found {
		s.state = st
	}
	return s
}

func (s *Service) saveLocked() {
	if err := s.store.Set(storage.AuthKey, s.state, 0); err != nil {
		s.log.Warn("failed to save auth state", sl.Err(err))
	}
}

// Authenticate открывает доступ, если кандидат совпадает с паролем приложения.
// При несовпадении состояние не меняется.
func (s *Service) Authenticate(candidate string) bool {
	if !s.secret.Matches(candidate) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsAuthenticated = true
	s.state.ModalVisible = false
	if s.state.SessionID == "" {
		s.state.SessionID = uuid.NewString()
	}
	s.saveLocked()
	return true
}

// Login проверяет пароль и выпускает токен текущей сессии.
func (s *Service) Login(candidate string) (string, error) {
	const op = "access.Login"
	if !s.Authenticate(candidate) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidPassword)
	}

	token, err := s.jwtMaker.GenerateToken(s.SessionID())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Logout закрывает доступ. Ранее выданные токены перестают действовать.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsAuthenticated = false
	s.state.SessionID = ""
	s.saveLocked()
}

// IsAuthenticated сообщает, открыт ли доступ.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated
}

// SessionID идентификатор текущей сессии или пустая строка.
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionID
}

// ModalVisible сообщает, показано ли окно ввода пароля.
func (s *Service) ModalVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ModalVisible
}

// SetModalVisible показывает или скрывает окно ввода пароля.
func (s *Service) SetModalVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ModalVisible = visible
	s.saveLocked()
}

// ValidateToken проверяет токен и то, что он выдан для текущей открытой сессии.
func (s *Service) ValidateToken(token string) (string, error) {
	const op = "access.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated || claims.SessionID != s.state.SessionID {
		return "", fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	return claims.SessionID, nil
}
