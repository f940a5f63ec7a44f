// Package companion связывает гейты и чат: учитывает сообщения пользователя,
// показывает предложение подписки при исчерпании лимита и выбирает стартовый экран.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/companion-chat/internal/models"
)

var (
	// ErrLimitReached бесплатные сообщения закончились, запрос к модели не отправлялся.
	ErrLimitReached = errors.New("free message limit reached")
	// ErrEmptyMessage пустое сообщение в непустом чате.
	ErrEmptyMessage = errors.New("message is empty")
)

// Usage счётчик сообщений и гейт подписки.
type Usage interface {
	Blocked() bool
	Increment() bool
	ResetCount()
	PromptUpgrade()
	Status() models.SubscriptionStatus
}

// Chat журнал переписки.
type Chat interface {
	SendAdmitted(ctx context.Context, text string, admit func() error) (models.Message, error)
	SendImageAdmitted(ctx context.Context, imageURI string, admit func() error) (models.Message, error)
	Clear()
	Messages() []models.Message
	Len() int
	Loading() bool
	APIKey() string
}

// Access гейт входа в приложение.
type Access interface {
	IsAuthenticated() bool
	ModalVisible() bool
}

// Service сценарии экрана чата.
type Service struct {
	log    *slog.Logger
	usage  Usage
	chat   Chat
	access Access
}

// New создаёт сервис.
func New(log *slog.Logger, usage Usage, chat Chat, access Access) *Service {
	return &Service{
		log:    log,
		usage:  usage,
		chat:   chat,
		access: access,
	}
}

// SendMessage отправляет текст пользователя. Пустой текст допустим только в пустом
// чате и означает запрос приветствия, такой запрос не учитывается в лимите.
func (s *Service) SendMessage(ctx context.Context, text string) (models.Message, error) {
	const op = "companion.SendMessage"

	if strings.TrimSpace(text) == "" {
		if s.chat.Len() > 0 {
			return models.Message{}, fmt.Errorf("%s: %w", op, ErrEmptyMessage)
		}
		msg, err := s.chat.SendAdmitted(ctx, "", nil)
		if err != nil {
			return models.Message{}, fmt.Errorf("%s: %w", op, err)
		}
		return msg, nil
	}

	msg, err := s.chat.SendAdmitted(ctx, text, s.admit)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	return msg, nil
}

// SendImage отправляет изображение по тем же правилам лимита, что и текст.
func (s *Service) SendImage(ctx context.Context, imageURI string) (models.Message, error) {
	const op = "companion.SendImage"

	msg, err := s.chat.SendImageAdmitted(ctx, imageURI, s.admit)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	return msg, nil
}

// admit учитывает сообщение или отклоняет его с показом предложения подписки.
// Вызывается чатом после проверки занятости, под его блокировкой.
func (s *Service) admit() error {
	if s.usage.Blocked() {
		s.usage.PromptUpgrade()
		s.log.Info("message blocked by free message limit")
		return ErrLimitReached
	}
	if s.usage.Increment() {
		s.log.Info("free message limit reached")
	}
	return nil
}

// ClearChat очищает журнал и обнуляет счётчик сообщений.
func (s *Service) ClearChat() {
	s.chat.Clear()
	s.usage.ResetCount()
}

// Screen первый экран для клиента: вход, ввод ключа, пароль подписки или чат.
func (s *Service) Screen() models.Screen {
	return s.screen(s.usage.Status())
}

func (s *Service) screen(status models.SubscriptionStatus) models.Screen {
	switch {
	case !s.access.IsAuthenticated():
		return models.ScreenAccessGate
	case s.chat.APIKey() == "":
		return models.ScreenCredentialPrompt
	case status.PasswordProtected && !status.PasswordVerified:
		return models.ScreenPasswordPrompt
	default:
		return models.ScreenChat
	}
}

// Session сводка для выбора экрана.
func (s *Service) Session() models.SessionView {
	status := s.usage.Status()
	return models.SessionView{
		Screen:           s.screen(status),
		Authenticated:    s.access.IsAuthenticated(),
		AuthModalVisible: s.access.ModalVisible(),
		HasAPIKey:        s.chat.APIKey() != "",
		Subscription:     status,
	}
}

// ChatView состояние чата. Ввод недоступен при исчерпанном лимите и во время ожидания ответа.
func (s *Service) ChatView() models.ChatView {
	loading := s.chat.Loading()
	return models.ChatView{
		Messages:     s.chat.Messages(),
		Loading:      loading,
		HasAPIKey:    s.chat.APIKey() != "",
		InputEnabled: !loading && !s.usage.Blocked(),
	}
}
