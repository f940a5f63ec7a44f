// Package notifier разбирает события гейтов из очередей и превращает их в уведомления.
// Доставка уведомлений пользователю не реализована: они пишутся в лог.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/companion-chat/internal/events"
)

// Service обработчик событий гейтов.
type Service struct {
	log *slog.Logger
}

// New создаёт обработчик.
func New(log *slog.Logger) *Service {
	return &Service{log: log}
}

// Handler возвращает обработчик тела сообщения для routing key.
func (s *Service) Handler(routingKey string) (func([]byte) error, error) {
	const op = "notifier.Handler"
	switch routingKey {
	case events.LimitReached:
		return s.limitReached, nil
	case events.SubscriptionActivated:
		return s.subscription("subscription activated"), nil
	case events.SubscriptionExpired:
		return s.subscription("subscription expired, free message limit applies again"), nil
	default:
		return nil, fmt.Errorf("%s: unknown routing key %q", op, routingKey)
	}
}

func (s *Service) limitReached(body []byte) error {
	const op = "notifier.limitReached"
	var p events.LimitReachedPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("free messages used up, offer subscription",
		slog.Int("message_count", p.MessageCount),
		slog.Int("limit", p.Limit),
		slog.Time("at", p.At),
	)
	return nil
}

func (s *Service) subscription(text string) func([]byte) error {
	return func(body []byte) error {
		const op = "notifier.subscription"
		var p events.SubscriptionPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info(text,
			slog.Time("start_date", p.StartDate),
			slog.Time("expires_at", p.ExpiresAt),
		)
		return nil
	}
}
