package subscription

import (
	"errors"

	"github.com/magabrotheeeer/companion-chat/internal/events"
	"github.com/magabrotheeeer/companion-chat/internal/lib/metrics"
)

// ErrPaymentInProgress повторный запуск оплаты, пока предыдущая не завершена.
var ErrPaymentInProgress = errors.New("payment is already being processed")

// Increment учитывает одно сообщение пользователя. При активной подписке ничего не делает.
// Возвращает true, если после увеличения счётчик достиг лимита; в этом случае
// показывается предложение оформить подписку.
func (s *Service) Increment() bool {
	s.mu.Lock()
	evs := s.refreshLocked(s.now())
	if s.state.Valid {
		s.mu.Unlock()
		s.publish(evs)
		return false
	}

	s.state.MessageCount++
	reached := s.state.MessageCount >= s.opts.FreeMessageLimit
	if reached {
		s.state.ModalVisible = true
		evs = append(evs, event{
			key: events.LimitReached,
			payload: events.LimitReachedPayload{
				MessageCount: s.state.MessageCount,
				Limit:        s.opts.FreeMessageLimit,
				At:           s.now(),
			},
		})
	}
	s.saveLocked()
	s.mu.Unlock()

	if reached {
		metrics.UpgradePrompts.Inc()
	}
	s.publish(evs)
	return reached
}

// ResetCount обнуляет счётчик сообщений.
func (s *Service) ResetCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MessageCount = 0
	s.saveLocked()
}

// Blocked сообщает, исчерпан ли бесплатный лимит без действующей подписки.
func (s *Service) Blocked() bool {
	s.mu.Lock()
	evs := s.refreshLocked(s.now())
	blocked := s.blockedLocked()
	s.mu.Unlock()

	s.publish(evs)
	return blocked
}

func (s *Service) blockedLocked() bool {
	return !s.state.Valid && s.state.MessageCount >= s.opts.FreeMessageLimit
}

// PromptUpgrade показывает предложение оформить подписку.
func (s *Service) PromptUpgrade() {
	s.SetModalVisible(true)
	metrics.UpgradePrompts.Inc()
}

// Valid сообщает, действует ли подписка сейчас.
func (s *Service) Valid() bool {
	return s.Status().Valid
}
