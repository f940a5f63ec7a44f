package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/companion-chat/internal/events"
	"github.com/magabrotheeeer/companion-chat/internal/lib/metrics"
)

// Activate включает подписку с датой начала start. Счётчик сообщений обнуляется,
// подписка становится защищённой паролем, подтверждение пароля сбрасывается.
func (s *Service) Activate(start time.Time) {
	s.mu.Lock()
	s.state.Valid = true
	s.state.StartDate = &start
	s.state.MessageCount = 0
	s.state.PasswordProtected = true
	s.state.PasswordVerified = false
	s.state.ModalVisible = false
	s.state.ProcessingPayment = false
	s.saveLocked()
	s.mu.Unlock()

	metrics.SubscriptionEvents.WithLabelValues("activated").Inc()
	s.log.Info("subscription activated", "start_date", start)
	s.publish([]event{{
		key: events.SubscriptionActivated,
		payload: events.SubscriptionPayload{
			StartDate: start,
			ExpiresAt: start.Add(time.Duration(s.opts.SubscriptionDays) * day),
			At:        s.now(),
		},
	}})
}

// Recheck переводит подписку в недействительную, если окно истекло к моменту now.
// Повторные вызовы ничего не меняют. Возвращает true, если подписка истекла именно сейчас.
func (s *Service) Recheck(now time.Time) bool {
	s.mu.Lock()
	evs := s.refreshLocked(now)
	s.mu.Unlock()

	s.publish(evs)
	return len(evs) > 0
}

// refreshLocked истекает подписку, если окно прошло. Дата начала сохраняется.
func (s *Service) refreshLocked(now time.Time) []event {
	if !s.state.Valid || s.state.StartDate == nil {
		return nil
	}
	if !Expired(*s.state.StartDate, now, s.opts.SubscriptionDays) {
		return nil
	}

	s.state.Valid = false
	s.state.PasswordProtected = false
	s.state.PasswordVerified = false
	s.saveLocked()

	metrics.SubscriptionEvents.WithLabelValues("expired").Inc()
	s.log.Info("subscription expired", "start_date", *s.state.StartDate)
	return []event{{
		key: events.SubscriptionExpired,
		payload: events.SubscriptionPayload{
			StartDate: *s.state.StartDate,
			ExpiresAt: s.state.StartDate.Add(time.Duration(s.opts.SubscriptionDays) * day),
			At:        now,
		},
	}}
}

// Expired сообщает, превысило ли число прошедших дней (с округлением вверх) окно windowDays.
func Expired(start, now time.Time, windowDays int) bool {
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return false
	}
	days := int64(elapsed / day)
	if elapsed%day != 0 {
		days++
	}
	return days > int64(windowDays)
}

// VerifyPassword подтверждает пароль подписки. При несовпадении состояние не меняется.
func (s *Service) VerifyPassword(candidate string) bool {
	if !s.secret.Matches(candidate) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PasswordVerified = true
	s.saveLocked()
	return true
}

// ResetPasswordVerification снимает подтверждение пароля.
func (s *Service) ResetPasswordVerification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PasswordVerified = false
	s.saveLocked()
}

// SetModalVisible показывает или скрывает предложение оформить подписку.
func (s *Service) SetModalVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ModalVisible = visible
	s.saveLocked()
}

// Checkout имитирует оплату: выставляет признак обработки, ждёт PaymentDelay
// и активирует подписку с текущей датой. Реального списания нет.
func (s *Service) Checkout(ctx context.Context) error {
	const op = "subscription.Checkout"

	s.mu.Lock()
	if s.state.ProcessingPayment {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrPaymentInProgress)
	}
	s.state.ProcessingPayment = true
	s.saveLocked()
	s.mu.Unlock()

	timer := time.NewTimer(s.opts.PaymentDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		s.state.ProcessingPayment = false
		s.saveLocked()
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case <-timer.C:
	}

	s.Activate(s.now())
	return nil
}
