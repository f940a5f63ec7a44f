// Package subscription ведёт счётчик бесплатных сообщений и локальную подписку:
// окно действия, защиту паролем и окно с предложением оформить подписку.
//
// Состояние хранится в одном ключе хранилища и сохраняется после каждого изменения.
// Действительность подписки пересчитывается при каждом чтении, поэтому истёкшая
// подписка не считается активной даже до срабатывания периодической проверки.
package subscription

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/companion-chat/internal/events"
	"github.com/magabrotheeeer/companion-chat/internal/lib/password"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
)

const day = 24 * time.Hour

// Options параметры гейта.
type Options struct {
	FreeMessageLimit int
	SubscriptionDays int
	PaymentDelay     time.Duration
}

type state struct {
	MessageCount      int        `json:"messageCount"`
	Valid             bool       `json:"subscriptionValid"`
	StartDate         *time.Time `json:"subscriptionStartDate,omitempty"`
	PasswordProtected bool       `json:"passwordProtected"`
	PasswordVerified  bool       `json:"passwordVerified"`
	ModalVisible      bool       `json:"modalVisible"`
	ProcessingPayment bool       `json:"isProcessingPayment"`
}

type event struct {
	key     string
	payload any
}

// Service счётчик сообщений и гейт подписки.
type Service struct {
	log       *slog.Logger
	store     storage.Store
	publisher events.Publisher
	secret    *password.Secret
	opts      Options
	now       func() time.Time

	mu    sync.Mutex
	state state
}

// New создаёт сервис и читает сохранённое состояние.
func New(log *slog.Logger, store storage.Store, publisher events.Publisher, secret *password.Secret, opts Options) *Service {
	s := &Service{
		log:       log,
		store:     store,
		publisher: publisher,
		secret:    secret,
		opts:      opts,
		now:       time.Now,
	}
	s.load()
	return s
}

func (s *Service) load() {
	var st state
	found, err := s.store.Get(storage.SubscriptionKey, &st)
	if err != nil {
		s.log.Warn("failed to load subscription state", sl.Err(err))
		return
	}
	if found {
		s.state = st
	}
}

func (s *Service) saveLocked() {
	if err := s.store.Set(storage.SubscriptionKey, s.state, 0); err != nil {
		s.log.Warn("failed to save subscription state", sl.Err(err))
	}
}

func (s *Service) publish(evs []event) {
	for _, ev := range evs {
		if err := s.publisher.Publish(context.Background(), ev.key, ev.payload); err != nil {
			s.log.Error("failed to publish event", slog.String("routing_key", ev.key), sl.Err(err))
		}
	}
}

// Status возвращает снимок подписки и счётчика на текущий момент.
func (s *Service) Status() models.SubscriptionStatus {
	s.mu.Lock()
	evs := s.refreshLocked(s.now())
	status := s.statusLocked()
	s.mu.Unlock()

	s.publish(evs)
	return status
}

func (s *Service) statusLocked() models.SubscriptionStatus {
	st := models.SubscriptionStatus{
		Valid:             s.state.Valid,
		PasswordProtected: s.state.PasswordProtected,
		PasswordVerified:  s.state.PasswordVerified,
		MessageCount:      s.state.MessageCount,
		FreeMessageLimit:  s.opts.FreeMessageLimit,
		Blocked:           s.blockedLocked(),
		ModalVisible:      s.state.ModalVisible,
		ProcessingPayment: s.state.ProcessingPayment,
	}
	if s.state.StartDate != nil {
		start := *s.state.StartDate
		expires := start.Add(time.Duration(s.opts.SubscriptionDays) * day)
		st.StartDate = &start
		st.ExpiresAt = &expires
	}
	if !s.state.Valid {
		st.FreeMessagesRemaining = max(s.opts.FreeMessageLimit-s.state.MessageCount, 0)
	}
	return st
}
