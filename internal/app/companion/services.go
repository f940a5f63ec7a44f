package companion

import (
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/companion-chat/internal/config"
	"github.com/magabrotheeeer/companion-chat/internal/events"
	"github.com/magabrotheeeer/companion-chat/internal/lib/jwt"
	"github.com/magabrotheeeer/companion-chat/internal/lib/password"
	"github.com/magabrotheeeer/companion-chat/internal/services/access"
	"github.com/magabrotheeeer/companion-chat/internal/services/chat"
	companionservice "github.com/magabrotheeeer/companion-chat/internal/services/companion"
	"github.com/magabrotheeeer/companion-chat/internal/services/slot"
	"github.com/magabrotheeeer/companion-chat/internal/services/subscription"
	"github.com/magabrotheeeer/companion-chat/internal/services/voice"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
)

// Services все сервисы одной сессии устройства.
type Services struct {
	Access       *access.Service
	Subscription *subscription.Service
	Chat         *chat.Service
	Voice        *voice.Service
	Slot         *slot.Machine
	Companion    *companionservice.Service
}

// NewServices собирает сервисы поверх общего хранилища. Ответы ассистента
// передаются голосу для автовоспроизведения.
func NewServices(
	log *slog.Logger,
	cfg *config.Config,
	store storage.Store,
	publisher events.Publisher,
	completer chat.Completer,
	synth voice.Synthesizer,
) (*Services, error) {
	const op = "app.companion.NewServices"

	appSecret, err := password.NewSecret(cfg.AppPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subSecret, err := password.NewSecret(cfg.SubscriptionPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessService := access.New(
		log.With(slog.String("component", "access")),
		store,
		appSecret,
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
	)

	subscriptionService := subscription.New(
		log.With(slog.String("component", "subscription")),
		store,
		publisher,
		subSecret,
		subscription.Options{
			FreeMessageLimit: cfg.FreeMessageLimit,
			SubscriptionDays: cfg.SubscriptionDays,
			PaymentDelay:     cfg.PaymentDelay,
		},
	)

	chatService := chat.New(
		log.With(slog.String("component", "chat")),
		store,
		completer,
		chat.Options{
			SystemPrompt:   cfg.SystemPrompt,
			ImagePrompt:    cfg.ImagePrompt,
			OpeningLine:    cfg.OpeningLine,
			PhotoURL:       cfg.PhotoURL,
			PhotoDelay:     cfg.PhotoDelay,
			RequestTimeout: cfg.Completion.RequestTimeout,
		},
	)

	voiceService := voice.New(
		log.With(slog.String("component", "voice")),
		store,
		synth,
		cfg.DefaultVoiceID,
		cfg.Voice.RequestTimeout,
	)
	chatService.OnAssistantMessage(voiceService.AutoPlay)

	machine := slot.New(
		log.With(slog.String("component", "slot")),
		nil,
		slot.Options{
			StartCredits:  cfg.StartCredits,
			StartBet:      cfg.StartBet,
			MinBet:        cfg.MinBet,
			MaxBet:        cfg.MaxBet,
			BetStep:       cfg.BetStep,
			DepositAmount: cfg.DepositAmount,
			SpinDelay:     cfg.SpinDelay,
			AutoSpinDelay: cfg.AutoSpinDelay,
		},
	)

	return &Services{
		Access:       accessService,
		Subscription: subscriptionService,
		Chat:         chatService,
		Voice:        voiceService,
		Slot:         machine,
		Companion:    companionservice.New(log, subscriptionService, chatService, accessService),
	}, nil
}

// Close останавливает таймеры и дожидается запросов к модели.
func (s *Services) Close() {
	s.Slot.Close()
	s.Chat.Close()
	s.Voice.Stop()
}
