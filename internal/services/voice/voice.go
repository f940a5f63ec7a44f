// Package voice озвучивает ответы персонажа через внешний сервис синтеза речи.
//
// Синтезированный клип хранится как текущий, пока клиент не заберёт его на
// воспроизведение или не остановит. Ошибки синтеза не показываются пользователю.
package voice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/companion-chat/internal/clients/speech"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
)

// Synthesizer сервис синтеза речи.
type Synthesizer interface {
	Synthesize(ctx context.Context, apiKey, voiceID, text string) (*speech.Audio, error)
}

type state struct {
	VoiceEnabled    bool   `json:"voiceEnabled"`
	AutoPlayEnabled bool   `json:"autoPlayEnabled"`
	VoiceAPIKey     string `json:"voiceApiKey,omitempty"`
	VoiceID         string `json:"voiceId"`
}

// Service настройки и воспроизведение голоса.
type Service struct {
	log     *slog.Logger
	store   storage.Store
	synth   Synthesizer
	timeout time.Duration

	mu      sync.Mutex
	state   state
	playing bool
	current *speech.Audio
	gen     uint64
}

// New создаёт сервис. По умолчанию голос выключен, автовоспроизведение включено.
func New(log *slog.Logger, store storage.Store, synth Synthesizer, defaultVoiceID string, timeout time.Duration) *Service {
	s := &Service{
		log:     log,
		store:   store,
		synth:   synth,
		timeout: timeout,
		state: state{
			AutoPlayEnabled: true,
			VoiceID:         defaultVoiceID,
		},
	}

	var st state
	found, err := store.Get(storage.VoiceKey, &st)
	if err != nil {
		log.Warn("failed to load voice state", sl.Err(err))
	}
	if found {
		s.state = st
	}
	return s
}

func (s *Service) saveLocked() {
	if err := s.store.Set(storage.VoiceKey, s.state, 0); err != nil {
		s.log.Warn("failed to save voice state", sl.Err(err))
	}
}

// Settings снимок настроек.
func (s *Service) Settings() models.VoiceSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.VoiceSettings{
		Enabled:         s.state.VoiceEnabled,
		AutoPlayEnabled: s.state.AutoPlayEnabled,
		HasAPIKey:       s.state.VoiceAPIKey != "",
		VoiceID:         s.state.VoiceID,
		Playing:         s.playing,
		HasAudio:        s.current != nil,
	}
}

// Apply меняет переданные настройки. Пустые поля запроса не трогаются.
func (s *Service) Apply(req models.VoiceSettingsRequest) models.VoiceSettings {
	s.mu.Lock()
	if req.Enabled != nil {
		s.state.VoiceEnabled = *req.Enabled
	}
	if req.AutoPlayEnabled != nil {
		s.state.AutoPlayEnabled = *req.AutoPlayEnabled
	}
	if req.APIKey != nil {
		s.state.VoiceAPIKey = *req.APIKey
	}
	if req.VoiceID != nil && *req.VoiceID != "" {
		s.state.VoiceID = *req.VoiceID
	}
	s.saveLocked()
	s.mu.Unlock()

	return s.Settings()
}

// PlayMessage синтезирует text и делает клип текущим. Ничего не делает,
// если голос выключен или ключ не задан. Предыдущий клип отбрасывается.
func (s *Service) PlayMessage(ctx context.Context, text string) {
	s.mu.Lock()
	if !s.state.VoiceEnabled || s.state.VoiceAPIKey == "" || text == "" {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.gen++
	gen := s.gen
	s.playing = true
	apiKey, voiceID := s.state.VoiceAPIKey, s.state.VoiceID
	s.mu.Unlock()

	audio, err := s.synth.Synthesize(ctx, apiKey, voiceID, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if err != nil {
		s.log.Warn("failed to synthesize voice message", sl.Err(err))
		s.playing = false
		s.current = nil
		return
	}
	s.current = audio
}

// AutoPlay озвучивает ответ ассистента, если включены голос и автовоспроизведение.
func (s *Service) AutoPlay(msg models.Message) {
	s.mu.Lock()
	enabled := s.state.VoiceEnabled && s.state.AutoPlayEnabled
	s.mu.Unlock()
	if !enabled || msg.Role != models.RoleAssistant {
		return
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.PlayMessage(ctx, msg.Content)
}

// TakeAudio отдаёт текущий клип на воспроизведение и забывает его.
func (s *Service) TakeAudio() (*speech.Audio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	audio := s.current
	s.current = nil
	s.playing = false
	return audio, true
}

// Stop останавливает воспроизведение и отбрасывает клип, в том числе ещё не готовый.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.current = nil
	s.playing = false
}
