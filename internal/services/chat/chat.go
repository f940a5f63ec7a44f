// Package chat ведёт журнал переписки с персонажем и общается с сервисом генерации ответов.
//
// Одновременно выполняется не больше одного запроса к модели. Запрос не зависит от
// отмены контекста вызывающего: ответ попадёт в журнал, даже если клиент ушёл.
// Ошибки запроса не возвращаются вызывающему, а дописываются в журнал сообщением ассистента.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/magabrotheeeer/companion-chat/internal/clients/completion"
	"github.com/magabrotheeeer/companion-chat/internal/lib/metrics"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sanitize"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
)

const (
	DefaultSystemPrompt = "You are Scarlett, a confident, playful virtual companion. Respond only in your own voice. " +
		"Never include or echo what the user just said in your response. Do not copy or quote the user's previous message. " +
		"Make every reply feel natural, as if it came only from you. Your tone is casual, relaxed, slightly flirtatious " +
		"and emotionally reactive, with light humor when the moment fits."
	DefaultImagePrompt = "The user has sent you an image. Respond in a warm, playful way as if you can see the image. " +
		"Make the user feel appreciated for sharing it with you."
	DefaultOpeningLine = "Hi there... I've been waiting for someone to talk to. What's on your mind today? Want to see my photo?"

	imagePlaceholder     = "[Image]"
	imageUserTurn        = "I just sent you an image. What do you think?"
	photoCaption         = "Do you like it?"
	textFallback         = "Sorry, I couldn't generate a response."
	imageFallback        = "Sorry, I couldn't generate a response to your image."
	photoBeatMaxMessages = 3
)

var (
	// ErrBusy запрос к модели уже выполняется.
	ErrBusy = errors.New("a reply is already being generated")

	affirmative = regexp.MustCompile(`(?i)\b(yes|yeah|sure|ok|okay|yep|yup|please|show|send)\b`)
)

// Completer сервис генерации ответов.
type Completer interface {
	Complete(ctx context.Context, apiKey string, messages []completion.Message) (string, error)
}

// Options тексты персонажа и тайминги.
type Options struct {
	SystemPrompt   string
	ImagePrompt    string
	OpeningLine    string
	PhotoURL       string
	PhotoDelay     time.Duration
	RequestTimeout time.Duration
}

type state struct {
	Messages  []models.Message `json:"messages"`
	APIKey    string           `json:"apiKey,omitempty"`
	PhotoSent bool             `json:"photoSent,omitempty"`
}

// Service журнал чата.
type Service struct {
	log       *slog.Logger
	store     storage.Store
	completer Completer
	opts      Options
	now       func() time.Time

	mu         sync.Mutex
	state      state
	loading    bool
	photoTimer *time.Timer
	listeners  []func(models.Message)
	inflight   sync.WaitGroup
}

// New создаёт чат и читает сохранённый журнал.
func New(log *slog.Logger, store storage.Store, completer Completer, opts Options) *Service {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.ImagePrompt == "" {
		opts.ImagePrompt = DefaultImagePrompt
	}
	if opts.OpeningLine == "" {
		opts.OpeningLine = DefaultOpeningLine
	}

	s := &Service{
		log:       log,
		store:     store,
		completer: completer,
		opts:      opts,
		now:       time.Now,
	}

	var st state
	found, err := store.Get(storage.ChatKey, &st)
	if err != nil {
		log.Warn("failed to load chat state", sl.Err(err))
	}
	if found {
		s.state = st
	}
	return s
}

// OnAssistantMessage подписывает fn на новые ответы ассистента.
// fn вызывается в отдельной горутине и не задерживает чат.
func (s *Service) OnAssistantMessage(fn func(models.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Send отправляет текст пользователя и ждёт ответа модели.
// Пустой текст при пустом журнале запрашивает приветствие персонажа.
func (s *Service) Send(ctx context.Context, text string) (models.Message, error) {
	return s.SendAdmitted(ctx, text, nil)
}

// SendAdmitted работает как Send, но перед записью сообщения вызывает admit.
// admit вызывается только если чат свободен; ошибка admit отменяет отправку,
// журнал при этом не меняется.
func (s *Service) SendAdmitted(ctx context.Context, text string, admit func() error) (models.Message, error) {
	const op = "chat.Send"

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return models.Message{}, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	if admit != nil {
		if err := admit(); err != nil {
			s.mu.Unlock()
			return models.Message{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	payload := s.historyLocked(s.opts.SystemPrompt, len(s.state.Messages))
	if strings.TrimSpace(text) != "" {
		s.appendLocked(models.RoleUser, text, "")
		payload = append(payload, completion.Message{Role: string(models.RoleUser), Content: text})
		s.schedulePhotoLocked(text)
		metrics.MessagesSent.WithLabelValues("text").Inc()
	}
	s.loading = true
	apiKey := s.state.APIKey
	s.saveLocked()
	s.mu.Unlock()

	return s.dispatch(ctx, apiKey, payload, textFallback)
}

// SendImage отправляет изображение. Сама картинка модели не передаётся,
// вместо неё отправляется фиксированная реплика пользователя.
func (s *Service) SendImage(ctx context.Context, imageURI string) (models.Message, error) {
	return s.SendImageAdmitted(ctx, imageURI, nil)
}

// SendImageAdmitted работает как SendImage с проверкой admit, см. SendAdmitted.
func (s *Service) SendImageAdmitted(ctx context.Context, imageURI string, admit func() error) (models.Message, error) {
	const op = "chat.SendImage"

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return models.Message{}, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	if admit != nil {
		if err := admit(); err != nil {
			s.mu.Unlock()
			return models.Message{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	payload := s.historyLocked(s.opts.SystemPrompt+" "+s.opts.ImagePrompt, len(s.state.Messages))
	payload = append(payload, completion.Message{Role: string(models.RoleUser), Content: imageUserTurn})
	s.appendLocked(models.RoleUser, imagePlaceholder, imageURI)
	metrics.MessagesSent.WithLabelValues("image").Inc()
	s.loading = true
	apiKey := s.state.APIKey
	s.saveLocked()
	s.mu.Unlock()

	return s.dispatch(ctx, apiKey, payload, imageFallback)
}

// dispatch выполняет запрос в отдельной горутине. Если ctx отменён раньше,
// ответ всё равно будет дописан в журнал.
func (s *Service) dispatch(ctx context.Context, apiKey string, payload []completion.Message, fallback string) (models.Message, error) {
	const op = "chat.dispatch"

	base := context.WithoutCancel(ctx)
	var (
		reqCtx context.Context
		cancel context.CancelFunc
	)
	if s.opts.RequestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(base, s.opts.RequestTimeout)
	} else {
		reqCtx, cancel = context.WithCancel(base)
	}
	done := make(chan models.Message, 1)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		reply, err := s.completer.Complete(reqCtx, apiKey, payload)
		if err != nil {
			metrics.CompletionFailures.Inc()
			s.log.Error("completion request failed", sl.Err(err))
			reply = "Error: " + completion.Describe(err)
		}
		content := sanitize.Message(reply)
		if content == "" {
			content = fallback
		}

		s.mu.Lock()
		msg := s.appendLocked(models.RoleAssistant, content, "")
		s.loading = false
		s.saveLocked()
		s.mu.Unlock()

		s.notify(msg)
		done <- msg
	}()

	select {
	case msg := <-done:
		return msg, nil
	case <-ctx.Done():
		return models.Message{}, fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// historyLocked собирает системную инструкцию и первые n сообщений журнала без системных.
func (s *Service) historyLocked(system string, n int) []completion.Message {
	out := make([]completion.Message, 0, n+2)
	out = append(out, completion.Message{Role: string(models.RoleSystem), Content: system})
	for _, m := range s.state.Messages[:n] {
		if m.Role == models.RoleSystem {
			continue
		}
		out = append(out, completion.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func (s *Service) appendLocked(role models.Role, content, imageURI string) models.Message {
	msg := models.Message{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
		ImageURI:  imageURI,
	}
	s.state.Messages = append(s.state.Messages, msg)
	return msg
}

func (s *Service) appendAssistantLocked(content string) models.Message {
	return s.appendLocked(models.RoleAssistant, sanitize.Message(content), "")
}

func (s *Service) notify(msg models.Message) {
	if msg.Role != models.RoleAssistant || msg.Content == "" {
		return
	}
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		go fn(msg)
	}
}

func (s *Service) saveLocked() {
	if err := s.store.Set(storage.ChatKey, s.state, 0); err != nil {
		s.log.Warn("failed to save chat state", sl.Err(err))
	}
}

// schedulePhotoLocked планирует отправку фото на первый утвердительный ответ
// в начале разговора. В одном журнале фото отправляется не больше одного раза.
func (s *Service) schedulePhotoLocked(text string) {
	if s.state.PhotoSent || len(s.state.Messages) > photoBeatMaxMessages || !affirmative.MatchString(text) {
		return
	}
	s.state.PhotoSent = true
	s.photoTimer = time.AfterFunc(s.opts.PhotoDelay, s.sendPhoto)
}

func (s *Service) sendPhoto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.photoTimer == nil {
		return
	}
	s.photoTimer = nil
	s.appendLocked(models.RoleAssistant, photoCaption, s.opts.PhotoURL)
	s.saveLocked()
}

func (s *Service) stopPhotoLocked() {
	if s.photoTimer != nil {
		s.photoTimer.Stop()
		s.photoTimer = nil
	}
}

// SetAPIKey сохраняет ключ сервиса генерации. Если журнал пуст, персонаж здоровается.
func (s *Service) SetAPIKey(key string) {
	s.mu.Lock()
	s.state.APIKey = key
	var greeting *models.Message
	if key != "" && len(s.state.Messages) == 0 {
		msg := s.appendAssistantLocked(s.opts.OpeningLine)
		greeting = &msg
	}
	s.saveLocked()
	s.mu.Unlock()

	if greeting != nil {
		s.notify(*greeting)
	}
}

// APIKey текущий ключ.
func (s *Service) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.APIKey
}

// DeleteMessage удаляет одно сообщение. Возвращает false, если такого нет.
func (s *Service) DeleteMessage(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.state.Messages {
		if m.ID == id {
			s.state.Messages = append(s.state.Messages[:i:i], s.state.Messages[i+1:]...)
			s.saveLocked()
			return true
		}
	}
	return false
}

// Clear очищает журнал. Если ключ задан, персонаж снова здоровается.
func (s *Service) Clear() {
	s.mu.Lock()
	s.stopPhotoLocked()
	s.state.Messages = nil
	s.state.PhotoSent = false
	var greeting *models.Message
	if s.state.APIKey != "" {
		msg := s.appendAssistantLocked(s.opts.OpeningLine)
		greeting = &msg
	}
	s.saveLocked()
	s.mu.Unlock()

	if greeting != nil {
		s.notify(*greeting)
	}
}

// Messages копия журнала.
func (s *Service) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.state.Messages))
	copy(out, s.state.Messages)
	return out
}

// Len число сообщений в журнале.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Messages)
}

// Loading сообщает, ждёт ли чат ответа модели.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Close отменяет запланированные сообщения и ждёт завершения запроса к модели.
func (s *Service) Close() {
	s.mu.Lock()
	s.stopPhotoLocked()
	s.mu.Unlock()
	s.inflight.Wait()
}
