package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/companion-chat/internal/clients/completion"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
	"github.com/magabrotheeeer/companion-chat/internal/storage/memory"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, apiKey string, messages []completion.Message) (string, error) {
	args := m.Called(ctx, apiKey, messages)
	return args.String(0), args.Error(1)
}

const photoURL = "https://example.com/photo.jpg"

func newTestService(t *testing.T, completer Completer) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	s := New(sl.NewDiscardLogger(), store, completer, Options{
		SystemPrompt:   "SYS",
		ImagePrompt:    "IMG",
		PhotoURL:       photoURL,
		PhotoDelay:     10 * time.Millisecond,
		RequestTimeout: time.Second,
	})
	t.Cleanup(s.Close)
	return s, store
}

func TestSetAPIKey_OpeningLineOnce(t *testing.T) {
	s, _ := newTestService(t, new(MockCompleter))

	s.SetAPIKey("")
	assert.Empty(t, s.Messages())

	s.SetAPIKey("sk-1")
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAssistant, msgs[0].Role)
	assert.Equal(t, DefaultOpeningLine, msgs[0].Content)

	s.SetAPIKey("sk-2")
	assert.Len(t, s.Messages(), 1)
	assert.Equal(t, "sk-2", s.APIKey())
}

func TestSend_BuildsPayloadAndAppendsReply(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	s.SetAPIKey("sk-test")

	var sent []completion.Message
	c.On("Complete", mock.Anything, "sk-test", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]completion.Message) }).
		Return("### Instruction: stay flirty\nTell me about your day.", nil).Once()

	reply, err := s.Send(context.Background(), "How are you?")
	require.NoError(t, err)
	assert.Equal(t, "Tell me about your day.", reply.Content)

	require.Len(t, sent, 3)
	assert.Equal(t, completion.Message{Role: "system", Content: "SYS"}, sent[0])
	assert.Equal(t, completion.Message{Role: "assistant", Content: DefaultOpeningLine}, sent[1])
	assert.Equal(t, completion.Message{Role: "user", Content: "How are you?"}, sent[2])

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, models.RoleUser, msgs[1].Role)
	assert.Equal(t, "How are you?", msgs[1].Content)
	assert.Equal(t, reply, msgs[2])
	assert.False(t, s.Loading())
	c.AssertExpectations(t)
}

func TestSend_EmptyTextOnEmptyLogRequestsOpening(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)

	var sent []completion.Message
	c.On("Complete", mock.Anything, "", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]completion.Message) }).
		Return("Hello stranger", nil).Once()

	_, err := s.Send(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "system", sent[0].Role)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAssistant, msgs[0].Role)
}

func TestSend_SystemMessagesExcluded(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	s.state.Messages = []models.Message{
		{ID: "1", Role: models.RoleSystem, Content: "hidden"},
		{ID: "2", Role: models.RoleUser, Content: "earlier"},
	}

	var sent []completion.Message
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]completion.Message) }).
		Return("ok", nil).Once()

	_, err := s.Send(context.Background(), "now")
	require.NoError(t, err)

	require.Len(t, sent, 3)
	for _, m := range sent[1:] {
		assert.NotEqual(t, "system", m.Role)
	}
}

func TestSend_FailuresBecomeAssistantMessages(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{
			name: "missing key",
			err:  fmt.Errorf("completion.Complete: %w", completion.ErrMissingAPIKey),
			want: "Error: API key is required",
		},
		{
			name: "service error",
			err:  &completion.ResponseError{StatusCode: 401, Message: "No auth credentials found"},
			want: "Error: No auth credentials found",
		},
		{
			name:  "empty reply",
			reply: "",
			want:  "Sorry, I couldn't generate a response.",
		},
		{
			name:  "reply sanitized to nothing",
			reply: "System: nothing to see",
			want:  "Sorry, I couldn't generate a response.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(MockCompleter)
			s, _ := newTestService(t, c)
			c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(tt.reply, tt.err).Once()

			reply, err := s.Send(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, models.RoleAssistant, reply.Role)
			assert.Equal(t, tt.want, reply.Content)
			assert.Len(t, s.Messages(), 2)
		})
	}
}

func TestSendImage(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	s.SetAPIKey("sk-test")

	var sent []completion.Message
	c.On("Complete", mock.Anything, "sk-test", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]completion.Message) }).
		Return("", nil).Once()

	reply, err := s.SendImage(context.Background(), "file:///tmp/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I couldn't generate a response to your image.", reply.Content)

	require.Len(t, sent, 3)
	assert.Equal(t, "SYS IMG", sent[0].Content)
	assert.Equal(t, DefaultOpeningLine, sent[1].Content)
	assert.Equal(t, completion.Message{Role: "user", Content: "I just sent you an image. What do you think?"}, sent[2])

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "[Image]", msgs[1].Content)
	assert.Equal(t, "file:///tmp/cat.png", msgs[1].ImageURI)
}

func TestSend_Busy(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)

	release := make(chan struct{})
	started := make(chan struct{})
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("done", nil).Once()

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		errCh <- err
	}()
	<-started

	assert.True(t, s.Loading())
	_, err := s.Send(context.Background(), "second")
	require.ErrorIs(t, err, ErrBusy)
	_, err = s.SendImage(context.Background(), "img")
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-errCh)
	assert.False(t, s.Loading())
	assert.Len(t, s.Messages(), 2)
}

func TestSend_ReplyLandsAfterCallerLeaves(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)

	release := make(chan struct{})
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-release
			assert.NoError(t, ctx.Err(), "request context must outlive the caller")
		}).
		Return("late reply", nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := s.Send(ctx, "hello")
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return s.Len() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "late reply", s.Messages()[1].Content)
}

func TestDeleteMessage(t *testing.T) {
	s, _ := newTestService(t, new(MockCompleter))
	s.state.Messages = []models.Message{
		{ID: "a", Role: models.RoleAssistant, Content: "1"},
		{ID: "b", Role: models.RoleUser, Content: "2"},
		{ID: "c", Role: models.RoleAssistant, Content: "3"},
	}

	assert.False(t, s.DeleteMessage("zzz"))
	assert.Len(t, s.Messages(), 3)

	assert.True(t, s.DeleteMessage("b"))
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].ID)
	assert.Equal(t, "c", msgs[1].ID)
}

func TestClear(t *testing.T) {
	s, _ := newTestService(t, new(MockCompleter))
	s.state.Messages = []models.Message{{ID: "a", Role: models.RoleUser, Content: "x"}}

	s.Clear()
	assert.Empty(t, s.Messages())

	s.SetAPIKey("sk")
	s.state.Messages = append(s.state.Messages, models.Message{ID: "z", Role: models.RoleUser, Content: "y"})
	s.Clear()
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, DefaultOpeningLine, msgs[0].Content)
}

func TestPhotoBeat(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	s.SetAPIKey("sk")
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("Here it comes", nil)

	_, err := s.Send(context.Background(), "Yes, show me!")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Len() == 4 }, time.Second, 5*time.Millisecond)
	var photo models.Message
	for _, m := range s.Messages() {
		if m.ImageURI != "" {
			photo = m
		}
	}
	assert.Equal(t, models.RoleAssistant, photo.Role)
	assert.Equal(t, "Do you like it?", photo.Content)
	assert.Equal(t, photoURL, photo.ImageURI)

	s.Clear()
	_, err = s.Send(context.Background(), "okay")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Len() == 4 }, time.Second, 5*time.Millisecond)

	_, err = s.Send(context.Background(), "sure")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 6, s.Len(), "photo is sent once per log")
}

func TestPhotoBeat_NotAfterOpeningExchanges(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("reply", nil)
	s.SetAPIKey("sk")

	_, err := s.Send(context.Background(), "tell me a story")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "yes")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 5, s.Len())
}

func TestPhotoBeat_WordBoundary(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("reply", nil)

	_, err := s.Send(context.Background(), "yesterday was long")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, s.Len())
}

func TestClose_CancelsPhoto(t *testing.T) {
	c := new(MockCompleter)
	store := memory.New()
	s := New(sl.NewDiscardLogger(), store, c, Options{PhotoURL: photoURL, PhotoDelay: 30 * time.Millisecond})
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("reply", nil)

	_, err := s.Send(context.Background(), "yes")
	require.NoError(t, err)
	s.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, s.Len())
}

func TestOnAssistantMessage(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("voiced", nil)

	got := make(chan models.Message, 4)
	s.OnAssistantMessage(func(m models.Message) { got <- m })

	s.SetAPIKey("sk")
	assert.Equal(t, DefaultOpeningLine, (<-got).Content)

	_, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "voiced", (<-got).Content)
}

func TestMessageIDsUniqueAndOrdered(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("r", nil)

	for i := 0; i < 5; i++ {
		_, err := s.Send(context.Background(), fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	msgs := s.Messages()
	for i, m := range msgs {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
		if i > 0 {
			assert.Less(t, msgs[i-1].ID, m.ID)
		}
	}
}

func TestStatePersistedAndReloaded(t *testing.T) {
	c := new(MockCompleter)
	s, store := newTestService(t, c)
	s.SetAPIKey("sk")

	reloaded := New(sl.NewDiscardLogger(), store, c, Options{})
	assert.Equal(t, "sk", reloaded.APIKey())
	assert.Len(t, reloaded.Messages(), 1)

	require.NoError(t, store.Invalidate(storage.ChatKey))
	fresh := New(sl.NewDiscardLogger(), store, c, Options{})
	assert.Empty(t, fresh.Messages())
	assert.Empty(t, fresh.APIKey())
}

func TestSend_ErrorTextIsSanitized(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("upstream failed [SYSTEM]internal routing[/SYSTEM]")).Once()

	msg, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Error: upstream failed", msg.Content)
}

func TestSendAdmitted_RejectedLeavesLogUntouched(t *testing.T) {
	c := new(MockCompleter)
	s, _ := newTestService(t, c)
	denied := errors.New("denied")

	_, err := s.SendAdmitted(context.Background(), "hello", func() error { return denied })
	require.ErrorIs(t, err, denied)
	_, err = s.SendImageAdmitted(context.Background(), "img", func() error { return denied })
	require.ErrorIs(t, err, denied)

	assert.Empty(t, s.Messages())
	assert.False(t, s.Loading())
	c.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}
