package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/companion-chat/internal/lib/jwt"
	"github.com/magabrotheeeer/companion-chat/internal/lib/password"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
	"github.com/magabrotheeeer/companion-chat/internal/storage/memory"
)

var appSecret = password.MustSecret("sai25")

func newTestService(store *memory.Store) *Service {
	return New(sl.NewDiscardLogger(), store, appSecret, jwt.NewJWTMaker("test-secret", time.Hour))
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{name: "correct password", candidate: "sai25", want: true},
		{name: "wrong password", candidate: "letmein", want: false},
		{name: "empty", candidate: "", want: false},
		{name: "different case", candidate: "Sai25", want: false},
		{name: "trailing space", candidate: "sai25 ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(memory.New())
			assert.Equal(t, tt.want, s.Authenticate(tt.candidate))
			assert.Equal(t, tt.want, s.IsAuthenticated())
		})
	}
}

func TestAuthenticate_FailureKeepsState(t *testing.T) {
	s := newTestService(memory.New())
	require.True(t, s.Authenticate("sai25"))

	assert.False(t, s.Authenticate("nope"))
	assert.True(t, s.IsAuthenticated())
}

func TestLoginAndValidate(t *testing.T) {
	s := newTestService(memory.New())

	_, err := s.Login("wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	token, err := s.Login("sai25")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sid, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID(), sid)

	again, err := s.Login("sai25")
	require.NoError(t, err)
	_, err = s.ValidateToken(again)
	require.NoError(t, err)
	_, err = s.ValidateToken(token)
	require.NoError(t, err, "tokens of the same session stay valid")
}

func TestLogout_RevokesTokens(t *testing.T) {
	s := newTestService(memory.New())
	token, err := s.Login("sai25")
	require.NoError(t, err)

	s.Logout()
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.SessionID())

	_, err = s.ValidateToken(token)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.Login("sai25")
	require.NoError(t, err)
	_, err = s.ValidateToken(token)
	require.ErrorIs(t, err, ErrUnauthorized, "old session token stays revoked after new login")
}

func TestValidateToken_Garbage(t *testing.T) {
	s := newTestService(memory.New())
	require.True(t, s.Authenticate("sai25"))

	_, err := s.ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestModalVisibility(t *testing.T) {
	s := newTestService(memory.New())
	s.SetModalVisible(true)
	assert.True(t, s.ModalVisible())

	require.True(t, s.Authenticate("sai25"))
	assert.False(t, s.ModalVisible(), "successful login hides the modal")
}

func TestStatePersisted(t *testing.T) {
	store := memory.New()
	s := newTestService(store)
	require.True(t, s.Authenticate("sai25"))

	reloaded := newTestService(store)
	assert.True(t, reloaded.IsAuthenticated())

	require.NoError(t, store.Invalidate(storage.AuthKey))
	fresh := newTestService(store)
	assert.False(t, fresh.IsAuthenticated())
}
