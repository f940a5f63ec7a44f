package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_Success(t *testing.T) {
	var got synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/EXAVITQu4vr4xnSDxMaL", r.URL.Path)
		assert.Equal(t, "xi-key", r.Header.Get("xi-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0x49, 0x44, 0x33})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, ModelID: "eleven_monolingual_v1", Timeout: time.Second})
	audio, err := c.Synthesize(context.Background(), "xi-key", "EXAVITQu4vr4xnSDxMaL", "Hello there")
	require.NoError(t, err)

	assert.Equal(t, "audio/mpeg", audio.ContentType)
	assert.Equal(t, []byte{0x49, 0x44, 0x33}, audio.Data)
	assert.Equal(t, "Hello there", got.Text)
	assert.Equal(t, "eleven_monolingual_v1", got.ModelID)
	assert.InDelta(t, 0.5, got.VoiceSettings.Stability, 1e-9)
	assert.InDelta(t, 0.75, got.VoiceSettings.SimilarityBoost, 1e-9)
}

func TestSynthesize_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, ModelID: "m", Timeout: time.Second})

	_, err := c.Synthesize(context.Background(), "bad", "voice", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = c.Synthesize(context.Background(), "", "voice", "hi")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
