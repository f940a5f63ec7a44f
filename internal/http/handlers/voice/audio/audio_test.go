package audio

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/companion-chat/internal/clients/speech"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
)

type fakeVoice struct {
	clip *speech.Audio
}

func (f *fakeVoice) TakeAudio() (*speech.Audio, bool) {
	clip := f.clip
	f.clip = nil
	return clip, clip != nil
}

func TestAudioHandler_ServeHTTP(t *testing.T) {
	voice := &fakeVoice{clip: &speech.Audio{ContentType: "audio/mpeg", Data: []byte("ID3mp3")}}
	handler := New(sl.NewDiscardLogger(), voice)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/voice/audio", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ID3mp3", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/voice/audio", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code, "clip is handed out once")
}
