package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/companion-chat/internal/clients/completion"
	"github.com/magabrotheeeer/companion-chat/internal/clients/speech"
	"github.com/magabrotheeeer/companion-chat/internal/config"
	"github.com/magabrotheeeer/companion-chat/internal/events"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/storage/memory"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, _ string, messages []completion.Message) (string, error) {
	return "you said: " + messages[len(messages)-1].Content, nil
}

type silentSynth struct{}

func (silentSynth) Synthesize(context.Context, string, string, string) (*speech.Audio, error) {
	return &speech.Audio{ContentType: "audio/mpeg", Data: []byte("mp3")}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPServer: config.HTTPServer{RateLimit: 1000, RateBurst: 1000},
		JWTToken:   config.JWTToken{JWTSecretKey: "test", TokenTTL: time.Hour},
		Completion: config.Completion{RequestTimeout: time.Second, PhotoDelay: time.Hour},
		Voice:      config.Voice{DefaultVoiceID: "voice1", RequestTimeout: time.Second},
		Gates: config.Gates{
			AppPassword:          "sai25",
			SubscriptionPassword: "sub-secret",
			FreeMessageLimit:     2,
			SubscriptionDays:     30,
			PaymentDelay:         time.Millisecond,
		},
		Slot: config.Slot{
			StartCredits: 100, StartBet: 10, MinBet: 5, MaxBet: 50, BetStep: 5,
			DepositAmount: 100, SpinDelay: time.Hour, AutoSpinDelay: time.Hour,
		},
	}
}

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	url   string
	token string
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.url+path, &buf)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent && resp.Header.Get("Content-Type") != "audio/mpeg" {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func newTestServer(t *testing.T) *client {
	t.Helper()
	log := sl.NewDiscardLogger()
	cfg := testConfig()

	svc, err := NewServices(log, cfg, memory.New(), events.NewLogPublisher(log), echoCompleter{}, silentSynth{})
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	r := chi.NewRouter()
	RegisterRoutes(r, log, svc, cfg.HTTPServer)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &client{t: t, url: srv.URL}
}

func TestRoutes_SessionFlow(t *testing.T) {
	c := newTestServer(t)

	code, env := c.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"screen":"access_gate"`)

	code, _ = c.do(http.MethodGet, "/api/v1/chat/messages", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = c.do(http.MethodPost, "/api/v1/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "incorrect password", env.Error)

	code, env = c.do(http.MethodPost, "/api/v1/login", map[string]string{"password": "sai25"})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	c.token = login.Token

	_, env = c.do(http.MethodGet, "/api/v1/session", nil)
	assert.Contains(t, string(env.Data), `"screen":"credential_prompt"`)

	code, env = c.do(http.MethodPut, "/api/v1/chat/api-key", map[string]string{"apiKey": "sk-test"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "waiting for someone to talk to")

	code, env = c.do(http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "you said: hello")

	code, _ = c.do(http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "again"})
	require.Equal(t, http.StatusOK, code)

	code, env = c.do(http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "third"})
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, "free message limit reached", env.Error)

	code, env = c.do(http.MethodPost, "/api/v1/subscription/checkout", map[string]string{
		"cardNumber": "4242424242424242",
		"expiry":     "12/29",
		"cvc":        "123",
		"name":       "Jane",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"subscriptionValid":true`)

	_, env = c.do(http.MethodGet, "/api/v1/session", nil)
	assert.Contains(t, string(env.Data), `"screen":"password_prompt"`)

	code, _ = c.do(http.MethodPost, "/api/v1/subscription/verify", map[string]string{"password": "sai25"})
	assert.Equal(t, http.StatusUnauthorized, code, "subscription password is configured separately")
	code, _ = c.do(http.MethodPost, "/api/v1/subscription/verify", map[string]string{"password": "sub-secret"})
	require.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "unlimited now"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodPost, "/api/v1/logout", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodGet, "/api/v1/chat/messages", nil)
	assert.Equal(t, http.StatusUnauthorized, code, "token revoked by logout")
}

func TestRoutes_Game(t *testing.T) {
	c := newTestServer(t)
	_, env := c.do(http.MethodPost, "/api/v1/login", map[string]string{"password": "sai25"})
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	c.token = login.Token

	code, env := c.do(http.MethodPost, "/api/v1/game/bet", map[string]int{"direction": 1})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"bet":15`)

	code, env = c.do(http.MethodPost, "/api/v1/game/spin", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"credits":85`)
	assert.Contains(t, string(env.Data), `"spinning":true`)

	code, _ = c.do(http.MethodPost, "/api/v1/game/spin", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestRoutes_Ambient(t *testing.T) {
	c := newTestServer(t)

	code, _ := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)

	resp, err := http.Get(c.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
