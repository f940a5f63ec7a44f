// Package speech обращается к внешнему сервису синтеза речи (ElevenLabs).
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrMissingAPIKey ключ сервиса синтеза не задан.
var ErrMissingAPIKey = errors.New("voice API key is required")

// Options параметры сервиса синтеза.
type Options struct {
	BaseURL string
	ModelID string
	Timeout time.Duration
}

// VoiceSettings параметры голоса в запросе.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Audio синтезированный клип.
type Audio struct {
	ContentType string
	Data        []byte
}

// Client клиент сервиса синтеза речи.
type Client struct {
	opts       Options
	httpClient *http.Client
}

// New создаёт клиента.
func New(opts Options) *Client {
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// Synthesize озвучивает text голосом voiceID.
func (c *Client) Synthesize(ctx context.Context, apiKey, voiceID, text string) (*Audio, error) {
	const op = "speech.Synthesize"
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAPIKey)
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:    text,
		ModelID: c.opts.ModelID,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	endpoint, err := url.JoinPath(c.opts.BaseURL, "v1", "text-to-speech", voiceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &Audio{ContentType: contentType, Data: data}, nil
}
