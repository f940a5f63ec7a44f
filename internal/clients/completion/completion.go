// Package completion обращается к внешнему сервису генерации ответов
// по протоколу chat completions (OpenRouter и совместимые).
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey ключ не задан, запрос не отправляется.
var ErrMissingAPIKey = errors.New("API key is required")

const fallbackFailure = "Failed to get response"

// ResponseError ответ сервиса с кодом не 2xx.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// Options параметры запроса к модели.
type Options struct {
	BaseURL          string
	Model            string
	MaxTokens        int
	Temperature      float32
	TopP             float32
	PresencePenalty  float32
	FrequencyPenalty float32
	Referer          string
	Title            string
	Timeout          time.Duration
}

// Message реплика запроса.
type Message struct {
	Role    string
	Content string
}

// Client клиент сервиса генерации. Ключ передаётся в каждом вызове,
// так как его вводит пользователь.
type Client struct {
	opts       Options
	httpClient *http.Client
}

// New создаёт клиента.
func New(opts Options) *Client {
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &headerTransport{
				base:    http.DefaultTransport,
				referer: opts.Referer,
				title:   opts.Title,
			},
		},
	}
}

// Complete отправляет переписку и возвращает текст первого варианта ответа.
// Пустая строка без ошибки означает, что сервис не вернул содержимого.
func (c *Client) Complete(ctx context.Context, apiKey string, messages []Message) (string, error) {
	const op = "completion.Complete"
	if apiKey == "" {
		return "", fmt.Errorf("%s: %w", op, ErrMissingAPIKey)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = c.opts.BaseURL
	cfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model:            c.opts.Model,
		Messages:         make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:        c.opts.MaxTokens,
		Temperature:      c.opts.Temperature,
		TopP:             c.opts.TopP,
		PresencePenalty:  c.opts.PresencePenalty,
		FrequencyPenalty: c.opts.FrequencyPenalty,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, translate(err))
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func translate(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallbackFailure
		}
		return &ResponseError{StatusCode: apiErr.HTTPStatusCode, Message: msg}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ResponseError{StatusCode: reqErr.HTTPStatusCode, Message: fallbackFailure}
	}
	return err
}

// Describe возвращает текст ошибки в том виде, в каком его видит пользователь.
func Describe(err error) string {
	if errors.Is(err, ErrMissingAPIKey) {
		return ErrMissingAPIKey.Error()
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Message
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// headerTransport добавляет заголовки, которыми OpenRouter идентифицирует приложение.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(req)
}
