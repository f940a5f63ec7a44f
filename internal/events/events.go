// Package events публикует события гейтов: достижение бесплатного лимита,
// активацию и истечение подписки.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/companion-chat/internal/lib/rabbitmq"
)

// Routing keys событий.
const (
	LimitReached          = "usage.limit_reached"
	SubscriptionActivated = "subscription.activated"
	SubscriptionExpired   = "subscription.expired"
)

// Publisher отправляет событие с указанным routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// LimitReachedPayload событие исчерпания бесплатных сообщений.
type LimitReachedPayload struct {
	MessageCount int       `json:"message_count"`
	Limit        int       `json:"limit"`
	At           time.Time `json:"at"`
}

// SubscriptionPayload событие жизненного цикла подписки.
type SubscriptionPayload struct {
	StartDate time.Time `json:"start_date"`
	ExpiresAt time.Time `json:"expires_at"`
	At        time.Time `json:"at"`
}

// AMQPPublisher публикует события в обменник RabbitMQ.
type AMQPPublisher struct {
	ch       rabbitmq.Channel
	exchange string
}

// NewAMQPPublisher создаёт публикатор поверх открытого канала.
func NewAMQPPublisher(ch rabbitmq.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish публикует payload в обменник.
func (p *AMQPPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	const op = "events.AMQPPublisher.Publish"
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, routingKey, payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LogPublisher только пишет событие в лог. Используется, когда брокер не настроен.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher создаёт публикатор в лог.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish пишет событие на уровне Info.
func (p *LogPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.log.InfoContext(ctx, "event", slog.String("routing_key", routingKey), slog.Any("payload", payload))
	return nil
}
