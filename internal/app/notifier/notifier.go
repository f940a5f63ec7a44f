// Package notifier запускает потребителя событий гейтов из RabbitMQ.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/companion-chat/internal/config"
	"github.com/magabrotheeeer/companion-chat/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	notifierservice "github.com/magabrotheeeer/companion-chat/internal/services/notifier"
)

type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	notifier *notifierservice.Service
	logger   *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"
	if cfg.AMQPURL == "" {
		return nil, fmt.Errorf("%s: amqp_url is not set", op)
	}

	conn, err := rabbitmq.Connect(cfg.AMQPURL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.ExchangeName, rabbitmq.GetGateQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:     conn,
		ch:       ch,
		notifier: notifierservice.New(logger),
		logger:   logger,
	}, nil
}

// Run потребляет все очереди гейтов до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	for _, q := range rabbitmq.GetGateQueues() {
		handler, err := a.notifier.Handler(q.RoutingKey)
		if err != nil {
			return err
		}
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, a.logger, q.QueueName, handler); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	return errors.Join(a.ch.Close(), a.conn.Close())
}
