package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// Consumer источник доставок. *amqp.Channel реализует его.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// maxInFlight сколько сообщений одной очереди обрабатывается одновременно.
const maxInFlight = 10

// ConsumerMessage создает потребителя сообщений из очереди RabbitMQ.
// Успешно обработанное сообщение подтверждается, сообщение с ошибкой
// отклоняется без возврата в очередь.
func ConsumerMessage(ctx context.Context, ch Consumer, log *slog.Logger, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(d.Body); err != nil {
						log.Warn("failed to handle message", slog.String("error", err.Error()))
						if nackErr := d.Nack(false, false); nackErr != nil {
							log.Error("failed to nack message", slog.String("error", nackErr.Error()))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", slog.String("error", ackErr.Error()))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
