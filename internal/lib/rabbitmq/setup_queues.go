package rabbitmq

// QueueConfig привязка очереди к routing key обменника.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetGateQueues очереди для событий гейтов приложения.
func GetGateQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "companion.usage", RoutingKey: "usage.limit_reached"},
		{QueueName: "companion.subscription.activated", RoutingKey: "subscription.activated"},
		{QueueName: "companion.subscription.expired", RoutingKey: "subscription.expired"},
	}
}
