// Package metrics регистрирует счётчики Prometheus приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesSent число отправленных пользователем сообщений по типу (text, image).
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "companion",
		Name:      "messages_sent_total",
		Help:      "Messages sent by the user.",
	}, []string{"kind"})

	// CompletionFailures число запросов к модели, завершившихся ошибкой.
	CompletionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "companion",
		Name:      "completion_failures_total",
		Help:      "Completion requests that ended with an error.",
	})

	// UpgradePrompts число показов предложения оформить подписку.
	UpgradePrompts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "companion",
		Name:      "upgrade_prompts_total",
		Help:      "Times the upgrade prompt was raised.",
	})

	// SubscriptionEvents события подписки (activated, expired).
	SubscriptionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "companion",
		Name:      "subscription_events_total",
		Help:      "Subscription lifecycle events.",
	}, []string{"event"})

	// SlotEvents события мини-игры (spin, win, deposit).
	SlotEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "companion",
		Name:      "slot_events_total",
		Help:      "Slot machine events.",
	}, []string{"event"})
)
