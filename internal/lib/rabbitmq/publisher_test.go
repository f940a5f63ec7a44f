package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishMessage(t *testing.T) {
	type testMsg struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	t.Run("success publish", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("Publish", "notifications", "usage.limit_reached", false, false, mock.MatchedBy(func(p amqp.Publishing) bool {
			var got testMsg
			if err := json.Unmarshal(p.Body, &got); err != nil {
				return false
			}
			return got.ID == 1 && p.ContentType == "application/json" && p.DeliveryMode == amqp.Persistent
		})).Return(nil).Once()

		err := PublishMessage(ch, "notifications", "usage.limit_reached", testMsg{ID: 1, Name: "Hello"})
		require.NoError(t, err)
		ch.AssertExpectations(t)
	})

	t.Run("publish error", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("Publish", "x", "k", false, false, mock.Anything).Return(errors.New("channel closed")).Once()

		err := PublishMessage(ch, "x", "k", testMsg{ID: 2})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "channel closed")
	})

	t.Run("marshal error", func(t *testing.T) {
		ch := new(MockChannel)
		badMsg := struct {
			Ch chan int `json:"ch"`
		}{
			Ch: make(chan int),
		}

		err := PublishMessage(ch, "", "q", badMsg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
		ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetGateQueues(t *testing.T) {
	queues := GetGateQueues()
	keys := make([]string, 0, len(queues))
	for _, q := range queues {
		keys = append(keys, q.RoutingKey)
	}
	assert.ElementsMatch(t, []string{"usage.limit_reached", "subscription.activated", "subscription.expired"}, keys)
}
