package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/link-lifecycle/internal/analytics"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	topic    string
	messages []*message.Message
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return nil
}

type mockSubscriber struct {
	msgChan chan *message.Message
	once    sync.Once
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	if topic != analytics.TopicActivity {
		return nil, errors.New("unknown topic")
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.once.Do(func() { close(m.msgChan) })

	return nil
}

type mockStore struct {
	mu         sync.Mutex
	activities []*shortener.Activity
	err        error
}

func (m *mockStore) SaveActivity(_ context.Context, activity *shortener.Activity) error {
	if m.err != nil {
		return m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.activities = append(m.activities, activity)

	return nil
}

func TestNewPublisher(t *testing.T) {
	mock := &mockPublisher{}
	publish := analytics.NewPublisher(mock)

	err := publish(&shortener.Activity{
		Timestamp: time.Now(),
		Kind:      shortener.KindLinkCreated,
		Level:     shortener.LevelInfo,
		Data:      map[string]any{"shortCode": "abc123"},
	})

	require.NoError(t, err)
	assert.Equal(t, analytics.TopicActivity, mock.topic)
	require.Len(t, mock.messages, 1)
	assert.Contains(t, string(mock.messages[0].Payload), `"kind":"link.created"`)
}

func TestConsumer(t *testing.T) {
	t.Run("saves received activities", func(t *testing.T) {
		sub := &mockSubscriber{msgChan: make(chan *message.Message, 1)}
		store := &mockStore{}
		consumer := analytics.NewConsumer(sub, store, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		payload, err := json.Marshal(shortener.Activity{Kind: shortener.KindLinkResolved, Level: shortener.LevelInfo})
		require.NoError(t, err)

		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		select {
		case <-msg.Acked():
		case <-msg.Nacked():
			t.Fatal("message was nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		require.NoError(t, consumer.Shutdown())

		store.mu.Lock()
		defer store.mu.Unlock()

		require.Len(t, store.activities, 1)
		assert.Equal(t, shortener.KindLinkResolved, store.activities[0].Kind)
	})

	t.Run("nacks when the store fails", func(t *testing.T) {
		sub := &mockSubscriber{msgChan: make(chan *message.Message, 1)}
		consumer := analytics.NewConsumer(sub, &mockStore{err: errors.New("store error")}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte(`{"kind":"link.created"}`))
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		require.NoError(t, consumer.Shutdown())
	})
}
