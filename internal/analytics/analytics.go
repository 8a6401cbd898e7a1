package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/link-lifecycle/internal/messaging"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// TopicActivity is the stream lifecycle activities are published to.
const TopicActivity = "link.activity"

// Store persists activities received from the stream.
type Store interface {
	SaveActivity(ctx context.Context, activity *shortener.Activity) error
}

// NewPublisher returns a sink that publishes activities to TopicActivity.
func NewPublisher(publisher message.Publisher) messaging.Publish[shortener.Activity] {
	return messaging.NewPublishFunc[shortener.Activity](publisher, TopicActivity)
}

// NewConsumer creates a consumer that hands every activity to store.
func NewConsumer(subscriber message.Subscriber, store Store, logger *zap.Logger) *messaging.Consumer[shortener.Activity] {
	return messaging.NewConsumer[shortener.Activity](subscriber, TopicActivity, store.SaveActivity, logger)
}
