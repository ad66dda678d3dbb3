package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// Bus is the in-process event pipeline. A single server instance owns all
// state, so events ride the gochannel Pub/Sub rather than an external broker.
type Bus struct {
	eventBus  *cqrs.EventBus
	processor *cqrs.EventProcessor
	router    *message.Router
	pubSub    *gochannel.GoChannel
	logger    *logger.Logger
}

// NewBus creates the event bus, processor and router
func NewBus(log *logger.Logger) (*Bus, error) {
	wmLogger := watermill.NewStdLogger(false, false)

	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 5 * time.Second,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	eventBus, err := cqrs.NewEventBusWithConfig(
		pubSub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				return fmt.Sprintf("hunt-events.%s", params.EventName), nil
			},
			Marshaler: cqrs.JSONMarshaler{},
			Logger:    wmLogger,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	processor, err := cqrs.NewEventProcessorWithConfig(
		router,
		cqrs.EventProcessorConfig{
			GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
				return fmt.Sprintf("hunt-events.%s", params.EventName), nil
			},
			SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return pubSub, nil
			},
			Marshaler: cqrs.JSONMarshaler{},
			Logger:    wmLogger,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event processor: %w", err)
	}

	return &Bus{
		eventBus:  eventBus,
		processor: processor,
		router:    router,
		pubSub:    pubSub,
		logger:    log.WithComponent("event-bus"),
	}, nil
}

// Publish publishes an event. Failures are the caller's to log; nothing in
// the pipeline escalates them.
func (b *Bus) Publish(ctx context.Context, event interface{}) error {
	return b.eventBus.Publish(ctx, event)
}

// AddHandlers registers event handlers on the processor. Must be called
// before Run.
func (b *Bus) AddHandlers(handlers ...cqrs.EventHandler) error {
	return b.processor.AddHandlers(handlers...)
}

// Run starts the router and blocks until ctx is cancelled
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running returns a channel closed once the router is up, so callers can
// avoid publishing before the handlers subscribe
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Close shuts down the router and pub/sub
func (b *Bus) Close() error {
	b.logger.Info("Closing event bus")
	if err := b.router.Close(); err != nil {
		return err
	}
	return b.pubSub.Close()
}
