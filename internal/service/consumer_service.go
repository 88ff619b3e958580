package service

import (
	"context"
	"encoding/json"

	"notesheet/internal/pkg/logger"
	"notesheet/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber    message.Subscriber
	topicName     string
	notifications *NotificationService
	logger        logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	notifications *NotificationService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:    subscriber,
		topicName:     topicName,
		notifications: notifications,
		logger:        log,
	}
}

// Consume subscribes to the event topic and processes messages until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// Delivery is best effort; clients resync from the state endpoint.
	if err := cs.notifications.HandleEvent(ctx, envelope); err != nil {
		cs.logger.Warn("ConsumerService", "Event delivery incomplete", map[string]interface{}{
			"type":  envelope.Type,
			"error": err.Error(),
		})
	}
	msg.Ack()
}
