package service

import (
	"context"

	"notesheet/internal/pkg/logger"
	"notesheet/pkg/events"
)

// EventDelivery pushes events to connected clients. Implemented by the
// websocket hub.
type EventDelivery interface {
	Broadcast(ctx context.Context, envelope events.Envelope) error
}

// EventForwarder hands events to an external bus (NATS JetStream).
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

// NotificationService routes every store, editor and offline event to the
// live clients and, when configured, to the external bus.
type NotificationService struct {
	delivery  EventDelivery
	forwarder EventForwarder
	logger    logger.ILogger
}

func NewNotificationService(delivery EventDelivery, forwarder EventForwarder, log logger.ILogger) *NotificationService {
	return &NotificationService{
		delivery:  delivery,
		forwarder: forwarder,
		logger:    log,
	}
}

func (s *NotificationService) HandleEvent(ctx context.Context, envelope events.Envelope) error {
	s.logger.Debug("NotificationService", "Routing event", map[string]interface{}{"type": envelope.Type})

	var firstErr error
	if s.delivery != nil {
		if err := s.delivery.Broadcast(ctx, envelope); err != nil {
			firstErr = err
		}
	}
	if s.forwarder != nil {
		if err := s.forwarder.Publish(ctx, envelope); err != nil {
			s.logger.Warn("NotificationService", "Failed to forward event", map[string]interface{}{
				"type":  envelope.Type,
				"error": err.Error(),
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
