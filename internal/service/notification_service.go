package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/events"
)

// NotificationService logs domain events as they happen. Actual delivery
// channels are out of scope; this keeps an operational trace of activity.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleEvent("RequestCreated"))
	n.dispatcher.Subscribe(events.EventRequestStatusChanged, n.handleEvent("RequestStatusChanged"))
	n.dispatcher.Subscribe(events.EventRequestPriorityChanged, n.handleEvent("RequestPriorityChanged"))
	n.dispatcher.Subscribe(events.EventFeedbackSubmitted, n.handleEvent("FeedbackSubmitted"))
}

func (n *NotificationService) handleEvent(name string) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		n.logger.Info(name,
			zap.String("request_id", event.RequestID),
			zap.String("actor_id", event.Actor.UserID),
			zap.Any("payload", event.Payload))
		return nil
	}
}
