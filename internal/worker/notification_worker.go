package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a stream
// publisher is supplied, mirrors every domain event onto the Redis stream.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, stream *events.StreamPublisher, logger *zap.Logger) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if stream != nil && dispatcher != nil {
		stream.Register(dispatcher, events.AllEventTypes...)
		if logger != nil {
			logger.Info("event stream publisher registered", zap.Int("event_types", len(events.AllEventTypes)))
		}
	}
}
