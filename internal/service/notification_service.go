package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
)

// notifyRule decides which channels fire for one event type.
type notifyRule struct {
	name    string
	email   func(events.Event) bool
	webhook bool
}

func always(events.Event) bool { return true }
func never(events.Event) bool  { return false }

// assigneeChanged mails only when a ticket moved to another employee.
func assigneeChanged(event events.Event) bool {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	return ok && payload.OldAssignee != payload.NewAssignee
}

var notifyRules = map[events.EventType]notifyRule{
	events.EventTicketCreated:        {name: "TicketCreated", email: always, webhook: true},
	events.EventTicketUpdated:        {name: "TicketUpdated", email: assigneeChanged, webhook: true},
	events.EventTicketRemarkAdded:    {name: "TicketRemarkAdded", email: always},
	events.EventTicketDeleted:        {name: "TicketDeleted", email: never, webhook: true},
	events.EventEmployeeRoleAssigned: {name: "EmployeeRoleAssigned", email: never},
}

// NotificationService fans helpdesk events out to the email and webhook
// channels. Both channels are log-only stubs; an empty target disables one.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     orNop(logger),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every event type with a rule.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for eventType := range notifyRules {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	rule, ok := notifyRules[event.Type]
	if !ok {
		return nil
	}
	n.logger.Info(rule.name,
		zap.String("aggregate", event.Aggregate),
		zap.Int64("aggregate_id", event.AggregateID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))

	if rule.email(event) {
		n.deliver(ctx, "email", n.cfg.EmailFrom, event)
	}
	if rule.webhook {
		n.deliver(ctx, "webhook", n.cfg.WebhookURL, event)
	}
	return nil
}

func (n *NotificationService) deliver(_ context.Context, channel, target string, event events.Event) {
	if strings.TrimSpace(target) == "" {
		return
	}
	n.logger.Debug("notification queued",
		zap.String("channel", channel),
		zap.String("target", target),
		zap.String("event_type", string(event.Type)),
		zap.Int64("aggregate_id", event.AggregateID))
}
