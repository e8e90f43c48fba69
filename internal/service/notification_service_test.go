package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
)

func TestNotificationServiceLogsTicketEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventTicketCreated,
		Aggregate:   aggregateTicket,
		AggregateID: 7,
		Actor:       "jane",
		Payload:     events.TicketCreatedPayload{TicketNumber: "TCK-ABCDEF12"},
	}))

	entries := logs.FilterMessage("TicketCreated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["aggregate_id"])
}

func TestNotificationChannelsFollowEventRules(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "desk@example.com",
		WebhookURL: "http://hooks.local/helpdesk",
	}).RegisterHandlers()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventTicketUpdated,
		Payload: events.TicketUpdatedPayload{OldAssignee: 1, NewAssignee: 1},
	}))
	channels := func() []string {
		var out []string
		for _, e := range logs.TakeAll() {
			if e.Message == "notification queued" {
				out = append(out, e.ContextMap()["channel"].(string))
			}
		}
		return out
	}
	assert.Equal(t, []string{"webhook"}, channels())

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventTicketUpdated,
		Payload: events.TicketUpdatedPayload{OldAssignee: 1, NewAssignee: 2},
	}))
	assert.Equal(t, []string{"email", "webhook"}, channels())

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventEmployeeRoleAssigned}))
	assert.Empty(t, channels())
}
