package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher appends events to a capped Redis stream for external consumers.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher builds a publisher. maxLen <= 0 leaves the stream uncapped.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Handle is an EventHandler writing the event as one stream entry.
func (p *StreamPublisher) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.Type, err)
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":           event.ID,
			"type":         string(event.Type),
			"aggregate":    event.Aggregate,
			"aggregate_id": strconv.FormatInt(event.AggregateID, 10),
			"actor":        event.Actor,
			"timestamp":    event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
			"payload":      string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// Register subscribes the publisher to the given event types.
func (p *StreamPublisher) Register(d Dispatcher, types ...EventType) {
	for _, t := range types {
		d.Subscribe(t, p.Handle)
	}
}
