package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Aggregate names used in error details and events.
const (
	aggregateRole     = "role"
	aggregateEmployee = "employee"
	aggregateTicket   = "ticket"
)

// Paging defaults per aggregate.
var (
	RolePageSpec = query.PageSpec{
		DefaultSize: 10,
		DefaultSort: "id",
		Sortable:    repository.RoleFields,
		IDColumn:    repository.RoleIDColumn,
	}
	EmployeePageSpec = query.PageSpec{
		DefaultSize: 4,
		DefaultSort: "id",
		Sortable:    repository.EmployeeFields,
		IDColumn:    repository.EmployeeIDColumn,
	}
	TicketPageSpec = query.PageSpec{
		DefaultSize: 4,
		DefaultSort: "ticketNumber",
		Sortable:    repository.TicketFields,
		IDColumn:    repository.TicketIDColumn,
	}
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// Clock returns the current time.
type Clock func() time.Time

// SystemClock returns UTC time truncated to what every store can round-trip.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// eventPublisher fills event metadata and logs, never fails, on dispatch errors.
type eventPublisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

func (p eventPublisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("aggregate_id", event.AggregateID),
			zap.Error(err))
	}
}

func requireText(fields map[string]string) error {
	missing := map[string]any{}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing[name] = "must not be blank"
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("invalid input", missing)
	}
	return nil
}

// stringPreview shortens body to at most max runes, cutting on rune boundaries.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func orDefault(clock Clock) Clock {
	if clock == nil {
		return SystemClock
	}
	return clock
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
