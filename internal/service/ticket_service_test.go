package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestHelpdeskScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := f.role(t, "ADMIN")
	jane, err := f.employees.Create(ctx, EmployeeCreateInput{
		Name:             "Jane",
		Age:              30,
		Address:          "HQ",
		Phone:            "+15550000",
		EmploymentStatus: "Active",
		RoleID:           role.ID,
		Username:         "jane",
		Password:         "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", jane.Role.Name)

	ticket, err := f.tickets.Create(ctx, actorFor(jane), TicketCreateInput{
		Title:      "VPN down",
		Name:       "Jane",
		Body:       "cannot reach the office network",
		AssigneeID: jane.ID,
		Filed:      boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.TicketNumber, "TCK-"))
	assert.Len(t, ticket.TicketNumber, len("TCK-")+8)
	assert.Equal(t, domain.TicketStatusFiled, ticket.Status)
	assert.Equal(t, "jane", ticket.CreatedBy)
	require.NotNil(t, ticket.CreatedByID)
	assert.Equal(t, jane.ID, *ticket.CreatedByID)
	assert.Empty(t, ticket.Remarks)

	remark, err := f.tickets.AddRemark(ctx, ticket.ID, RemarkInput{Remark: "checking", AddedBy: "jane"})
	require.NoError(t, err)
	assert.Equal(t, "checking", remark.Remark)

	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Remarks, 1)
	assert.Equal(t, int64(1), stored.Version)

	byNumber, err := f.tickets.GetByNumber(ctx, ticket.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, byNumber.ID)
}

func TestTicketInitialStatusFollowsFiledFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	jane := f.employee(t, "jane", role.ID)

	cases := []struct {
		name  string
		filed *bool
		want  domain.TicketStatus
	}{
		{"absent", nil, domain.TicketStatusFiled},
		{"true", boolPtr(true), domain.TicketStatusFiled},
		{"false", boolPtr(false), domain.TicketStatusDraft},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticket, err := f.tickets.Create(ctx, actorFor(jane), TicketCreateInput{
				Title: "t", Name: "Jane", Body: "b", AssigneeID: jane.ID, Filed: tc.filed,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, ticket.Status)
			assert.Equal(t, int64(0), ticket.Version)
			assert.Equal(t, ticket.CreatedDate, ticket.UpdatedDate)
		})
	}
}

func TestTicketCreateRequiresKnownAssignee(t *testing.T) {
	f := newFixture(t)

	_, err := f.tickets.Create(context.Background(), domain.SystemActor, TicketCreateInput{
		Title: "t", Body: "b", AssigneeID: 99,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestTicketUpdatePatchesAndBumpsUpdatedDate(t *testing.T) {
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t)
	f.tickets.now = func() time.Time { return clock }
	ctx := context.Background()
	role := f.role(t, "AGENT")
	jane := f.employee(t, "jane", role.ID)
	john := f.employee(t, "john", role.ID)
	ticket := f.ticket(t, actorFor(jane), jane.ID, "VPN down")

	clock = clock.Add(time.Hour)
	updated, err := f.tickets.Update(ctx, actorFor(john), ticket.ID, TicketUpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, ticket.Title, updated.Title)
	assert.Equal(t, clock, updated.UpdatedDate)
	assert.True(t, ticket.CreatedDate.Equal(updated.CreatedDate))
	assert.Equal(t, "john", updated.UpdatedBy)
	assert.Equal(t, int64(1), updated.Version)

	updated, err = f.tickets.Update(ctx, actorFor(john), ticket.ID, TicketUpdateInput{
		Status:     strPtr("IN-PROGRESS"),
		AssigneeID: int64Ptr(john.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, john.ID, updated.AssigneeID)
	assert.Equal(t, ticket.TicketNumber, updated.TicketNumber)

	// any enumerated status is accepted
	updated, err = f.tickets.Update(ctx, actorFor(john), ticket.ID, TicketUpdateInput{Status: strPtr("draft")})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusDraft, updated.Status)

	_, err = f.tickets.Update(ctx, actorFor(john), ticket.ID, TicketUpdateInput{Status: strPtr("reopened")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = f.tickets.Update(ctx, actorFor(john), ticket.ID, TicketUpdateInput{AssigneeID: int64Ptr(999)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Version)
}

func TestTicketRemarksKeepInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	jane := f.employee(t, "jane", role.ID)
	ticket := f.ticket(t, actorFor(jane), jane.ID, "printer")

	texts := []string{"first", "second", "second", "third"}
	for _, text := range texts {
		_, err := f.tickets.AddRemark(ctx, ticket.ID, RemarkInput{Remark: text, AddedBy: "jane"})
		require.NoError(t, err)
	}

	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, stored.Remarks, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, stored.Remarks[i].Remark)
	}
	assert.Equal(t, int64(len(texts)), stored.Version)
	assert.False(t, stored.UpdatedDate.Before(stored.CreatedDate))

	_, err = f.tickets.AddRemark(ctx, 999, RemarkInput{Remark: "x", AddedBy: "jane"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.tickets.AddRemark(ctx, ticket.ID, RemarkInput{Remark: " ", AddedBy: "jane"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestTicketStaleUpdateLeavesNoPartialWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	jane := f.employee(t, "jane", role.ID)
	ticket := f.ticket(t, actorFor(jane), jane.ID, "original")

	_, err := f.tickets.Update(ctx, actorFor(jane), ticket.ID, TicketUpdateInput{Title: strPtr("first"), Version: int64Ptr(0)})
	require.NoError(t, err)

	_, err = f.tickets.Update(ctx, actorFor(jane), ticket.ID, TicketUpdateInput{
		Title:   strPtr("second"),
		Status:  strPtr("closed"),
		Version: int64Ptr(0),
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Title)
	assert.Equal(t, domain.TicketStatusFiled, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
}

// rendezvousTickets holds the first two loads until both readers have the same version.
type rendezvousTickets struct {
	repository.TicketRepository
	loads   atomic.Int32
	arrived sync.WaitGroup
}

func (r *rendezvousTickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := r.TicketRepository.GetByID(ctx, id)
	if r.loads.Add(1) <= 2 {
		r.arrived.Done()
		r.arrived.Wait()
	}
	return ticket, err
}

func TestConcurrentTicketWritesExactlyOneWins(t *testing.T) {
	for _, name := range []string{"update", "remark"} {
		t.Run(name, func(t *testing.T) {
			rendezvous := &rendezvousTickets{}
			f := newFixture(t)
			ctx := context.Background()
			role := f.role(t, "AGENT")
			jane := f.employee(t, "jane", role.ID)
			ticket := f.ticket(t, actorFor(jane), jane.ID, "race")

			rendezvous.TicketRepository = f.ticketRepo
			rendezvous.arrived.Add(2)
			f.tickets.tickets = rendezvous

			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if name == "update" {
						_, errs[i] = f.tickets.Update(ctx, actorFor(jane), ticket.ID, TicketUpdateInput{Title: strPtr("writer")})
					} else {
						_, errs[i] = f.tickets.AddRemark(ctx, ticket.ID, RemarkInput{Remark: "writer", AddedBy: "jane"})
					}
				}(i)
			}
			wg.Wait()

			var wins, conflicts int
			for _, err := range errs {
				switch {
				case err == nil:
					wins++
				case apperrors.HasCode(err, apperrors.CodeConflict):
					conflicts++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, wins)
			assert.Equal(t, 1, conflicts)

			stored, err := f.tickets.GetByID(ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stored.Version)
			if name == "remark" {
				assert.Len(t, stored.Remarks, 1)
			}
		})
	}
}

func TestTicketListFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	jane := f.employee(t, "jane", role.ID)
	john := f.employee(t, "john", role.ID)

	for i := 0; i < 5; i++ {
		f.ticket(t, actorFor(jane), jane.ID, "jane ticket")
	}
	for i := 0; i < 4; i++ {
		f.ticket(t, actorFor(john), jane.ID, "john ticket")
	}
	_, err := f.tickets.Create(ctx, actorFor(john), TicketCreateInput{
		Title: "draft", Body: "b", AssigneeID: john.ID, Filed: boolPtr(false),
	})
	require.NoError(t, err)

	page, err := f.tickets.List(ctx, TicketFilter{}, query.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Size)
	assert.Equal(t, int64(10), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.Last)

	filedForJane, err := f.tickets.List(ctx, TicketFilter{Status: "FILED", AssigneeID: int64Ptr(jane.ID)}, query.PageRequest{Size: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, int64(9), filedForJane.TotalElements)

	byJohn, err := f.tickets.List(ctx, TicketFilter{CreatedByID: int64Ptr(john.ID)}, query.PageRequest{Size: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), byJohn.TotalElements)

	drafts, err := f.tickets.List(ctx, TicketFilter{Status: "draft"}, query.PageRequest{})
	require.NoError(t, err)
	require.Len(t, drafts.Content, 1)
	assert.Equal(t, "draft", drafts.Content[0].Title)

	seen := map[int64]bool{}
	var total int
	for p := 0; ; p++ {
		window, err := f.tickets.List(ctx, TicketFilter{}, query.PageRequest{Page: intPtr(p), Size: intPtr(3), SortBy: "id", SortDir: "DESC"})
		require.NoError(t, err)
		for i, ticket := range window.Content {
			assert.False(t, seen[ticket.ID])
			seen[ticket.ID] = true
			if i > 0 {
				assert.Greater(t, window.Content[i-1].ID, ticket.ID)
			}
		}
		total += len(window.Content)
		if window.Last {
			break
		}
	}
	assert.Equal(t, 10, total)

	_, err = f.tickets.List(ctx, TicketFilter{}, query.PageRequest{Page: intPtr(-1)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParameter))
}

func TestTicketDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "ADMIN")
	jane := f.employee(t, "jane", role.ID)
	ticket := f.ticket(t, actorFor(jane), jane.ID, "obsolete")
	_, err := f.tickets.AddRemark(ctx, ticket.ID, RemarkInput{Remark: "r", AddedBy: "jane"})
	require.NoError(t, err)

	var deleted []events.Event
	f.dispatcher.Subscribe(events.EventTicketDeleted, func(_ context.Context, e events.Event) error {
		deleted = append(deleted, e)
		return nil
	})

	require.NoError(t, f.tickets.Delete(ctx, actorFor(jane), ticket.ID, nil))
	require.Len(t, deleted, 1)

	_, err = f.tickets.GetByID(ctx, ticket.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	err = f.tickets.Delete(ctx, actorFor(jane), ticket.ID, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestEventFailuresDoNotFailTheWrite(t *testing.T) {
	f := newFixture(t)
	role := f.role(t, "AGENT")
	jane := f.employee(t, "jane", role.ID)
	f.dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		return assert.AnError
	})

	ticket := f.ticket(t, actorFor(jane), jane.ID, "still stored")
	_, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
}

func TestTicketNumberGenerator(t *testing.T) {
	next := NewTicketNumberGenerator("HD-")
	a, b := next(), next()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^HD-[0-9A-F]{8}$`, a)
}
