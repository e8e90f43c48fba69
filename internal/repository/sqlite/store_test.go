package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger := zap.NewNop()
	db, err := persistence.NewSQLite(config.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "store.db"),
		BusyTimeoutMS: 5000,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	require.NoError(t, persistence.RunMigrations(context.Background(), sqlDB, config.DriverSQLite, logger))
	return db.DB
}

func seedTickets(t *testing.T, repo *TicketRepository, n int) []domain.Ticket {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tickets := make([]domain.Ticket, 0, n)
	for i := 0; i < n; i++ {
		ticket := domain.Ticket{
			TicketNumber: fmt.Sprintf("TCK-%08d", n-i),
			Title:        fmt.Sprintf("ticket %d", i),
			Body:         "body",
			Status:       domain.TicketStatusFiled,
			AssigneeID:   1,
			CreatedDate:  now,
			CreatedBy:    "jane",
			UpdatedDate:  now,
			UpdatedBy:    "jane",
		}
		require.NoError(t, repo.Create(context.Background(), &ticket))
		tickets = append(tickets, ticket)
	}
	return tickets
}

func TestRoleConditionalWrites(t *testing.T) {
	repo := NewRoleRepository(openTestDB(t))
	ctx := context.Background()

	role := domain.Role{Name: "AGENT"}
	require.NoError(t, repo.Create(ctx, &role))
	assert.Equal(t, int64(0), role.Version)

	dup := domain.Role{Name: "AGENT"}
	assert.ErrorIs(t, repo.Create(ctx, &dup), repository.ErrDuplicate)

	role.Name = "SUPPORT"
	require.NoError(t, repo.Update(ctx, &role, 0))
	assert.Equal(t, int64(1), role.Version)

	role.Name = "LATE"
	assert.ErrorIs(t, repo.Update(ctx, &role, 0), repository.ErrStaleVersion)

	missing := domain.Role{ID: role.ID + 10, Name: "X"}
	assert.ErrorIs(t, repo.Update(ctx, &missing, 0), repository.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, role.ID, 0), repository.ErrStaleVersion)
	require.NoError(t, repo.Delete(ctx, role.ID, 1))
	_, err := repo.GetByID(ctx, role.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTicketListPagesCoverEveryMatch(t *testing.T) {
	repo := NewTicketRepository(openTestDB(t))
	ctx := context.Background()
	seedTickets(t, repo, 7)

	spec := query.PageSpec{DefaultSize: 3, DefaultSort: "ticketNumber", Sortable: repository.TicketFields, IDColumn: repository.TicketIDColumn}
	var asc, desc []string
	for _, dir := range []string{"asc", "desc"} {
		for p := 0; p < 3; p++ {
			page, err := spec.Resolve(query.PageRequest{Page: &p, SortDir: dir})
			require.NoError(t, err)
			rows, total, err := repo.List(ctx, nil, page)
			require.NoError(t, err)
			assert.Equal(t, int64(7), total)
			for _, ticket := range rows {
				if dir == "asc" {
					asc = append(asc, ticket.TicketNumber)
				} else {
					desc = append(desc, ticket.TicketNumber)
				}
			}
		}
	}
	require.Len(t, asc, 7)
	require.Len(t, desc, 7)
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
	assert.Equal(t, "TCK-00000001", asc[0])
}

func TestTicketListRejectsUnknownField(t *testing.T) {
	repo := NewTicketRepository(openTestDB(t))
	page := query.Pageable{Page: 0, Size: 4, SortBy: "id", SortColumn: "id", Direction: query.Asc}

	_, _, err := repo.List(context.Background(), []query.Criterion{{Field: "colour", Op: query.OpEqual, Value: "red"}}, page)
	assert.Error(t, err)
}

func TestAppendRemarkRejectsStaleVersion(t *testing.T) {
	repo := NewTicketRepository(openTestDB(t))
	ctx := context.Background()
	ticket := seedTickets(t, repo, 1)[0]
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	first := ticket
	first.Remarks = []domain.Remark{{Remark: "one", AddedBy: "jane", AddedAt: at}}
	require.NoError(t, repo.AppendRemark(ctx, &first, 0))

	// built from the same snapshot as first
	second := ticket
	second.Remarks = []domain.Remark{{Remark: "two", AddedBy: "john", AddedAt: at}}
	assert.ErrorIs(t, repo.AppendRemark(ctx, &second, 0), repository.ErrStaleVersion)

	stored, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, stored.Remarks, 1)
	assert.Equal(t, "one", stored.Remarks[0].Remark)
	assert.True(t, at.Equal(stored.Remarks[0].AddedAt))
	assert.Equal(t, int64(1), stored.Version)

	require.NoError(t, repo.Delete(ctx, ticket.ID, 1))
	_, err = repo.GetByNumber(ctx, ticket.TicketNumber)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCaseInsensitiveFiltersFoldUnicode(t *testing.T) {
	repo := NewRoleRepository(openTestDB(t))
	ctx := context.Background()
	for _, name := range []string{"ÉQUIPE", "STRAßE", "AGENT"} {
		role := domain.Role{Name: name}
		require.NoError(t, repo.Create(ctx, &role))
	}
	page, err := query.PageSpec{DefaultSize: 10, DefaultSort: "id", Sortable: repository.RoleFields, IDColumn: "id"}.
		Resolve(query.PageRequest{})
	require.NoError(t, err)

	roles, total, err := repo.List(ctx, []query.Criterion{{Field: "name", Op: query.OpContains, Value: "équi"}}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, roles, 1)
	assert.Equal(t, "ÉQUIPE", roles[0].Name)

	roles, total, err = repo.List(ctx, []query.Criterion{{Field: "name", Op: query.OpEqualFold, Value: "équipe"}}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, roles, 1)

	roles, _, err = repo.List(ctx, []query.Criterion{{Field: "name", Op: query.OpContains, Value: "straße"}}, page)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "STRAßE", roles[0].Name)
}
