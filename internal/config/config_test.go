package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSQLiteDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/helpdesk-test.db")
	t.Setenv("TICKET_NUMBER_PREFIX", "EXIST-")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/helpdesk-test.db", cfg.SQLite.Path)
	assert.Equal(t, 5000, cfg.SQLite.BusyTimeoutMS)
	assert.Equal(t, "EXIST-", cfg.Ticket.NumberPrefix)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, cfg.App.Name, cfg.Logger.Service)
	assert.Equal(t, 5, cfg.Postgres.ConnectAttempts)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReportsMalformedValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("AUTH_BCRYPT_COST", "high")
	t.Setenv("SQLITE_RUN_MIGRATIONS", "yes please")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_BCRYPT_COST")
	assert.Contains(t, err.Error(), "SQLITE_RUN_MIGRATIONS")
}
