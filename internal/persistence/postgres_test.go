package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/config"
)

func TestPoolConfigAppliesLimits(t *testing.T) {
	cfg, err := poolConfig(config.PostgresConfig{
		DSN:            "postgres://helpdesk:secret@db:5432/helpdesk?sslmode=disable",
		MaxConns:       4,
		MinConns:       9,
		ConnMaxIdleSec: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, int32(4), cfg.MinConns)
	assert.Equal(t, 15*time.Second, cfg.MaxConnIdleTime)
	assert.Equal(t, "db", cfg.ConnConfig.Host)
}

func TestPoolConfigRejectsBadDSN(t *testing.T) {
	_, err := poolConfig(config.PostgresConfig{DSN: "postgres://%zz"})
	assert.Error(t, err)
}
