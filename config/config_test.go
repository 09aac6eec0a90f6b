package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ROOM_MAX_PARTICIPANTS", "ROOM_IDLE_TTL", "REDIS_ADDR", "DATABASE_URL", "DB_HOST", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Room.MaxParticipants)
	assert.Equal(t, 6, cfg.Room.CodeLength)
	assert.Equal(t, 3*time.Hour, cfg.Room.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Room.SweepInterval)
	assert.Equal(t, 200, cfg.Room.ChatMaxLength)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Database.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ROOM_MAX_PARTICIPANTS", "50")
	t.Setenv("ROOM_IDLE_TTL", "90m")
	t.Setenv("ROOM_SWEEP_INTERVAL", "30")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DATABASE_URL", "postgres://db/mockify")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 50, cfg.Room.MaxParticipants)
	assert.Equal(t, 90*time.Minute, cfg.Room.IdleTTL)
	assert.Equal(t, 30*time.Second, cfg.Room.SweepInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "postgres://db/mockify", cfg.Database.DSN())
}

func TestLoad_RejectsTinyRooms(t *testing.T) {
	t.Setenv("ROOM_MAX_PARTICIPANTS", "1")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_FromComponents(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.DSN())
}

func TestGetEnvDuration_BadValue(t *testing.T) {
	t.Setenv("ROOM_IDLE_TTL", "soon")
	assert.Equal(t, time.Hour, getEnvDuration("ROOM_IDLE_TTL", time.Hour))
}
