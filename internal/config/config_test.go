package config_test

import (
	"testing"

	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("WAYPOINT_ENV", "local")
	t.Setenv("PORT", "8081")
	t.Setenv("WAYPOINT_LOG_FILE", "/tmp/checkins.txt")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "/tmp/checkins.txt", cfg.LogFile)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.True(t, cfg.Database.Enabled())
}

func TestMustLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "")

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "logs.txt", cfg.LogFile)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.NotEmpty(t, cfg.VideoURL)
	assert.False(t, cfg.Database.Enabled())
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port from configuration, must be an integer", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortOutOfRange(t *testing.T) {
	t.Setenv("PORT", "70000")

	assert.PanicsWithValue(t, "port must be between 1 and 65535", func() {
		config.MustLoad()
	})
}
