package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8089", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, float64(100), cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.Equal(t, "lh-user-tasks-admin", cfg.AdminRole)
	assert.Equal(t, "tenants.yaml", cfg.TenantsFile)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BRIDGE_SERVER_ADDR", ":9000")
	t.Setenv("BRIDGE_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("BRIDGE_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("BRIDGE_RATE_LIMIT_RPS", "25.5")
	t.Setenv("BRIDGE_RATE_LIMIT_BURST", "50")
	t.Setenv("BRIDGE_ADMIN_ROLE", "task-admin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 25.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 50, cfg.RateLimit.Burst)
	assert.Equal(t, "task-admin", cfg.AdminRole)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]struct {
		key, value string
	}{
		"unparseable_duration": {"BRIDGE_SERVER_READ_TIMEOUT", "fast"},
		"unparseable_float":    {"BRIDGE_RATE_LIMIT_RPS", "many"},
		"unparseable_int":      {"BRIDGE_RATE_LIMIT_BURST", "1.5"},
		"negative_rps":         {"BRIDGE_RATE_LIMIT_RPS", "-1"},
		"zero_burst":           {"BRIDGE_RATE_LIMIT_BURST", "0"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
