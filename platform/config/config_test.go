package config

import (
	"testing"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "GAME_STORE", "LOCK_TTL", "STARTING_CASH", "TURN_TIMEOUT", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":4101", cfg.HTTPAddr)
	require.Equal(t, StoreRedis, cfg.Store)
	require.Equal(t, 5*time.Second, cfg.LockTTL)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	require.Equal(t, models.DefaultSettings(), cfg.Rules)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GAME_STORE", "memory")
	t.Setenv("STARTING_CASH", "2000")
	t.Setenv("TURN_TIMEOUT", "90")
	t.Setenv("TRADE_EXPIRY", "5m")
	t.Setenv("MAX_TIMEOUT_PENALTIES", "5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, int64(2000), cfg.Rules.StartingCash)
	require.Equal(t, 90*time.Second, cfg.Rules.TurnTimeout)
	require.Equal(t, 5*time.Minute, cfg.Rules.TradeExpiry)
	require.Equal(t, 5, cfg.Rules.MaxTimeoutPenalties)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"STARTING_CASH": "lots",
		"GRACE_PERIOD":  "soon",
		"LOCK_TTL":      "forever",
		"GAME_STORE":    "mongo",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
