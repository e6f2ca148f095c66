package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SCHOOL_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "School Fees API", cfg.AppName)
	require.Equal(t, ":5000", cfg.HTTPAddress())
	require.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	require.Equal(t, DefaultLateFinePolicy(), cfg.LateFine)
	require.Equal(t, time.Hour, cfg.SweepInterval)
	require.True(t, cfg.SweepOnRead)
	require.Equal(t, 2*time.Minute, cfg.SweepLockTTL)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("SCHOOL_JWT_SECRET", "secret")
	t.Setenv("SCHOOL_APP_PORT", ":9000")
	t.Setenv("SCHOOL_LATE_FINE_RATE", "0.1")
	t.Setenv("SCHOOL_LATE_FINE_MINIMUM", "100")
	t.Setenv("SCHOOL_SWEEP_INTERVAL", "0s")
	t.Setenv("SCHOOL_SWEEP_ON_READ", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddress())
	require.Equal(t, 0.1, cfg.LateFine.Rate)
	require.Equal(t, float64(100), cfg.LateFine.Minimum)
	require.Equal(t, time.Duration(0), cfg.SweepInterval)
	require.False(t, cfg.SweepOnRead)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SCHOOL_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("SCHOOL_JWT_SECRET", "secret")
	t.Setenv("SCHOOL_SWEEP_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
}
