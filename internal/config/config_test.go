package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "data/products.csv", cfg.Store.Path)
	require.Equal(t, catalog.DefaultLockTimeout, cfg.Store.LockTimeout)
	require.Equal(t, catalog.DefaultPollInterval, cfg.Store.PollInterval)
	require.Zero(t, cfg.Store.StaleAfter)
	require.Equal(t, ":8082", cfg.HTTP.Addr)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 60, cfg.Limits.WritesPerMinute)
	require.False(t, cfg.Auth.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CATALOG_FILE", "/srv/catalog/products.csv")
	t.Setenv("LOCK_TIMEOUT", "2s")
	t.Setenv("LOCK_POLL_INTERVAL", "25ms")
	t.Setenv("LOCK_STALE_AFTER", "10m")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("API_KEY_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("WRITE_RATE_LIMIT", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, catalog.Config{
		Path:         "/srv/catalog/products.csv",
		LockTimeout:  2 * time.Second,
		PollInterval: 25 * time.Millisecond,
		StaleAfter:   10 * time.Minute,
	}, cfg.Store)
	require.Equal(t, ":9000", cfg.HTTP.Addr)
	require.True(t, cfg.Auth.Enabled())
	require.Zero(t, cfg.Limits.WritesPerMinute)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.env"),
		[]byte("CATALOG_FILE=from-file.csv\nLOG_LEVEL=debug\n"), 0o644))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "from-file.csv", cfg.Store.Path)
	require.Equal(t, "warn", cfg.Log.Level, "environment wins over the file")
}

func TestFromViper_Validation(t *testing.T) {
	base := func() *viper.Viper {
		v := viper.New()
		v.Set("CATALOG_FILE", "products.csv")
		v.Set("LOCK_TIMEOUT", "1s")
		v.Set("LOCK_POLL_INTERVAL", "10ms")
		v.Set("HTTP_ADDR", ":8082")
		return v
	}

	_, err := config.FromViper(base())
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
		val  any
		msg  string
	}{
		{"empty path", "CATALOG_FILE", " ", "CATALOG_FILE"},
		{"zero timeout", "LOCK_TIMEOUT", "0s", "LOCK_TIMEOUT"},
		{"poll above timeout", "LOCK_POLL_INTERVAL", "2s", "LOCK_POLL_INTERVAL"},
		{"negative stale", "LOCK_STALE_AFTER", "-1m", "LOCK_STALE_AFTER"},
		{"no addr", "HTTP_ADDR", "", "HTTP_ADDR"},
		{"short secret", "API_KEY_SECRET", "short", "API_KEY_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base()
			v.Set(tt.key, tt.val)

			_, err := config.FromViper(v)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
