package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "stitchloom.db", cfg.DBFile)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 5, cfg.LoginMaxFails)
	require.NotEmpty(t, cfg.DataDir)
	require.Equal(t, filepath.Join(cfg.DataDir, "stitchloom.db"), cfg.DBPath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STITCHLOOM_DATA_DIR", "/tmp/sl")
	t.Setenv("STITCHLOOM_LOG_LEVEL", "debug")
	t.Setenv("STITCHLOOM_SESSION_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/sl", cfg.DataDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_file: from-file.db\nlog_level: warn\n"), 0o600))
	t.Setenv("STITCHLOOM_CONFIG", path)
	t.Setenv("STITCHLOOM_LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-file.db", cfg.DBFile)
	require.Equal(t, "error", cfg.LogLevel, "env wins over file")
}
