package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "homeql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Cleanup(ResetConfig)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseFile, cfg.DatabasePath)
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)
	assert.Equal(t, DefaultFormat, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	t.Cleanup(ResetConfig)
	t.Chdir(t.TempDir())

	cfgPath := writeConfigFile(t, "database: /data/smart.db\nformat: json\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "/data/smart.db", cfg.DatabasePath)
	assert.Equal(t, "json", cfg.OutputFormat)
	// Keys the file omits keep their defaults.
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Cleanup(ResetConfig)
	t.Chdir(t.TempDir())

	cfgPath := writeConfigFile(t, "database: from_file.db\n")
	t.Setenv("HOMEQL_DATABASE", "from_env.db")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "from_env.db", cfg.DatabasePath)
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Cleanup(ResetConfig)
	t.Chdir(t.TempDir())

	t.Setenv("HOMEQL_DATABASE", "from_env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	require.NoError(t, flags.Set("database", "from_flag.db"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag.db", cfg.DatabasePath)
}

func TestLoadConfig_UnchangedFlagDoesNotOverride(t *testing.T) {
	t.Cleanup(ResetConfig)
	t.Chdir(t.TempDir())

	t.Setenv("HOMEQL_FORMAT", "csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "")

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.OutputFormat)
}

func TestLoadConfig_DiscoversLocalFile(t *testing.T) {
	t.Cleanup(ResetConfig)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "homeql.yaml"),
		[]byte("database: discovered.db\n"), 0o644))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "discovered.db", cfg.DatabasePath)
	assert.Equal(t, "homeql.yaml", GetConfigFileUsed())
}

func TestLoadConfig_BadYAML(t *testing.T) {
	t.Cleanup(ResetConfig)

	cfgPath := writeConfigFile(t, "database: [unclosed\n")

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
}

func TestGetCurrentConfig(t *testing.T) {
	t.Cleanup(ResetConfig)
	t.Chdir(t.TempDir())

	ResetConfig()
	assert.Nil(t, GetCurrentConfig())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestGetLogger(t *testing.T) {
	// Without a logger in context the fallback discards records.
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)

	want := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.WithValue(context.Background(), LoggerKey(), want)
	assert.Same(t, want, GetLogger(ctx))
}
