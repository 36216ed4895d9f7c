package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().StringArray("set", nil, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	cmd := newTestCommand(t, "--set", "directory="+dir, "--set", "workers=2")

	cfg, err := loadConfig(cmd, "name=svc")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Directory)
	assert.Equal(t, int64(2), cfg.Workers)
	assert.Equal(t, "svc", cfg.Name)
}

func TestLoadConfigFlagsWinOverExtra(t *testing.T) {
	cmd := newTestCommand(t, "--set", "name=fromflag")
	cfg, err := loadConfig(cmd, "name=default")
	require.NoError(t, err)
	assert.Equal(t, "fromflag", cfg.Name)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dailylog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  name: fromfile\n  console_level: warn\n"), 0644))

	cfg, err := loadConfig(newTestCommand(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Name)
	assert.Equal(t, "warn", cfg.ConsoleLevel)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := loadConfig(newTestCommand(t, "--set", "bogus=1"))
	assert.Error(t, err)
}

func TestStressCommand(t *testing.T) {
	for _, frontend := range []string{"native", "zap", "zerolog"} {
		t.Run(frontend, func(t *testing.T) {
			dir := t.TempDir()
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs([]string{"stress",
				"--set", "directory=" + dir,
				"--set", "internal_errors_to_stderr=false",
				"--producers", "3", "--records", "50", "--max-size", "20",
				"--frontend", frontend,
			})
			require.NoError(t, rootCmd.Execute())

			assert.Contains(t, out.String(), "Produced 150 records")
			assert.Contains(t, out.String(), "dropped 0")

			files, err := filepath.Glob(filepath.Join(dir, "stress_*.log"))
			require.NoError(t, err)
			assert.Len(t, files, 1)
		})
	}
}

func TestStressCommandUnknownFrontend(t *testing.T) {
	rootCmd.SetArgs([]string{"stress", "--set", "directory=" + t.TempDir(), "--frontend", "logrus"})
	assert.Error(t, rootCmd.Execute())
}
