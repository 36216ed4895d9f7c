// FILE: config_test.go
package dailylog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/dailylog/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "trace", cfg.Level)
	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, "logs", cfg.Directory)
	assert.Equal(t, "log", cfg.Extension)
	assert.True(t, cfg.EnableConsole)
	assert.Equal(t, "stdout", cfg.ConsoleTarget)
	assert.Equal(t, "info", cfg.ConsoleLevel)
	assert.Equal(t, "trace", cfg.FileLevel)
	assert.Equal(t, formatter.DefaultConsolePattern, cfg.ConsolePattern)
	assert.Equal(t, formatter.DefaultFilePattern, cfg.FilePattern)
	assert.Equal(t, int64(8192), cfg.QueueSize)
	assert.Equal(t, int64(1), cfg.Workers)
	assert.Equal(t, int64(0), cfg.MinDiskFreeMB)
	assert.Equal(t, int64(5000), cfg.DiskCheckIntervalMs)
	assert.Equal(t, "block", cfg.OverflowPolicy)

	r, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, LevelTrace, r.minLevel)
	assert.Equal(t, LevelInfo, r.consoleLevel)
	assert.Equal(t, LevelTrace, r.fileLevel)
	assert.Equal(t, PolicyBlock, r.policy)
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.Level = "debug"
	cfg1.Directory = "/custom/path"

	cfg2 := cfg1.Clone()

	assert.Equal(t, cfg1.Level, cfg2.Level)
	assert.Equal(t, cfg1.Directory, cfg2.Directory)

	cfg1.Level = "error"
	assert.Equal(t, "debug", cfg2.Level)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "empty name",
			modify:    func(c *Config) { c.Name = "" },
			wantError: "log name cannot be empty",
		},
		{
			name:      "name with separator",
			modify:    func(c *Config) { c.Name = "a/b" },
			wantError: "path separators",
		},
		{
			name:      "extension with dot",
			modify:    func(c *Config) { c.Extension = ".log" },
			wantError: "extension should not start with dot",
		},
		{
			name:      "invalid console target",
			modify:    func(c *Config) { c.ConsoleTarget = "invalid" },
			wantError: "invalid console_target",
		},
		{
			name:      "invalid level",
			modify:    func(c *Config) { c.Level = "loud" },
			wantError: "invalid level string",
		},
		{
			name:      "invalid console level",
			modify:    func(c *Config) { c.ConsoleLevel = "loud" },
			wantError: "console_level",
		},
		{
			name:      "invalid file level",
			modify:    func(c *Config) { c.FileLevel = "loud" },
			wantError: "file_level",
		},
		{
			name:      "invalid policy",
			modify:    func(c *Config) { c.OverflowPolicy = "drop_oldest" },
			wantError: "invalid overflow policy",
		},
		{
			name:      "negative queue size",
			modify:    func(c *Config) { c.QueueSize = -1 },
			wantError: "queue_size must be positive",
		},
		{
			name:      "more workers than slots",
			modify:    func(c *Config) { c.QueueSize = 2; c.Workers = 3 },
			wantError: "cannot exceed queue_size",
		},
		{
			name:      "negative flush interval",
			modify:    func(c *Config) { c.FlushIntervalMs = -1 },
			wantError: "flush_interval_ms",
		},
		{
			name:      "negative retention",
			modify:    func(c *Config) { c.RetentionDays = -1 },
			wantError: "retention_days",
		},
		{
			name:      "negative free space",
			modify:    func(c *Config) { c.MinDiskFreeMB = -1 },
			wantError: "size limits cannot be negative",
		},
		{
			name:      "negative disk check interval",
			modify:    func(c *Config) { c.DiskCheckIntervalMs = -1 },
			wantError: "disk_check_interval_ms",
		},
		{
			name:      "negative heartbeat",
			modify:    func(c *Config) { c.HeartbeatIntervalS = -1 },
			wantError: "heartbeat_interval_s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestConfigValidateDefaultsDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = " "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "logs", cfg.Directory)
}

func TestApplyOverride(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		verify    func(t *testing.T, cfg *Config)
		wantError string
	}{
		{
			name:      "basic settings",
			overrides: []string{"directory=/tmp/log", "name=svc", "extension=txt", "level=debug"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/log", cfg.Directory)
				assert.Equal(t, "svc", cfg.Name)
				assert.Equal(t, "txt", cfg.Extension)
				assert.Equal(t, "debug", cfg.Level)
			},
		},
		{
			name:      "numeric level",
			overrides: []string{"console_level=4", "file_level=-8"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.ConsoleLevel)
				assert.Equal(t, "trace", cfg.FileLevel)
			},
		},
		{
			name:      "log_level alias",
			overrides: []string{"log_level=WARN"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Level)
			},
		},
		{
			name: "queue and sinks",
			overrides: []string{
				"queue_size=64", "workers=4", "overflow_policy=drop_newest", "flush_interval_ms=5",
				"enable_console=false", "console_target=stderr", "compress=true", "max_size_mb=3",
				"max_backups=2", "retention_days=9", "max_total_size_mb=50", "heartbeat_interval_s=60",
				"min_disk_free_mb=200", "disk_check_interval_ms=1000",
				"internal_errors_to_stderr=false", "console_pattern=%v", "file_pattern=[%l] %v",
			},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(64), cfg.QueueSize)
				assert.Equal(t, int64(4), cfg.Workers)
				assert.Equal(t, "drop_newest", cfg.OverflowPolicy)
				assert.Equal(t, int64(5), cfg.FlushIntervalMs)
				assert.False(t, cfg.EnableConsole)
				assert.Equal(t, "stderr", cfg.ConsoleTarget)
				assert.True(t, cfg.Compress)
				assert.Equal(t, int64(3), cfg.MaxSizeMB)
				assert.Equal(t, int64(2), cfg.MaxBackups)
				assert.Equal(t, int64(9), cfg.RetentionDays)
				assert.Equal(t, int64(50), cfg.MaxTotalSizeMB)
				assert.Equal(t, int64(60), cfg.HeartbeatIntervalS)
				assert.Equal(t, int64(200), cfg.MinDiskFreeMB)
				assert.Equal(t, int64(1000), cfg.DiskCheckIntervalMs)
				assert.False(t, cfg.InternalErrorsToStderr)
				assert.Equal(t, "%v", cfg.ConsolePattern)
				assert.Equal(t, "[%l] %v", cfg.FilePattern)
			},
		},
		{
			name:      "unknown key",
			overrides: []string{"format=json"},
			wantError: "unknown configuration key",
		},
		{
			name:      "bad values are all reported",
			overrides: []string{"workers=many", "compress=maybe", "level=7"},
			wantError: "multiple configuration errors",
		},
		{
			name:      "invalid combination",
			overrides: []string{"queue_size=1", "workers=2"},
			wantError: "cannot exceed queue_size",
		},
		{
			name:      "missing separator",
			overrides: []string{"workers"},
			wantError: "expected key=value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.ApplyOverride(tt.overrides...)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				// Nothing is applied on failure
				assert.Equal(t, DefaultConfig(), cfg)
				return
			}
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"directory":   "/srv/logs",
		"queue_size":  128,
		"workers":     int64(2),
		"compress":    true,
		"max_size_mb": float64(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "/srv/logs", cfg.Directory)
	assert.Equal(t, int64(128), cfg.QueueSize)
	assert.Equal(t, int64(2), cfg.Workers)
	assert.True(t, cfg.Compress)
	assert.Equal(t, int64(5), cfg.MaxSizeMB)

	_, err = NewConfigFromDefaults(map[string]any{"unknown": 1})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"workers": "two"})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"max_size_mb": 1.5})
	assert.Error(t, err)
}

func TestNewConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: warn
log:
  directory: /var/log/yaml
  console_level: error
  workers: 3
  overflow_policy: drop_newest
  enable_console: false
server:
  port: 8080
`), 0644))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "/var/log/yaml", cfg.Directory)
	assert.Equal(t, "error", cfg.ConsoleLevel)
	assert.Equal(t, int64(3), cfg.Workers)
	assert.Equal(t, "drop_newest", cfg.OverflowPolicy)
	assert.False(t, cfg.EnableConsole)
	// Untouched keys keep their defaults
	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, int64(8192), cfg.QueueSize)
}

func TestNewConfigFromYAMLInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("log: [unclosed"), 0644))
	_, err := NewConfigFromFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("log:\n  workers: 0\n"), 0644))
	_, err = NewConfigFromFile(invalid)
	assert.Error(t, err)
}

func TestNewConfigFromFileMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewConfigFromFile(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = NewConfigFromFile(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNewConfigFromFileEnv(t *testing.T) {
	t.Setenv(EnvLogDir, "/from/env")
	cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Directory)
}
