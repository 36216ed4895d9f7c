// FILE: config.go
package dailylog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/dailylog/formatter"
	"gopkg.in/yaml.v3"
)

// Config holds all pipeline configuration values
type Config struct {
	// Basic settings
	Level     string `toml:"level" yaml:"level"` // Pipeline-wide minimum level
	Name      string `toml:"name" yaml:"name"`   // File prefix, files are <name>_<YYYY-MM-DD>.<extension>
	Directory string `toml:"directory" yaml:"directory"`
	Extension string `toml:"extension" yaml:"extension"`

	// Console sink
	EnableConsole  bool   `toml:"enable_console" yaml:"enable_console"`
	ConsoleTarget  string `toml:"console_target" yaml:"console_target"` // "stdout" or "stderr"
	ConsoleLevel   string `toml:"console_level" yaml:"console_level"`
	ConsolePattern string `toml:"console_pattern" yaml:"console_pattern"`

	// File sink
	FileLevel   string `toml:"file_level" yaml:"file_level"`
	FilePattern string `toml:"file_pattern" yaml:"file_pattern"`
	MaxSizeMB   int64  `toml:"max_size_mb" yaml:"max_size_mb"` // Size rollover within a day, 0 disables
	MaxBackups  int64  `toml:"max_backups" yaml:"max_backups"`
	Compress    bool   `toml:"compress" yaml:"compress"`

	// Queue
	QueueSize       int64  `toml:"queue_size" yaml:"queue_size"`
	Workers         int64  `toml:"workers" yaml:"workers"`
	OverflowPolicy  string `toml:"overflow_policy" yaml:"overflow_policy"` // "block" or "drop_newest"
	FlushIntervalMs int64  `toml:"flush_interval_ms" yaml:"flush_interval_ms"`

	// Retention
	RetentionDays  int64 `toml:"retention_days" yaml:"retention_days"` // 0 keeps files forever
	MaxTotalSizeMB int64 `toml:"max_total_size_mb" yaml:"max_total_size_mb"`

	// Disk checks
	MinDiskFreeMB       int64 `toml:"min_disk_free_mb" yaml:"min_disk_free_mb"`             // 0 disables the free space check
	DiskCheckIntervalMs int64 `toml:"disk_check_interval_ms" yaml:"disk_check_interval_ms"` // 0 checks only at startup and rotation

	// Heartbeat
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s" yaml:"heartbeat_interval_s"` // 0 disables

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr" yaml:"internal_errors_to_stderr"`
}

// resolvedConfig holds the parsed form of the string settings
type resolvedConfig struct {
	minLevel     int64
	consoleLevel int64
	fileLevel    int64
	policy       OverflowPolicy
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	// Basic settings
	Level:     "trace",
	Name:      "app",
	Directory: defaultLogDir,
	Extension: "log",

	// Console sink
	EnableConsole:  true,
	ConsoleTarget:  "stdout",
	ConsoleLevel:   "info",
	ConsolePattern: formatter.DefaultConsolePattern,

	// File sink
	FileLevel:   "trace",
	FilePattern: formatter.DefaultFilePattern,
	MaxSizeMB:   0,
	MaxBackups:  0,
	Compress:    false,

	// Queue
	QueueSize:       8192,
	Workers:         1,
	OverflowPolicy:  "block",
	FlushIntervalMs: 100,

	// Retention
	RetentionDays:  0,
	MaxTotalSizeMB: 0,

	// Disk checks
	MinDiskFreeMB:       0,
	DiskCheckIntervalMs: 5000,

	// Heartbeat
	HeartbeatIntervalS: 0,

	// Internal error handling
	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML or YAML file, applies
// the APP_LOG_DIR environment override and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	default:
		if err := loadTOML(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTOML reads the [log] table through lixenwraith/config
func loadTOML(path string, cfg *Config) error {
	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return fmt.Errorf("failed to register config struct: %w", err)
	}

	// Missing file keeps the defaults
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return fmt.Errorf("failed to extract config values: %w", err)
	}
	return nil
}

// yamlFile is the document layout: settings live under "log", the legacy
// top-level "log_level" key sets the pipeline level
type yamlFile struct {
	Log      yaml.Node `yaml:"log"`
	LogLevel string    `yaml:"log_level"`
}

// loadYAML reads the log section of a YAML document
func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config from %s: %w", path, err)
	}

	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config from %s: %w", path, err)
	}
	if doc.Log.Kind != 0 {
		if err := doc.Log.Decode(cfg); err != nil {
			return fmt.Errorf("failed to decode log section of %s: %w", path, err)
		}
	}
	if doc.LogLevel != "" {
		cfg.Level = doc.LogLevel
	}
	return nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets APP_LOG_DIR take precedence over the configured directory
func (c *Config) applyEnv() {
	if dir := strings.TrimSpace(os.Getenv(EnvLogDir)); dir != "" {
		c.Directory = dir
	}
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			// TOML decoders may hand back floats for integer-looking values
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate checks the configuration
func (c *Config) validate() error {
	_, err := c.resolve()
	return err
}

// resolve checks the configuration and parses levels and policy
func (c *Config) resolve() (resolvedConfig, error) {
	var r resolvedConfig
	if strings.TrimSpace(c.Name) == "" {
		return r, fmtErrorf("log name cannot be empty")
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return r, fmtErrorf("log name cannot contain path separators: '%s'", c.Name)
	}
	if strings.HasPrefix(c.Extension, ".") {
		return r, fmtErrorf("extension should not start with dot: %s", c.Extension)
	}
	if strings.TrimSpace(c.Directory) == "" {
		c.Directory = defaultLogDir
	}
	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return r, fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	var err error
	if r.minLevel, err = Level(c.Level); err != nil {
		return r, err
	}
	if r.consoleLevel, err = Level(c.ConsoleLevel); err != nil {
		return r, fmtErrorf("console_level: %w", err)
	}
	if r.fileLevel, err = Level(c.FileLevel); err != nil {
		return r, fmtErrorf("file_level: %w", err)
	}
	if r.policy, err = ParsePolicy(c.OverflowPolicy); err != nil {
		return r, err
	}

	if c.QueueSize <= 0 {
		return r, fmtErrorf("queue_size must be positive: %d", c.QueueSize)
	}
	if c.Workers <= 0 {
		return r, fmtErrorf("workers must be positive: %d", c.Workers)
	}
	if c.Workers > c.QueueSize {
		return r, fmtErrorf("workers (%d) cannot exceed queue_size (%d)", c.Workers, c.QueueSize)
	}
	if c.FlushIntervalMs < 0 {
		return r, fmtErrorf("flush_interval_ms cannot be negative: %d", c.FlushIntervalMs)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxTotalSizeMB < 0 || c.MinDiskFreeMB < 0 {
		return r, fmtErrorf("size limits cannot be negative")
	}
	if c.RetentionDays < 0 {
		return r, fmtErrorf("retention_days cannot be negative: %d", c.RetentionDays)
	}
	if c.DiskCheckIntervalMs < 0 {
		return r, fmtErrorf("disk_check_interval_ms cannot be negative: %d", c.DiskCheckIntervalMs)
	}
	if c.HeartbeatIntervalS < 0 {
		return r, fmtErrorf("heartbeat_interval_s cannot be negative: %d", c.HeartbeatIntervalS)
	}

	return r, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	return c.validate()
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
