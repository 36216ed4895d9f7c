// FILE: override.go
package dailylog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to the configuration.
// Each override should be in the format "key=value". Nothing is changed
// unless every override is valid.
//
// Example:
//
//	cfg := dailylog.DefaultConfig()
//	err := cfg.ApplyOverride(
//	    "directory=/var/log/app",
//	    "console_level=warn",
//	    "overflow_policy=drop_newest",
//	)
func (c *Config) ApplyOverride(overrides ...string) error {
	next := c.Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(next, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	if err := next.validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString(errPrefix + "multiple configuration errors:")
	for i, err := range errors {
		errMsg := err.Error()
		errMsg = strings.TrimPrefix(errMsg, errPrefix)
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// parseLevelValue accepts a level name or its numeric value
func parseLevelValue(key, value string) (string, error) {
	if numVal, err := strconv.ParseInt(value, 10, 64); err == nil {
		for _, name := range []string{"trace", "debug", "info", "warn", "error", "critical"} {
			if lvl, _ := Level(name); lvl == numVal {
				return name, nil
			}
		}
		return "", fmtErrorf("invalid numeric value for %s '%s'", key, value)
	}
	if _, err := Level(value); err != nil {
		return "", fmtErrorf("invalid value for %s '%s': %w", key, value, err)
	}
	return strings.ToLower(value), nil
}

func parseIntField(key, value string) (int64, error) {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	return intVal, nil
}

func parseBoolField(key, value string) (bool, error) {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	return boolVal, nil
}

// applyConfigField applies a single key-value override to a Config.
// This is the core field mapping logic for string overrides.
func applyConfigField(cfg *Config, key, value string) error {
	var err error
	switch key {
	// Basic settings
	case "level", "log_level":
		cfg.Level, err = parseLevelValue(key, value)
	case "name":
		cfg.Name = value
	case "directory":
		cfg.Directory = value
	case "extension":
		cfg.Extension = value

	// Console sink
	case "enable_console":
		cfg.EnableConsole, err = parseBoolField(key, value)
	case "console_target":
		cfg.ConsoleTarget = value
	case "console_level":
		cfg.ConsoleLevel, err = parseLevelValue(key, value)
	case "console_pattern":
		cfg.ConsolePattern = value

	// File sink
	case "file_level":
		cfg.FileLevel, err = parseLevelValue(key, value)
	case "file_pattern":
		cfg.FilePattern = value
	case "max_size_mb":
		cfg.MaxSizeMB, err = parseIntField(key, value)
	case "max_backups":
		cfg.MaxBackups, err = parseIntField(key, value)
	case "compress":
		cfg.Compress, err = parseBoolField(key, value)

	// Queue
	case "queue_size":
		cfg.QueueSize, err = parseIntField(key, value)
	case "workers":
		cfg.Workers, err = parseIntField(key, value)
	case "overflow_policy":
		if _, perr := ParsePolicy(value); perr != nil {
			return perr
		}
		cfg.OverflowPolicy = value
	case "flush_interval_ms":
		cfg.FlushIntervalMs, err = parseIntField(key, value)

	// Retention
	case "retention_days":
		cfg.RetentionDays, err = parseIntField(key, value)
	case "max_total_size_mb":
		cfg.MaxTotalSizeMB, err = parseIntField(key, value)

	// Disk checks
	case "min_disk_free_mb":
		cfg.MinDiskFreeMB, err = parseIntField(key, value)
	case "disk_check_interval_ms":
		cfg.DiskCheckIntervalMs, err = parseIntField(key, value)

	// Heartbeat
	case "heartbeat_interval_s":
		cfg.HeartbeatIntervalS, err = parseIntField(key, value)

	// Internal error handling
	case "internal_errors_to_stderr":
		cfg.InternalErrorsToStderr, err = parseBoolField(key, value)

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return err
}
