// FILE: utility.go
package dailylog

import (
	"fmt"
	"os"
	"strings"
)

// errPrefix marks every error and diagnostic raised by the package
const errPrefix = "dailylog: "

// fmtErrorf is fmt.Errorf with errPrefix
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, errPrefix) {
		format = errPrefix + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// Level converts level string to numeric constant.
func Level(levelStr string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "err":
		return LevelError, nil
	case "critical", "crit", "fatal":
		return LevelCritical, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use trace, debug, info, warn, error, critical)", levelStr)
	}
}

// ParsePolicy converts an overflow policy name to its constant
func ParsePolicy(policyStr string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(policyStr)) {
	case "block", "":
		return PolicyBlock, nil
	case "drop_newest", "drop-newest", "drop":
		return PolicyDropNewest, nil
	default:
		return PolicyBlock, fmtErrorf("invalid overflow policy: '%s' (use block or drop_newest)", policyStr)
	}
}

// internalLog writes pipeline diagnostics to stderr when enabled
func internalLog(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	if !strings.HasPrefix(format, errPrefix) {
		format = errPrefix + format
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
