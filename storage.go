// FILE: storage.go
package dailylog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// logStore knows the directory layout of the dated log files
type logStore struct {
	dir  string
	name string
	ext  string
}

// newLogStore builds the store for cfg
func newLogStore(cfg *Config) *logStore {
	return &logStore{dir: cfg.Directory, name: cfg.Name, ext: cfg.Extension}
}

// fileName returns "<name>_<YYYY-MM-DD>.<ext>" for the calendar day of t
func (s *logStore) fileName(t time.Time) string {
	base := s.name + "_" + t.Format(dateLayout)
	if s.ext != "" {
		return base + "." + s.ext
	}
	return base
}

// pathFor returns the dated file path for the calendar day of t
func (s *logStore) pathFor(t time.Time) string {
	return filepath.Join(s.dir, s.fileName(t))
}

// ensureLogDirectory creates dir when missing and verifies it is a writable directory
func ensureLogDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmtErrorf("log directory cannot be empty")
	}
	if err := os.MkdirAll(dir, logDirPerm); err != nil {
		return fmtErrorf("failed to create log directory '%s': %w", dir, err)
	}
	return checkWritableDir(dir)
}

// checkWritableDir verifies dir exists, is a directory and accepts new files
func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmtErrorf("log directory '%s' is not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return fmtErrorf("log path '%s' is not a directory", dir)
	}
	if info.Mode().Perm()&0200 == 0 {
		return fmtErrorf("log directory '%s' is not writable by owner", dir)
	}

	tmp, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return fmtErrorf("log directory '%s' is not writable: %w", dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return nil
}

// createLogFile opens path for appending, creating it when needed
func createLogFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
	if err != nil {
		return nil, fmtErrorf("failed to open/create log file '%s': %w", path, err)
	}
	return file, nil
}

type logFileMeta struct {
	name    string
	modTime time.Time
	size    int64
}

// listLogs returns the dated log files in the directory, oldest first.
// Size-rollover backups share the prefix and are included.
func (s *logStore) listLogs() ([]logFileMeta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmtErrorf("failed to read log directory '%s': %w", s.dir, err)
	}

	prefix := s.name + "_"
	var logs []logFileMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if s.ext != "" && !strings.Contains(entry.Name(), "."+s.ext) {
			continue
		}
		info, errInfo := entry.Info()
		if errInfo != nil {
			continue
		}
		logs = append(logs, logFileMeta{name: entry.Name(), modTime: info.ModTime(), size: info.Size()})
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].modTime.Before(logs[j].modTime) })
	return logs, nil
}

// cleanup removes files older than retention, then the oldest files until
// the total size fits maxTotal and at least freeUp bytes were released.
// The active file is never removed. It returns the files and bytes removed.
func (s *logStore) cleanup(active string, now time.Time, retention time.Duration, maxTotal, freeUp int64) (int, int64, error) {
	if retention <= 0 && maxTotal <= 0 && freeUp <= 0 {
		return 0, 0, nil
	}

	logs, err := s.listLogs()
	if err != nil {
		return 0, 0, err
	}

	activeName := filepath.Base(active)
	var total int64
	for _, l := range logs {
		total += l.size
	}

	var deleted int
	var freed int64
	var finalErr error
	cutoff := now.Add(-retention)
	for _, l := range logs {
		if l.name == activeName {
			continue
		}
		expired := retention > 0 && l.modTime.Before(cutoff)
		oversize := maxTotal > 0 && total > maxTotal
		short := freeUp > 0 && freed < freeUp
		if !expired && !oversize && !short {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, l.name)); err != nil {
			finalErr = combineErrors(finalErr, fmtErrorf("failed to remove old log file '%s': %w", l.name, err))
			continue
		}
		total -= l.size
		freed += l.size
		deleted++
	}
	return deleted, freed, finalErr
}

// diskFreeSpace returns the bytes available to unprivileged users on the
// filesystem holding dir
func diskFreeSpace(dir string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, fmtErrorf("failed to get disk stats for '%s': %w", dir, err)
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
