// Package scratch stages got/want blocks in scratch files next to the test
// log so an external diff tool can compare them.
//
// Files are named by suffixing the scratch base (the log path) with ".got"
// and ".want". Writes hold an advisory lock on "<base>.lock" and replace each
// file atomically, so a concurrent or interrupted run never leaves a torn file.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/harrison/difftest/internal/logger"
	"github.com/harrison/difftest/internal/testlog"
)

// Suffixes appended to the scratch base.
const (
	GotSuffix  = ".got"
	WantSuffix = ".want"
	LockSuffix = ".lock"
)

// Paths returns the got and want scratch file names for base.
func Paths(base string) (got, want string) {
	return base + GotSuffix, base + WantSuffix
}

// Write stores the got and want blocks verbatim in the scratch files for base,
// overwriting any previous ones, and returns their paths. A nil log discards
// messages.
func Write(base string, blocks *testlog.Blocks, log logger.Logger) (gotPath, wantPath string, err error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	gotPath, wantPath = Paths(base)

	release, err := acquire(base+LockSuffix, log)
	if err != nil {
		return "", "", err
	}
	defer release()

	staged := []struct {
		block string
		path  string
		lines []string
	}{
		{"got", gotPath, blocks.Got},
		{"want", wantPath, blocks.Want},
	}
	for _, s := range staged {
		if err := WriteFile(s.path, []byte(strings.Join(s.lines, ""))); err != nil {
			return "", "", fmt.Errorf("failed to write %s block: %w", s.block, err)
		}
		log.LogTrace(fmt.Sprintf("staged %d %s lines in %s", len(s.lines), s.block, s.path))
	}

	return gotPath, wantPath, nil
}

// acquire takes the exclusive lock at path, logging a warning first when
// another process already holds it.
func acquire(path string, log logger.Logger) (release func(), err error) {
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !ok {
		log.LogWarn(fmt.Sprintf("waiting for %s: another difftest is staging scratch files", path))
		if err := lock.Lock(); err != nil {
			return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
		}
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			log.LogError(fmt.Sprintf("failed to release lock on %s: %v", path, err))
		}
	}, nil
}

// WriteFile replaces path with data through a temp file in the same directory
// and a rename. On failure the previous file, if any, is left untouched.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmp.Name(), path, err)
	}
	return nil
}
