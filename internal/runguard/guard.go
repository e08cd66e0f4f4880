// Package runguard keeps two reindex runs from overlapping, using an exclusive lock on the
// PID file.
package runguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/kailas-cloud/reindexer/internal/domain"
)

// Guard is a PID file held under an exclusive advisory lock.
type Guard struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a guard for the PID file at path. Nothing is locked yet.
func New(path string) *Guard {
	return &Guard{path: path, flock: flock.New(path)}
}

// Acquire takes the lock without blocking and records the current PID.
// Returns an error wrapping domain.ErrAlreadyRunning when another process holds it.
func (g *Guard) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	acquired, err := g.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", g.path, err)
	}
	if !acquired {
		if pid, ok := g.holder(); ok {
			return fmt.Errorf("%s held by pid %d: %w", g.path, pid, domain.ErrAlreadyRunning)
		}
		return fmt.Errorf("%s is locked: %w", g.path, domain.ErrAlreadyRunning)
	}
	g.locked = true

	if err := os.WriteFile(g.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		_ = g.Release()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release clears the PID and unlocks. Safe to call more than once.
// The file itself stays so that a concurrent starter never locks an unlinked inode.
func (g *Guard) Release() error {
	if !g.locked {
		return nil
	}
	g.locked = false

	truncErr := os.Truncate(g.path, 0)
	if err := g.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if truncErr != nil && !errors.Is(truncErr, os.ErrNotExist) {
		return fmt.Errorf("failed to clear PID file: %w", truncErr)
	}
	return nil
}

func (g *Guard) holder() (int, bool) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, true
}
