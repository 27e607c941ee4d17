// Package workdir manages the directory archives are extracted into. A run
// holds an exclusive file lock on it while the staged tree is in use.
package workdir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	jerrors "github.com/terassyi/jaroverlap/internal/errors"
)

// DefaultName is the subdirectory of the system temporary directory used
// when no working directory is given.
const DefaultName = "jaroverlap"

// Default returns the default working directory.
func Default() string {
	return filepath.Join(os.TempDir(), DefaultName)
}

// Dir is a working directory guarded by a sibling lock file. The lock lives
// outside the directory so that wiping the directory keeps it.
type Dir struct {
	path     string
	lockPath string
	fileLock *flock.Flock
	locked   bool
}

// New returns a Dir for path. The parent directory is created if missing;
// the directory itself is created by Reset.
func New(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	lockPath := abs + ".lock"
	return &Dir{
		path:     abs,
		lockPath: lockPath,
		fileLock: flock.New(lockPath),
	}, nil
}

// Path returns the absolute path of the working directory.
func (d *Dir) Path() string {
	return d.path
}

// LockPath returns the path to the lock file.
func (d *Dir) LockPath() string {
	return d.lockPath
}

// Lock acquires an exclusive lock on the working directory and records the
// current PID in the lock file.
func (d *Dir) Lock() error {
	if d.locked {
		return nil
	}

	locked, err := d.fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		lockErr := jerrors.NewWorkdirLockedError(d.path, d.lockPath)
		if pid, err := d.readLockPID(); err == nil && pid > 0 {
			lockErr.Base.WithDetail("pid", pid)
		}
		return lockErr
	}

	if err := d.writeLockPID(); err != nil {
		_ = d.fileLock.Unlock()
		return fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	d.locked = true
	return nil
}

// Unlock releases the lock.
func (d *Dir) Unlock() error {
	if !d.locked {
		return nil
	}

	if err := d.fileLock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	d.locked = false
	return nil
}

// Reset deletes any previous contents and recreates the directory empty.
// Must be called after Lock().
func (d *Dir) Reset() error {
	if !d.locked {
		return fmt.Errorf("working directory %s is not locked", d.path)
	}
	if err := d.checkRemovable(); err != nil {
		return err
	}

	slog.Debug("wiping working directory", "path", d.path)
	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("failed to remove previous contents: %w", err)
	}
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	return nil
}

// checkRemovable refuses to wipe the filesystem root or the home directory.
func (d *Dir) checkRemovable() error {
	if d.path == filepath.Dir(d.path) {
		return fmt.Errorf("refusing to wipe filesystem root %s", d.path)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == d.path {
		return fmt.Errorf("refusing to wipe home directory %s", d.path)
	}
	return nil
}

// Prepare locks and resets the working directory at path. On failure no
// lock is held. Errors are reported as *errors.WorkdirError.
func Prepare(path string) (*Dir, error) {
	d, err := New(path)
	if err != nil {
		return nil, jerrors.NewWorkdirError(path, err)
	}
	if err := d.Lock(); err != nil {
		if _, ok := err.(*jerrors.WorkdirError); ok {
			return nil, err
		}
		return nil, jerrors.NewWorkdirError(d.path, err)
	}
	if err := d.Reset(); err != nil {
		_ = d.Unlock()
		return nil, jerrors.NewWorkdirError(d.path, err)
	}
	return d, nil
}

func (d *Dir) readLockPID() (int, error) {
	data, err := os.ReadFile(d.lockPath)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

func (d *Dir) writeLockPID() error {
	return os.WriteFile(d.lockPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}
