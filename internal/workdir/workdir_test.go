package workdir

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	jerrors "github.com/terassyi/jaroverlap/internal/errors"
)

func TestDir_LockUnlock(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "work"))
	if err != nil {
		t.Fatalf("failed to create workdir: %v", err)
	}

	if err := d.Lock(); err != nil {
		t.Fatalf("failed to lock: %v", err)
	}

	data, err := os.ReadFile(d.LockPath())
	if err != nil {
		t.Fatalf("failed to read lock file: %v", err)
	}
	if string(data) != strconv.Itoa(os.Getpid()) {
		t.Errorf("lock file = %q, want our PID", data)
	}

	// Locking twice is a no-op.
	if err := d.Lock(); err != nil {
		t.Fatalf("second lock: %v", err)
	}

	if err := d.Unlock(); err != nil {
		t.Fatalf("failed to unlock: %v", err)
	}
	if err := d.Unlock(); err != nil {
		t.Fatalf("second unlock: %v", err)
	}
}

func TestDir_LockedByAnotherHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work")
	first, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Lock(); err != nil {
		t.Fatalf("failed to lock: %v", err)
	}
	defer func() { _ = first.Unlock() }()

	second, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	err = second.Lock()

	var wdErr *jerrors.WorkdirError
	if !errors.As(err, &wdErr) {
		t.Fatalf("expected WorkdirError, got %v", err)
	}
	if wdErr.Base.Code != jerrors.CodeWorkdirLocked {
		t.Errorf("code = %s, want %s", wdErr.Base.Code, jerrors.CodeWorkdirLocked)
	}
	if wdErr.Base.Details["pid"] != os.Getpid() {
		t.Errorf("pid detail = %v, want %d", wdErr.Base.Details["pid"], os.Getpid())
	}

	if _, err := Prepare(path); !errors.As(err, &wdErr) {
		t.Fatalf("Prepare on a locked directory: expected WorkdirError, got %v", err)
	}
}

func TestDir_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work")
	stale := filepath.Join(path, "WEB-INF", "lib", "stale.jar")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Reset(); err == nil {
		t.Fatal("Reset without lock should fail")
	}

	if err := d.Lock(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = d.Unlock() }()

	if err := d.Reset(); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		t.Fatalf("working directory missing after reset: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("working directory not empty after reset: %v", entries)
	}
	if _, err := os.Stat(d.LockPath()); err != nil {
		t.Errorf("lock file removed by reset: %v", err)
	}
}

func TestPrepare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "work")

	d, err := Prepare(path)
	if err != nil {
		t.Fatalf("failed to prepare: %v", err)
	}
	defer func() { _ = d.Unlock() }()

	if d.Path() != path {
		t.Errorf("Path() = %s, want %s", d.Path(), path)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("working directory not created: %v", err)
	}
}

func TestDir_RefusesToWipeRoot(t *testing.T) {
	d := &Dir{path: string(filepath.Separator), locked: true}
	if err := d.Reset(); err == nil {
		t.Fatal("Reset of the filesystem root should fail")
	}
}

func TestDefault(t *testing.T) {
	if got, want := Default(), filepath.Join(os.TempDir(), "jaroverlap"); got != want {
		t.Errorf("Default() = %s, want %s", got, want)
	}
}
