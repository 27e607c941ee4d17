// Package walk enumerates the regular files beneath a root, whether the root is a
// real directory or a zip archive mounted as a virtual tree.
//
// Both sources are walked through io/fs so that directory traversal and zip
// inspection share one primitive. Names are always reported relative to the root
// with a leading "/" and forward slashes, e.g. "/org/example/Foo.class".
package walk

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// File is one regular file found during a walk.
type File struct {
	// Name is the root-relative path with a leading "/".
	Name string
	// Size is the size in bytes.
	Size int64
}

// VisitFunc is called for every regular file. Returning an error aborts the walk.
type VisitFunc func(File) error

// ErrorFunc is called when a single file or directory cannot be read.
// The walk continues after it returns.
type ErrorFunc func(name string, err error)

// Option configures a walk.
type Option func(*walker)

// WithErrorFunc overrides how per-file errors are reported.
// By default they are logged at warn level.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(w *walker) {
		w.onError = fn
	}
}

type walker struct {
	fsys    fs.FS
	resolve func(name string) (string, error)
	onError ErrorFunc
	visited map[string]struct{}
}

func newWalker(fsys fs.FS, opts []Option) *walker {
	w := &walker{
		fsys:    fsys,
		visited: make(map[string]struct{}),
		onError: func(name string, err error) {
			slog.Warn("could not read file", "name", name, "error", err)
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir walks a real filesystem directory. Symbolic links are followed, but each
// resolved target directory is visited at most once.
func Dir(ctx context.Context, root string, fn VisitFunc, opts ...Option) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	w := newWalker(os.DirFS(root), opts)
	w.resolve = func(name string) (string, error) {
		return filepath.EvalSymlinks(filepath.Join(root, filepath.FromSlash(name)))
	}
	return w.walk(ctx, fn)
}

// Zip mounts a zip-format archive (jar, war, zip) and walks it as a tree rooted at "/".
// The archive handle is released before Zip returns.
func Zip(ctx context.Context, archive string, fn VisitFunc, opts ...Option) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archive, err)
	}
	defer zr.Close()

	return FS(ctx, zr, fn, opts...)
}

// FS walks an arbitrary fs.FS. Symbolic links are not resolved.
func FS(ctx context.Context, fsys fs.FS, fn VisitFunc, opts ...Option) error {
	return newWalker(fsys, opts).walk(ctx, fn)
}

func (w *walker) walk(ctx context.Context, fn VisitFunc) error {
	if !w.enter(".") {
		return nil
	}
	return w.walkDir(ctx, ".", fn)
}

// enter records a directory as visited and reports whether it was new.
func (w *walker) enter(name string) bool {
	key := name
	if w.resolve != nil {
		resolved, err := w.resolve(name)
		if err != nil {
			w.onError(displayName(name), err)
			return false
		}
		key = resolved
	}
	if _, ok := w.visited[key]; ok {
		return false
	}
	w.visited[key] = struct{}{}
	return true
}

func (w *walker) walkDir(ctx context.Context, dir string, fn VisitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := fs.ReadDir(w.fsys, dir)
	if err != nil {
		w.onError(displayName(dir), err)
		return nil
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := path.Join(dir, e.Name())

		// fs.Stat follows symbolic links on os.DirFS.
		info, err := fs.Stat(w.fsys, name)
		if err != nil {
			w.onError(displayName(name), err)
			continue
		}

		switch {
		case info.IsDir():
			if !w.enter(name) {
				continue
			}
			if err := w.walkDir(ctx, name, fn); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := fn(File{Name: displayName(name), Size: info.Size()}); err != nil {
				return err
			}
		}
	}
	return nil
}

// displayName converts an fs.FS path into the "/"-prefixed form reported to callers.
func displayName(name string) string {
	if name == "." {
		return "/"
	}
	return "/" + name
}
