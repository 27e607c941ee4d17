// Package classpath models classpath entries (class folders and jar archives),
// indexes the resources they contain, and aggregates them by resource name.
package classpath

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/terassyi/jaroverlap/internal/coordinate"
	"github.com/terassyi/jaroverlap/internal/walk"
)

// ClassSuffix identifies compiled class files.
const ClassSuffix = ".class"

// Kind distinguishes the two shapes of classpath entry.
type Kind string

const (
	// KindJar is a jar-like zip archive.
	KindJar Kind = "jar"
	// KindFolder is a directory of class files.
	KindFolder Kind = "folder"
)

// Entry is one unit of the classpath. Two entries are the same entry when their
// URLs are equal.
type Entry struct {
	url   string
	path  string
	kind  Kind
	coord coordinate.Coordinate

	mu         sync.Mutex
	indexed    bool
	versions   []ResourceVersion
	classCount int
}

// NewJar creates an entry for a jar-like archive at path.
func NewJar(path string) *Entry {
	return newEntry(path, KindJar)
}

// NewFolder creates an entry for a class directory at path.
func NewFolder(path string) *Entry {
	return newEntry(path, KindFolder)
}

func newEntry(path string, kind Kind) *Entry {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	e := &Entry{
		url:  FileURL(path, kind == KindFolder),
		path: path,
		kind: kind,
	}
	if kind == KindJar {
		e.coord = coordinate.Parse(filepath.Base(path))
	}
	return e
}

// FileURL converts a filesystem path to the normalized "file:///" URL used as
// entry identity. Directory URLs end with "/".
func FileURL(path string, dir bool) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if dir && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return "file://" + p
}

// URL returns the normalized origin URL.
func (e *Entry) URL() string { return e.url }

// Path returns the filesystem path of the entry.
func (e *Entry) Path() string { return e.path }

// Kind returns whether the entry is a jar or a class folder.
func (e *Entry) Kind() Kind { return e.kind }

// IsJar reports whether the entry is an archive.
func (e *Entry) IsJar() bool { return e.kind == KindJar }

// IsClassFolder reports whether the entry is a directory.
func (e *Entry) IsClassFolder() bool { return e.kind == KindFolder }

// JarName returns the archive file name, or "" for class folders.
func (e *Entry) JarName() string {
	if e.kind != KindJar {
		return ""
	}
	return filepath.Base(e.path)
}

// DisplayName is the jar file name for archives and the URL for folders.
func (e *Entry) DisplayName() string {
	if e.kind == KindJar {
		return e.JarName()
	}
	return e.url
}

// Coordinate returns the artifact id and version parsed from the jar name.
// It is the zero Coordinate for class folders.
func (e *Entry) Coordinate() coordinate.Coordinate { return e.coord }

// String implements fmt.Stringer.
func (e *Entry) String() string { return e.url }

// Index enumerates the resources of the entry on first call and memoizes the
// result; later calls return the memoized list.
//
// Failure to open or walk the entry is not an error: it is logged and the entry
// gets an empty inventory. Only cancellation of ctx is returned, in which case
// nothing is memoized.
func (e *Entry) Index(ctx context.Context) ([]ResourceVersion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexed {
		return e.versions, nil
	}

	var versions []ResourceVersion
	seen := make(map[string]struct{})
	visit := func(f walk.File) error {
		if _, ok := seen[f.Name]; ok {
			return nil
		}
		seen[f.Name] = struct{}{}
		versions = append(versions, ResourceVersion{Entry: e, Name: f.Name, Size: f.Size})
		return nil
	}

	var err error
	switch e.kind {
	case KindFolder:
		slog.Debug("scanning class folder", "url", e.url)
		err = walk.Dir(ctx, e.path, visit)
	default:
		slog.Debug("scanning jar", "url", e.url)
		err = walk.Zip(ctx, e.path, visit)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		slog.Warn("could not scan classpath entry", "url", e.url, "error", err)
		versions = nil
	}

	classes := 0
	for _, v := range versions {
		if v.IsClass() {
			classes++
		}
	}

	e.versions = versions
	e.classCount = classes
	e.indexed = true
	return e.versions, nil
}

// Indexed reports whether the inventory has been materialized.
func (e *Entry) Indexed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexed
}

// ResourceVersions returns the memoized inventory, or nil before Index.
func (e *Entry) ResourceVersions() []ResourceVersion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.versions
}

// ClassCount returns the number of class files in the memoized inventory.
func (e *Entry) ClassCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classCount
}
