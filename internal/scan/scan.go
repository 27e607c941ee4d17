// Package scan drives a jaroverlap run: it classifies the target, stages
// archives into the working directory, collects classpath entries and
// indexes them into a classpath.Index.
package scan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/terassyi/jaroverlap/internal/classpath"
	jerrors "github.com/terassyi/jaroverlap/internal/errors"
	"github.com/terassyi/jaroverlap/internal/extract"
	"github.com/terassyi/jaroverlap/internal/walk"
	"github.com/terassyi/jaroverlap/internal/workdir"
)

// Mode is how a target is scanned.
type Mode int

const (
	// ModeDir scans every jar beneath a directory.
	ModeDir Mode = iota
	// ModeWar extracts a web-application archive and scans WEB-INF.
	ModeWar
	// ModeDist extracts a distribution archive and scans every jar in it.
	ModeDist
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeDir:
		return "dir"
	case ModeWar:
		return "war"
	case ModeDist:
		return "dist"
	default:
		return "unknown"
	}
}

const (
	webInf     = "WEB-INF"
	jarSuffix  = ".jar"
	classesDir = "classes"
	libDir     = "lib"
)

// Classify decides how target is scanned. Anything that is neither a
// directory nor a supported archive is rejected with an *errors.UsageError.
func Classify(target string) (Mode, error) {
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return ModeDir, nil
	}

	switch extract.DetectArchiveType(target) {
	case extract.ArchiveTypeWar:
		return ModeWar, nil
	case extract.ArchiveTypeZip, extract.ArchiveTypeTarGz, extract.ArchiveTypeTarXz:
		return ModeDist, nil
	default:
		return 0, jerrors.NewUnsupportedInputError(target)
	}
}

// Options configures Run.
type Options struct {
	// Workdir receives extracted archives. It is wiped first.
	Workdir string
	// Parallelism bounds concurrent entry indexing.
	Parallelism int
	// ManifestClasspath adds jars named by Class-Path manifest attributes.
	ManifestClasspath bool
	// EventHandler receives progress events. May be nil.
	EventHandler EventHandler
}

// Result is the outcome of a scan.
type Result struct {
	Target string
	Mode   Mode
	// Root is the directory entries were collected from: the target itself
	// or the working directory.
	Root  string
	Index *classpath.Index
}

// Scanner runs scans with fixed options.
type Scanner struct {
	opts Options
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	if opts.Parallelism <= 0 {
		opts.Parallelism = classpath.DefaultParallelism
	}
	if opts.Workdir == "" {
		opts.Workdir = workdir.Default()
	}
	return &Scanner{opts: opts}
}

// Run scans target. It is shorthand for New(opts).Run(ctx, target).
func Run(ctx context.Context, target string, opts Options) (*Result, error) {
	return New(opts).Run(ctx, target)
}

// Run classifies target, stages it if needed and indexes its classpath.
func (s *Scanner) Run(ctx context.Context, target string) (*Result, error) {
	mode, err := Classify(target)
	if err != nil {
		return nil, err
	}
	slog.Debug("scanning target", "target", target, "mode", mode)

	res := &Result{Target: target, Mode: mode, Root: target}

	var entries []*classpath.Entry
	switch mode {
	case ModeDir:
		entries, err = s.collectJars(ctx, target)
		if err != nil {
			return nil, jerrors.NewScanError(target, err)
		}

	case ModeWar, ModeDist:
		dir, err := s.stage(ctx, target, mode)
		if err != nil {
			return nil, err
		}
		// The staged tree must stay in place until every entry is indexed.
		defer func() {
			if err := dir.Unlock(); err != nil {
				slog.Warn("failed to release working directory lock", "path", dir.Path(), "error", err)
			}
		}()
		res.Root = dir.Path()

		if mode == ModeWar {
			entries, err = s.collectWar(ctx, dir.Path())
		} else {
			entries, err = s.collectJars(ctx, dir.Path())
		}
		if err != nil {
			return nil, jerrors.NewScanError(dir.Path(), err)
		}
	}

	if s.opts.ManifestClasspath {
		s.emit(Event{Type: EventStage, Message: StageManifest})
		entries = classpath.ExpandManifestClasspath(entries)
	}

	s.emit(Event{Type: EventEntriesCollected, Total: len(entries)})
	s.emit(Event{Type: EventStage, Message: StageIndex})

	ix, err := classpath.Aggregate(ctx, entries,
		classpath.WithParallelism(s.opts.Parallelism),
		classpath.WithEventHandler(s.forward),
	)
	if err != nil {
		return nil, err
	}
	res.Index = ix
	return res, nil
}

// stage locks and wipes the working directory and extracts target into it.
func (s *Scanner) stage(ctx context.Context, target string, mode Mode) (*workdir.Dir, error) {
	s.emit(Event{Type: EventStage, Message: StageWipeWorkdir})
	dir, err := workdir.Prepare(s.opts.Workdir)
	if err != nil {
		return nil, err
	}

	msg := StageUnzipWar
	if mode == ModeDist {
		msg = StageUnpackDist
	}
	s.emit(Event{Type: EventStage, Message: msg})

	var member string
	err = extract.File(ctx, target, dir.Path(), func(name string) {
		member = name
		s.emit(Event{Type: EventExtract, Name: name})
	})
	if err != nil {
		_ = dir.Unlock()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, jerrors.NewExtractError(target, err).WithMember(member)
	}
	return dir, nil
}

// collectWar returns the WEB-INF/classes folder, if present, followed by
// every jar under WEB-INF/lib.
func (s *Scanner) collectWar(ctx context.Context, root string) ([]*classpath.Entry, error) {
	s.emit(Event{Type: EventStage, Message: StageCollect})

	var entries []*classpath.Entry
	classes := filepath.Join(root, webInf, classesDir)
	if info, err := os.Stat(classes); err == nil && info.IsDir() {
		entries = append(entries, classpath.NewFolder(classes))
	}

	lib := filepath.Join(root, webInf, libDir)
	if info, err := os.Stat(lib); err != nil || !info.IsDir() {
		slog.Debug("war has no library directory", "path", lib)
		return entries, nil
	}
	jars, err := findJars(ctx, lib)
	if err != nil {
		return nil, err
	}
	return append(entries, jars...), nil
}

// collectJars returns every jar beneath root.
func (s *Scanner) collectJars(ctx context.Context, root string) ([]*classpath.Entry, error) {
	s.emit(Event{Type: EventStage, Message: StageCollect})
	return findJars(ctx, root)
}

func findJars(ctx context.Context, root string) ([]*classpath.Entry, error) {
	var entries []*classpath.Entry
	err := walk.Dir(ctx, root, func(f walk.File) error {
		if !strings.HasSuffix(strings.ToLower(f.Name), jarSuffix) {
			return nil
		}
		path := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(f.Name, "/")))
		slog.Debug("adding jar", "path", path)
		entries = append(entries, classpath.NewJar(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// forward translates indexing events into scan events.
func (s *Scanner) forward(ev classpath.Event) {
	switch ev.Type {
	case classpath.EventEntryStart:
		s.emit(Event{Type: EventEntryStart, Entry: ev.Entry})
	case classpath.EventEntryEnd:
		s.emit(Event{Type: EventEntryEnd, Entry: ev.Entry, Resources: ev.Resources})
	}
}

func (s *Scanner) emit(ev Event) {
	if s.opts.EventHandler != nil {
		s.opts.EventHandler(ev)
	}
}
