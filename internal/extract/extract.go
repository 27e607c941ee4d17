// Package extract stages web-application and distribution archives into a
// directory so their classpath entries can be collected.
package extract

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// ArchiveType represents an archive format the extractor can stage.
type ArchiveType string

const (
	// ArchiveTypeWar represents a web-application archive (.war).
	ArchiveTypeWar ArchiveType = "war"

	// ArchiveTypeZip represents a ZIP distribution (.zip).
	ArchiveTypeZip ArchiveType = "zip"

	// ArchiveTypeTarGz represents a gzipped tar distribution (.tar.gz, .tgz).
	ArchiveTypeTarGz ArchiveType = "tar.gz"

	// ArchiveTypeTarXz represents an xz-compressed tar distribution (.tar.xz, .txz).
	ArchiveTypeTarXz ArchiveType = "tar.xz"
)

// DetectArchiveType detects the archive type from a filename.
// Returns empty string if the type cannot be detected.
func DetectArchiveType(filename string) ArchiveType {
	lower := strings.ToLower(filepath.Base(filename))

	// Compound extensions first.
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return ArchiveTypeTarGz
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return ArchiveTypeTarXz
	case strings.HasSuffix(lower, ".war"):
		return ArchiveTypeWar
	case strings.HasSuffix(lower, ".zip"):
		return ArchiveTypeZip
	}
	return ""
}

// ProgressFunc is called with the archive-relative name of each regular file
// before it is written.
type ProgressFunc func(name string)

// Extractor defines the interface for extracting archives.
type Extractor interface {
	// Extract extracts an archive from the reader to the destination directory.
	// For tar: accepts any io.Reader (true streaming)
	// For zip and war: requires io.ReaderAt (typically *os.File)
	Extract(ctx context.Context, r io.Reader, destDir string, progress ProgressFunc) error
}

// NewExtractor creates an Extractor for the given archive type.
func NewExtractor(archiveType ArchiveType) (Extractor, error) {
	switch archiveType {
	case ArchiveTypeWar, ArchiveTypeZip:
		return &zipExtractor{}, nil
	case ArchiveTypeTarGz:
		return &tarGzExtractor{}, nil
	case ArchiveTypeTarXz:
		return &tarXzExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported archive type: %q", archiveType)
	}
}

var (
	_ Extractor = (*tarGzExtractor)(nil)
	_ Extractor = (*tarXzExtractor)(nil)
	_ Extractor = (*zipExtractor)(nil)
)

// File extracts the archive at path into destDir, choosing the extractor from
// the file name.
func File(ctx context.Context, path, destDir string, progress ProgressFunc) error {
	ex, err := NewExtractor(DetectArchiveType(path))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	return ex.Extract(ctx, f, destDir, progress)
}

// tarGzExtractor implements Extractor for tar.gz archives.
type tarGzExtractor struct{}

// Extract extracts a tar.gz archive from the reader to the destination directory.
func (e *tarGzExtractor) Extract(ctx context.Context, r io.Reader, destDir string, progress ProgressFunc) error {
	slog.Debug("extracting tar.gz archive", "dest", destDir)

	gr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	return extractTar(ctx, gr, destDir, progress)
}

// tarXzExtractor implements Extractor for tar.xz archives.
type tarXzExtractor struct{}

// Extract extracts a tar.xz archive from the reader to the destination directory.
func (e *tarXzExtractor) Extract(ctx context.Context, r io.Reader, destDir string, progress ProgressFunc) error {
	slog.Debug("extracting tar.xz archive", "dest", destDir)

	xr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	return extractTar(ctx, xr, destDir, progress)
}

func extractTar(ctx context.Context, r io.Reader, destDir string, progress ProgressFunc) error {
	tr := tar.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		target := filepath.Join(destDir, hdr.Name)
		if !isInsideDir(destDir, target) {
			return fmt.Errorf("invalid file path: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			notify(progress, hdr.Name)
			if err := extractFile(tr, target, filePerm(os.FileMode(hdr.Mode))); err != nil {
				return err
			}
		case tar.TypeSymlink:
			linkTarget := filepath.Join(filepath.Dir(target), hdr.Linkname)
			if filepath.IsAbs(hdr.Linkname) || !isInsideDir(destDir, linkTarget) {
				return fmt.Errorf("invalid symlink target: %s -> %s", hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
		default:
			slog.Debug("skipping tar entry", "name", hdr.Name, "type", hdr.Typeflag)
		}
	}

	return nil
}

// zipExtractor implements Extractor for zip-format archives (war and zip).
type zipExtractor struct{}

// Extract extracts a zip archive from the reader to the destination directory.
// The reader must implement io.ReaderAt (e.g., *os.File or *bytes.Reader).
func (e *zipExtractor) Extract(ctx context.Context, r io.Reader, destDir string, progress ProgressFunc) error {
	slog.Debug("extracting zip archive", "dest", destDir)

	ra, ok := r.(io.ReaderAt)
	if !ok {
		return fmt.Errorf("zip extraction requires io.ReaderAt, got %T", r)
	}

	size, err := readerSize(r)
	if err != nil {
		return fmt.Errorf("failed to get reader size: %w", err)
	}

	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return fmt.Errorf("failed to create zip reader: %w", err)
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		// macOS zip tools inject a metadata tree.
		if isOSMetadataPath(f.Name) {
			continue
		}

		target := filepath.Join(destDir, f.Name)
		if !isInsideDir(destDir, target) {
			return fmt.Errorf("invalid file path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		notify(progress, f.Name)
		if err := extractZipFile(f, target); err != nil {
			return err
		}
	}

	slog.Debug("zip archive extracted", "dest", destDir, "files", len(zr.File))
	return nil
}

func extractZipFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
	}
	defer rc.Close()

	return extractFile(rc, target, filePerm(f.Mode()))
}

// filePerm keeps the permission bits of an archive member. Members without
// any are written readable so the walker can open them.
func filePerm(mode os.FileMode) os.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm | 0400
	}
	return 0644
}

// readerSize returns the size of the reader.
func readerSize(r io.Reader) (int64, error) {
	switch v := r.(type) {
	case *os.File:
		info, err := v.Stat()
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	case interface{ Size() int64 }:
		return v.Size(), nil
	case interface{ Len() int }:
		return int64(v.Len()), nil
	default:
		return 0, fmt.Errorf("cannot determine size for %T", r)
	}
}

// extractFile writes a single archive member to target.
func extractFile(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func notify(progress ProgressFunc, name string) {
	if progress != nil {
		progress(name)
	}
}

// isOSMetadataPath returns true if the archive entry path belongs to an
// OS-specific metadata tree that should be skipped during extraction.
func isOSMetadataPath(name string) bool {
	return name == "__MACOSX" || name == "__MACOSX/" || strings.HasPrefix(name, "__MACOSX/")
}

// isInsideDir checks if target path is inside the base directory.
func isInsideDir(baseDir, target string) bool {
	rel, err := filepath.Rel(baseDir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
