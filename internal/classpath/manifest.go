package classpath

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ManifestPath is the location of the jar manifest.
const ManifestPath = "META-INF/MANIFEST.MF"

// ReadManifest returns the main-section attributes of a jar's manifest.
// A jar without a manifest yields an empty map.
func ReadManifest(jarPath string) (map[string]string, error) {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open jar %s: %w", jarPath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.EqualFold(f.Name, ManifestPath) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open manifest in %s: %w", jarPath, err)
		}
		defer rc.Close()
		return ParseManifest(rc)
	}
	return map[string]string{}, nil
}

// ParseManifest parses the main section of a manifest: "Name: Value" lines,
// where a line starting with a single space continues the previous value.
// Parsing stops at the first blank line.
func ParseManifest(r io.Reader) (map[string]string, error) {
	attrs := make(map[string]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var last string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, " ") {
			if last != "" {
				attrs[last] += line[1:]
			}
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		last = strings.TrimSpace(name)
		attrs[last] = strings.TrimPrefix(value, " ")
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return attrs, nil
}

// ManifestClasspath returns the entries named by the Class-Path attribute of a
// jar entry's manifest. Relative URLs are resolved against the jar's directory;
// URLs ending in "/" are class folders. Non-file URLs are skipped.
func ManifestClasspath(e *Entry) ([]*Entry, error) {
	if !e.IsJar() {
		return nil, nil
	}

	attrs, err := ReadManifest(e.Path())
	if err != nil {
		return nil, err
	}

	var out []*Entry
	for _, raw := range strings.Fields(attrs["Class-Path"]) {
		u, err := url.Parse(raw)
		if err != nil {
			slog.Debug("skipping malformed manifest classpath url", "jar", e.JarName(), "url", raw, "error", err)
			continue
		}
		if u.Scheme != "" && u.Scheme != "file" {
			slog.Debug("skipping non-file manifest classpath url", "jar", e.JarName(), "url", raw)
			continue
		}

		p := filepath.FromSlash(u.Path)
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(e.Path()), p)
		}
		if strings.HasSuffix(u.Path, "/") {
			out = append(out, NewFolder(p))
		} else {
			out = append(out, NewJar(p))
		}
	}
	return out, nil
}

// ExpandManifestClasspath follows Class-Path manifest references transitively
// and returns entries followed by every newly discovered entry that exists on
// disk. Errors reading a manifest are logged and skipped.
func ExpandManifestClasspath(entries []*Entry) []*Entry {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.URL()] = struct{}{}
	}

	out := append([]*Entry(nil), entries...)
	queue := append([]*Entry(nil), entries...)
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		found, err := ManifestClasspath(e)
		if err != nil {
			slog.Warn("problem scanning manifest classpath", "jar", e.URL(), "error", err)
			continue
		}
		for _, m := range found {
			if _, ok := seen[m.URL()]; ok {
				continue
			}
			seen[m.URL()] = struct{}{}
			if _, err := os.Stat(m.Path()); err != nil {
				slog.Debug("manifest classpath entry not found", "from", e.JarName(), "path", m.Path())
				continue
			}
			slog.Debug("adding manifest classpath entry", "from", e.JarName(), "url", m.URL())
			out = append(out, m)
			queue = append(queue, m)
		}
	}
	return out
}
