// Package testutil builds jar, war and tarball fixtures for tests.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// T is the part of testing.TB the builders need. *testing.T, *rapid.T and
// GinkgoT() all satisfy it.
type T interface {
	require.TestingT
	Helper()
}

// Files maps an archive-relative name to the size of its generated content.
type Files map[string]int

// Classes returns n class files named <pkg>/C<i>.class, each of the given size.
func Classes(pkg string, n, size int) Files {
	files := make(Files, n)
	for i := range n {
		files[fmt.Sprintf("%s/C%d.class", pkg, i)] = size
	}
	return files
}

// Merge returns the union of several file sets; later sets win on conflict.
func Merge(sets ...Files) Files {
	out := make(Files)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// JarBytes builds an in-memory jar containing files plus a manifest.
// Extra manifest attributes are written in the main section.
func JarBytes(tb T, files Files, manifest ...string) []byte {
	tb.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if len(manifest) > 0 {
		w, err := zw.Create("META-INF/MANIFEST.MF")
		require.NoError(tb, err)
		_, err = io.WriteString(w, "Manifest-Version: 1.0\r\n"+strings.Join(manifest, "\r\n")+"\r\n\r\n")
		require.NoError(tb, err)
	}

	for _, name := range sortedNames(files) {
		w, err := zw.Create(name)
		require.NoError(tb, err)
		_, err = w.Write(content(files[name]))
		require.NoError(tb, err)
	}
	require.NoError(tb, zw.Close())
	return buf.Bytes()
}

// WriteJar writes a jar at path, creating parent directories.
func WriteJar(tb T, path string, files Files, manifest ...string) string {
	tb.Helper()
	writeFile(tb, path, JarBytes(tb, files, manifest...))
	return path
}

// War describes the content of a web-application archive.
type War struct {
	// Classes go under WEB-INF/classes/.
	Classes Files
	// Libs maps a jar file name under WEB-INF/lib/ to its content.
	Libs map[string]Files
	// Other files at arbitrary paths.
	Other Files
}

// WriteWar writes a war archive at path.
func WriteWar(tb T, path string, war War) string {
	tb.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	add := func(name string, data []byte) {
		w, err := zw.Create(name)
		require.NoError(tb, err)
		_, err = w.Write(data)
		require.NoError(tb, err)
	}

	_, err := zw.Create("WEB-INF/")
	require.NoError(tb, err)
	for _, name := range sortedNames(war.Classes) {
		add("WEB-INF/classes/"+name, content(war.Classes[name]))
	}
	libNames := make([]string, 0, len(war.Libs))
	for name := range war.Libs {
		libNames = append(libNames, name)
	}
	sort.Strings(libNames)
	for _, name := range libNames {
		add("WEB-INF/lib/"+name, JarBytes(tb, war.Libs[name]))
	}
	for _, name := range sortedNames(war.Other) {
		add(name, content(war.Other[name]))
	}

	require.NoError(tb, zw.Close())
	writeFile(tb, path, buf.Bytes())
	return path
}

// Compression selects the tarball codec.
type Compression string

const (
	Gzip Compression = "gz"
	XZ   Compression = "xz"
)

// WriteTarball writes a compressed tar archive whose entries are the given
// jars (name -> content) at path.
func WriteTarball(tb T, path string, c Compression, jars map[string]Files) string {
	tb.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)

	names := make([]string, 0, len(jars))
	for name := range jars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data := JarBytes(tb, jars[name])
		require.NoError(tb, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write(data)
		require.NoError(tb, err)
	}
	require.NoError(tb, tw.Close())

	var out bytes.Buffer
	switch c {
	case XZ:
		xw, err := xz.NewWriter(&out)
		require.NoError(tb, err)
		_, err = xw.Write(tarBuf.Bytes())
		require.NoError(tb, err)
		require.NoError(tb, xw.Close())
	default:
		gw := gzip.NewWriter(&out)
		_, err := gw.Write(tarBuf.Bytes())
		require.NoError(tb, err)
		require.NoError(tb, gw.Close())
	}

	writeFile(tb, path, out.Bytes())
	return path
}

func writeFile(tb T, path string, data []byte) {
	tb.Helper()
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(tb, os.WriteFile(path, data, 0644))
}

func content(size int) []byte {
	return bytes.Repeat([]byte{'x'}, size)
}

func sortedNames(files Files) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
