package classpath

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terassyi/jaroverlap/internal/testutil"
)

func TestMain(m *testing.M) {
	// Broken fixtures log warnings; keep test output clean.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

func TestFileURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path string
		dir  bool
		want string
	}{
		{name: "jar", path: "/opt/lib/a.jar", want: "file:///opt/lib/a.jar"},
		{name: "folder gets trailing slash", path: "/opt/WEB-INF/classes", dir: true, want: "file:///opt/WEB-INF/classes/"},
		{name: "folder already slashed", path: "/opt/classes/", dir: true, want: "file:///opt/classes/"},
		{name: "drive letter", path: "C:/lib/a.jar", want: "file:///C:/lib/a.jar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FileURL(tt.path, tt.dir))
		})
	}
}

func TestNewJar(t *testing.T) {
	t.Parallel()
	e := NewJar("/opt/lib/commons-io-2.11.0.jar")

	assert.True(t, e.IsJar())
	assert.False(t, e.IsClassFolder())
	assert.Equal(t, KindJar, e.Kind())
	assert.Equal(t, "file:///opt/lib/commons-io-2.11.0.jar", e.URL())
	assert.Equal(t, "commons-io-2.11.0.jar", e.JarName())
	assert.Equal(t, "commons-io-2.11.0.jar", e.DisplayName())
	assert.Equal(t, "commons-io", e.Coordinate().ArtifactID)
	assert.Equal(t, "2.11.0", e.Coordinate().VersionString())
	assert.False(t, e.Indexed())
	assert.Nil(t, e.ResourceVersions())
}

func TestNewFolder(t *testing.T) {
	t.Parallel()
	e := NewFolder("/opt/app/WEB-INF/classes")

	assert.True(t, e.IsClassFolder())
	assert.Equal(t, "", e.JarName())
	assert.Equal(t, "file:///opt/app/WEB-INF/classes/", e.URL())
	assert.Equal(t, e.URL(), e.DisplayName())
	assert.Equal(t, "", e.Coordinate().ArtifactID)
}

func TestEntry_IndexJar(t *testing.T) {
	t.Parallel()
	jar := testutil.WriteJar(t, filepath.Join(t.TempDir(), "a-1.0.0.jar"), testutil.Files{
		"org/a/A.class":        10,
		"org/a/B.class":        20,
		"org/a/res.properties": 5,
	})
	e := NewJar(jar)

	versions, err := e.Index(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 3)

	got := map[string]int64{}
	for _, v := range versions {
		assert.Same(t, e, v.Entry)
		got[v.Name] = v.Size
	}
	assert.Equal(t, map[string]int64{
		"/org/a/A.class":        10,
		"/org/a/B.class":        20,
		"/org/a/res.properties": 5,
	}, got)
	assert.Equal(t, 2, e.ClassCount())
	assert.True(t, e.Indexed())
}

func TestEntry_IndexFolder(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "classes")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "org", "a"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "org", "a", "A.class"), []byte("abc"), 0644))

	e := NewFolder(root)
	versions, err := e.Index(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "/org/a/A.class", versions[0].Name)
	assert.Equal(t, int64(3), versions[0].Size)
	assert.Equal(t, 1, e.ClassCount())
}

func TestEntry_IndexIsMemoized(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	jar := testutil.WriteJar(t, filepath.Join(dir, "a.jar"), testutil.Classes("p", 3, 1))
	e := NewJar(jar)

	first, err := e.Index(context.Background())
	require.NoError(t, err)

	// Rewriting the archive must not change the memoized inventory.
	testutil.WriteJar(t, jar, testutil.Classes("q", 7, 1))
	second, err := e.Index(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 3)
}

func TestEntry_IndexUnreadableJarIsEmpty(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(p, []byte("not a zip"), 0644))

	e := NewJar(p)
	versions, err := e.Index(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
	assert.True(t, e.Indexed())
	assert.Equal(t, 0, e.ClassCount())
}

func TestEntry_IndexMissingJarIsEmpty(t *testing.T) {
	t.Parallel()
	e := NewJar(filepath.Join(t.TempDir(), "missing.jar"))
	versions, err := e.Index(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestEntry_IndexCanceledIsNotMemoized(t *testing.T) {
	t.Parallel()
	jar := testutil.WriteJar(t, filepath.Join(t.TempDir(), "a.jar"), testutil.Classes("p", 2, 1))
	e := NewJar(jar)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Index(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, e.Indexed())

	versions, err := e.Index(context.Background())
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestResource_Predicates(t *testing.T) {
	t.Parallel()
	a, b, c := NewJar("/a.jar"), NewJar("/b.jar"), NewJar("/c.jar")

	single := &Resource{Name: "/X.class", Versions: []ResourceVersion{{Entry: a, Name: "/X.class", Size: 1}}}
	assert.False(t, single.HasDuplicates())
	assert.False(t, single.HasSizeDifferingDuplicates())

	same := &Resource{Name: "/X.class", Versions: []ResourceVersion{
		{Entry: a, Name: "/X.class", Size: 1000},
		{Entry: b, Name: "/X.class", Size: 1000},
	}}
	assert.True(t, same.HasDuplicates())
	assert.False(t, same.HasSizeDifferingDuplicates())

	differ := &Resource{Name: "/X.class", Versions: []ResourceVersion{
		{Entry: a, Name: "/X.class", Size: 1000},
		{Entry: b, Name: "/X.class", Size: 1000},
		{Entry: c, Name: "/X.class", Size: 1200},
	}}
	assert.True(t, differ.HasSizeDifferingDuplicates())
	assert.Equal(t, []*Entry{a, b, c}, differ.Entries())
}
