package coordinate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		input       string
		wantID      string
		wantVersion string
	}{
		{name: "simple", input: "lib-1.2.0.jar", wantID: "lib", wantVersion: "1.2.0"},
		{name: "multi token artifact", input: "commons-lang3-3.12.0.jar", wantID: "commons-lang3", wantVersion: "3.12.0"},
		{name: "qualifier after version", input: "foo-10.0.2-SNAPSHOT.jar", wantID: "foo", wantVersion: "10.0.2"},
		{name: "scala suffix and classifier", input: "geomesa-hbase-gs-plugin_2.11-2.3.2-shaded.jar", wantID: "geomesa-hbase-gs-plugin_2.11", wantVersion: "2.3.2"},
		{name: "first semver token wins", input: "tool-1.0.0-2.0.0.jar", wantID: "tool", wantVersion: "1.0.0"},
		{name: "build metadata", input: "core-2.0.0+build.7.jar", wantID: "core", wantVersion: "2.0.0+build.7"},
		{name: "two part version is not semver", input: "guava-31.1.jar", wantID: "guava-31.1", wantVersion: ""},
		{name: "no version", input: "vendor.jar", wantID: "vendor", wantVersion: ""},
		{name: "underscore name", input: "jai_core.jar", wantID: "jai_core", wantVersion: ""},
		{name: "version only", input: "1.0.0.jar", wantID: "1.0.0", wantVersion: "1.0.0"},
		{name: "full path", input: "/opt/app/WEB-INF/lib/slf4j-api-1.7.36.jar", wantID: "slf4j-api", wantVersion: "1.7.36"},
		{name: "windows path", input: `C:\app\lib\slf4j-api-1.7.36.jar`, wantID: "slf4j-api", wantVersion: "1.7.36"},
		{name: "v prefix is not strict semver", input: "tool-v1.2.3.jar", wantID: "tool-v1.2.3", wantVersion: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Parse(tt.input)
			assert.Equal(t, tt.wantID, c.ArtifactID)
			assert.Equal(t, tt.wantVersion, c.VersionString())
			assert.Equal(t, tt.wantVersion != "", c.HasVersion())
		})
	}
}

func TestParse_FileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "lib-1.2.0.jar", Parse("/a/b/lib-1.2.0.jar").FileName)
}

func TestSameArtifact(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "equal ids", a: "lib-1.2.0.jar", b: "lib-1.3.0.jar", want: true},
		{name: "prefix", a: "jai_core.jar", b: "jai_core-1.1.3.jar", want: true},
		{name: "prefix reversed", a: "netty-4.1.0.jar", b: "netty-all-4.1.0.jar", want: true},
		{name: "different", a: "guice-5.0.0.jar", b: "jackson-2.15.0.jar", want: false},
		{name: "unversioned copies", a: "vendor.jar", b: "vendor.jar", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SameArtifact(Parse(tt.a), Parse(tt.b)))
		})
	}

	t.Run("empty id never matches", func(t *testing.T) {
		t.Parallel()
		assert.False(t, SameArtifact(Coordinate{}, Parse("lib-1.0.0.jar")))
	})
}

func TestOlder(t *testing.T) {
	t.Parallel()

	t.Run("first is older", func(t *testing.T) {
		t.Parallel()
		older, err := Older(Parse("lib-1.2.0.jar"), Parse("lib-1.3.0.jar"))
		require.NoError(t, err)
		assert.Equal(t, "lib-1.2.0.jar", older.FileName)
	})

	t.Run("second is older", func(t *testing.T) {
		t.Parallel()
		older, err := Older(Parse("lib-1.10.0.jar"), Parse("lib-1.9.0.jar"))
		require.NoError(t, err)
		assert.Equal(t, "lib-1.9.0.jar", older.FileName)
	})

	t.Run("qualifier is not part of the version", func(t *testing.T) {
		t.Parallel()
		older, err := Older(Parse("lib-2.0.0.jar"), Parse("lib-2.0.0-rc.1.jar"))
		require.NoError(t, err)
		// "2.0.0-rc.1" splits on "-", so the second file is also 2.0.0.
		assert.Equal(t, "lib-2.0.0-rc.1.jar", older.FileName)
	})

	t.Run("equal returns second", func(t *testing.T) {
		t.Parallel()
		older, err := Older(Parse("/x/a-1.0.0.jar"), Parse("/y/a-1.0.0.jar"))
		require.NoError(t, err)
		assert.Equal(t, "a-1.0.0.jar", older.FileName)
	})

	t.Run("missing version", func(t *testing.T) {
		t.Parallel()
		_, err := Older(Parse("vendor.jar"), Parse("vendor-1.0.0.jar"))
		assert.ErrorIs(t, err, ErrNoVersion)
	})
}
