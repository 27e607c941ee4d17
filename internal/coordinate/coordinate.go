// Package coordinate derives an artifact id and a semantic version from an
// archive file name such as "commons-lang3-3.12.0.jar".
package coordinate

import (
	"errors"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrNoVersion is returned by Older when a coordinate has no parseable version.
var ErrNoVersion = errors.New("version could not be determined")

// Coordinate is the logical identity of an archive.
type Coordinate struct {
	// FileName is the archive file name the coordinate was parsed from.
	FileName string
	// ArtifactID is the name part before the version, or the whole stem
	// when no version token was found.
	ArtifactID string
	// Version is nil when no token of the name is a semantic version.
	Version *semver.Version
}

// Parse splits an archive file name of the form
// <artifact-id>-<version>[-<qualifier>].<ext> into its coordinate.
//
// The name is split on "-" and the first token that is a strict
// MAJOR.MINOR.PATCH semantic version becomes the version. Everything before it
// is the artifact id. Qualifiers after the version are ignored.
func Parse(fileName string) Coordinate {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))

	c := Coordinate{FileName: base, ArtifactID: stem}
	if stem == "" {
		return c
	}

	tokens := strings.Split(stem, "-")
	for i, tok := range tokens {
		v, err := semver.StrictNewVersion(tok)
		if err != nil {
			continue
		}
		c.Version = v
		// A name that starts with its version keeps the stem as its artifact id.
		if i > 0 {
			c.ArtifactID = strings.Join(tokens[:i], "-")
		}
		break
	}
	return c
}

// HasVersion reports whether a semantic version was found.
func (c Coordinate) HasVersion() bool {
	return c.Version != nil
}

// VersionString returns the version text or an empty string.
func (c Coordinate) VersionString() string {
	if c.Version == nil {
		return ""
	}
	return c.Version.String()
}

// SameArtifact reports whether two coordinates name the same library: their
// artifact ids are equal, or one is a prefix of the other.
func SameArtifact(a, b Coordinate) bool {
	if a.ArtifactID == "" || b.ArtifactID == "" {
		return false
	}
	return strings.HasPrefix(a.ArtifactID, b.ArtifactID) || strings.HasPrefix(b.ArtifactID, a.ArtifactID)
}

// Older returns a if a has lower semantic-version precedence than b, and b
// otherwise (equal versions return b). It fails with ErrNoVersion when either
// coordinate has no version.
func Older(a, b Coordinate) (Coordinate, error) {
	if a.Version == nil || b.Version == nil {
		return Coordinate{}, ErrNoVersion
	}
	if a.Version.LessThan(b.Version) {
		return a, nil
	}
	return b, nil
}
