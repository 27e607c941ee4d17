// Package report turns an aggregated classpath index into the jar overlap
// report and renders it as text, JSON or YAML.
package report

import (
	"fmt"
	"math"

	"github.com/terassyi/jaroverlap/internal/classpath"
	"github.com/terassyi/jaroverlap/internal/coordinate"
	"github.com/terassyi/jaroverlap/internal/overlap"
)

// WarningKind classifies a per-pair warning.
type WarningKind string

const (
	WarningContained         WarningKind = "contained"
	WarningPossibleDuplicate WarningKind = "possible-duplicate"
	WarningOlderVersion      WarningKind = "older-version"
	WarningNoSemVer          WarningKind = "no-semver"
)

// Warning is attached to a pair of overlapping entries.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

// Pair is one line of the overlap report.
type Pair struct {
	Jar1           string    `json:"jar1" yaml:"jar1"`
	Jar2           string    `json:"jar2" yaml:"jar2"`
	Jar1URL        string    `json:"jar1Url" yaml:"jar1Url"`
	Jar2URL        string    `json:"jar2Url" yaml:"jar2Url"`
	Count          int       `json:"overlappingClasses" yaml:"overlappingClasses"`
	PercentOverlap float64   `json:"percentOverlap" yaml:"percentOverlap"`
	Contained      bool      `json:"contained" yaml:"contained"`
	SmallerJar     string    `json:"smallerJar" yaml:"smallerJar"`
	LargerJar      string    `json:"largerJar" yaml:"largerJar"`
	OlderJar       string    `json:"olderJar,omitempty" yaml:"olderJar,omitempty"`
	Warnings       []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Location is one entry providing a resource.
type Location struct {
	URL  string `json:"url" yaml:"url"`
	Size int64  `json:"size" yaml:"size"`
}

// Listing is a resource name with every location providing it.
type Listing struct {
	Name      string     `json:"name" yaml:"name"`
	Locations []Location `json:"locations" yaml:"locations"`
}

// Search holds the outcome of a resource name search. Error is set, and
// Matches empty, when the expression does not compile.
type Search struct {
	Expression string    `json:"expression" yaml:"expression"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	Matches    []Listing `json:"matches" yaml:"matches"`
}

// Report is the structured overlap report.
type Report struct {
	Target          string    `json:"target,omitempty" yaml:"target,omitempty"`
	Pairs           []Pair    `json:"pairs" yaml:"pairs"`
	Total           int       `json:"total" yaml:"total"`
	ExcludeSameSize bool      `json:"excludeSameSize" yaml:"excludeSameSize"`
	Duplicates      []Listing `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Search          *Search   `json:"search,omitempty" yaml:"search,omitempty"`

	// Detail and ShowSizes only shape the text layout.
	Detail    bool `json:"-" yaml:"-"`
	ShowSizes bool `json:"-" yaml:"-"`
}

// Options selects the report sections.
type Options struct {
	Target          string
	Detail          bool
	ExcludeSameSize bool
	ShowSizes       bool
	// Search is a regular expression; empty disables the search section.
	Search string
}

// Build analyzes ix and assembles the report.
func Build(ix *classpath.Index, opts Options) *Report {
	resources := ix.Resources()
	pairs := overlap.FindOverlappingJars(resources, opts.ExcludeSameSize)

	r := &Report{
		Target:          opts.Target,
		Pairs:           make([]Pair, 0, len(pairs)),
		Total:           overlap.TotalCount(pairs),
		ExcludeSameSize: opts.ExcludeSameSize,
		Detail:          opts.Detail,
		ShowSizes:       opts.ShowSizes,
	}
	for _, p := range pairs {
		r.Pairs = append(r.Pairs, buildPair(p))
	}

	if opts.Detail {
		r.Duplicates = listings(overlap.FindClassFileDuplicates(resources, opts.ExcludeSameSize))
	}

	if opts.Search != "" {
		s := &Search{Expression: opts.Search, Matches: []Listing{}}
		matches, err := overlap.FindByRegex(ix, opts.Search)
		if err != nil {
			s.Error = err.Error()
		} else {
			s.Matches = listings(matches)
		}
		r.Search = s
	}
	return r
}

func buildPair(p *overlap.JarPair) Pair {
	smaller, larger := p.SmallerJar(), p.LargerJar()
	out := Pair{
		Jar1:           p.Jar1.DisplayName(),
		Jar2:           p.Jar2.DisplayName(),
		Jar1URL:        p.Jar1.URL(),
		Jar2URL:        p.Jar2.URL(),
		Count:          p.Count,
		PercentOverlap: math.Round(p.PercentOverlap()*100) / 100,
		Contained:      p.Contained(),
		SmallerJar:     smaller.DisplayName(),
		LargerJar:      larger.DisplayName(),
	}

	if out.Contained {
		out.Warnings = append(out.Warnings, Warning{
			Kind:    WarningContained,
			Message: fmt.Sprintf("%s is fully contained in %s", out.SmallerJar, out.LargerJar),
		})
	}

	c1, c2 := p.Jar1.Coordinate(), p.Jar2.Coordinate()
	if !coordinate.SameArtifact(c1, c2) {
		return out
	}
	out.Warnings = append(out.Warnings, Warning{
		Kind:    WarningPossibleDuplicate,
		Message: fmt.Sprintf("Possible duplicate jars: %s %s", out.Jar1, out.Jar2),
	})

	older, err := coordinate.Older(c1, c2)
	if err != nil {
		out.Warnings = append(out.Warnings, Warning{
			Kind:    WarningNoSemVer,
			Message: "Could not determine which jar is older.  Version numbering may not follow SemVer.",
		})
		return out
	}
	out.OlderJar = older.FileName
	out.Warnings = append(out.Warnings, Warning{
		Kind:    WarningOlderVersion,
		Message: "Consider removing the older version: " + older.FileName,
	})
	return out
}

func listings(resources []*classpath.Resource) []Listing {
	out := make([]Listing, 0, len(resources))
	for _, r := range resources {
		l := Listing{Name: r.Name, Locations: make([]Location, 0, len(r.Versions))}
		for _, v := range r.Versions {
			l.Locations = append(l.Locations, Location{URL: v.Entry.URL(), Size: v.Size})
		}
		out = append(out, l)
	}
	return out
}
