// Package overlap derives jar-overlap statistics and multi-version resource
// lists from an aggregated classpath index.
package overlap

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/terassyi/jaroverlap/internal/classpath"
)

// JarPair is an unordered pair of distinct entries with the number of resource
// names both provide. Jar1 always has the lexicographically smaller URL.
type JarPair struct {
	Jar1  *classpath.Entry
	Jar2  *classpath.Entry
	Count int
}

// NewJarPair returns the pair of a and b in canonical order.
func NewJarPair(a, b *classpath.Entry) *JarPair {
	if b.URL() < a.URL() {
		a, b = b, a
	}
	return &JarPair{Jar1: a, Jar2: b}
}

// Key identifies the pair independently of argument order.
func (p *JarPair) Key() string {
	return p.Jar1.URL() + "\x00" + p.Jar2.URL()
}

// Equal reports whether two pairs hold the same entries in either order.
func (p *JarPair) Equal(o *JarPair) bool {
	return (p.Jar1.URL() == o.Jar1.URL() && p.Jar2.URL() == o.Jar2.URL()) ||
		(p.Jar1.URL() == o.Jar2.URL() && p.Jar2.URL() == o.Jar1.URL())
}

// SmallerJar returns the entry with fewer class files. Ties go to Jar1.
func (p *JarPair) SmallerJar() *classpath.Entry {
	if p.Jar1.ClassCount() <= p.Jar2.ClassCount() {
		return p.Jar1
	}
	return p.Jar2
}

// LargerJar returns the entry that SmallerJar does not.
func (p *JarPair) LargerJar() *classpath.Entry {
	if p.SmallerJar() == p.Jar1 {
		return p.Jar2
	}
	return p.Jar1
}

// PercentOverlap is the larger of the shared count relative to each entry's
// class count, in [0, 100]. Taking the maximum makes containment report 100
// even when the containing jar is much larger. A side with no classes
// contributes 0.
func (p *JarPair) PercentOverlap() float64 {
	return math.Max(sidePercent(p.Count, p.Jar1.ClassCount()), sidePercent(p.Count, p.Jar2.ClassCount()))
}

// Contained reports whether the smaller jar's classes are all in the larger one.
func (p *JarPair) Contained() bool {
	return p.PercentOverlap() >= 100
}

func sidePercent(shared, classes int) float64 {
	if classes <= 0 {
		return 0
	}
	return math.Min(100, float64(shared)*100/float64(classes))
}

// include reports whether a resource takes part in the analysis.
func include(r *classpath.Resource, excludeSameSize bool) bool {
	if excludeSameSize {
		return r.HasSizeDifferingDuplicates()
	}
	return r.HasDuplicates()
}

// FindOverlappingJars counts, for every unordered pair of entries, the
// resources both provide. With excludeSameSize, resources whose versions all
// have the same size are skipped.
//
// The result holds only pairs with a positive count, sorted by decreasing
// count, then by Jar1 URL, then by Jar2 URL.
func FindOverlappingJars(resources []*classpath.Resource, excludeSameSize bool) []*JarPair {
	pairs := make(map[string]*JarPair)

	for _, r := range resources {
		if !include(r, excludeSameSize) {
			continue
		}
		entries := r.Entries()
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].URL() == entries[j].URL() {
					continue
				}
				p := NewJarPair(entries[i], entries[j])
				if existing, ok := pairs[p.Key()]; ok {
					p = existing
				} else {
					pairs[p.Key()] = p
				}
				p.Count++
			}
		}
	}

	out := make([]*JarPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Jar1.URL() != out[j].Jar1.URL() {
			return out[i].Jar1.URL() < out[j].Jar1.URL()
		}
		return out[i].Jar2.URL() < out[j].Jar2.URL()
	})
	return out
}

// FindClassFileDuplicates returns the resources with two or more versions.
// With excludeSameSize, it further requires the versions to differ in size.
// Input order is preserved.
func FindClassFileDuplicates(resources []*classpath.Resource, excludeSameSize bool) []*classpath.Resource {
	var out []*classpath.Resource
	for _, r := range resources {
		if include(r, excludeSameSize) {
			out = append(out, r)
		}
	}
	return out
}

// TotalCount sums the shared-resource counters of pairs.
func TotalCount(pairs []*JarPair) int {
	total := 0
	for _, p := range pairs {
		total += p.Count
	}
	return total
}

// FindByRegex compiles expr and returns every resource of ix whose name it
// matches anywhere. An invalid expression is returned as an error and no
// search is performed.
func FindByRegex(ix *classpath.Index, expr string) ([]*classpath.Resource, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid search expression %q: %w", expr, err)
	}
	return ix.Search(re), nil
}
