package classpath

import "strings"

// ResourceVersion is one physical occurrence of a resource inside one entry.
type ResourceVersion struct {
	Entry *Entry
	Name  string
	Size  int64
}

// IsClass reports whether the resource is a compiled class file.
func (v ResourceVersion) IsClass() bool {
	return strings.HasSuffix(v.Name, ClassSuffix)
}

// Resource is a logical resource name together with every version providing it.
// Versions are ordered by entry URL.
type Resource struct {
	Name     string
	Versions []ResourceVersion
}

// HasDuplicates reports whether two or more entries provide the resource.
func (r *Resource) HasDuplicates() bool {
	return len(r.Versions) > 1
}

// HasSizeDifferingDuplicates reports whether the resource has duplicates and
// not all of them have the same size.
func (r *Resource) HasSizeDifferingDuplicates() bool {
	if !r.HasDuplicates() {
		return false
	}
	first := r.Versions[0].Size
	for _, v := range r.Versions[1:] {
		if v.Size != first {
			return true
		}
	}
	return false
}

// Entries returns the contributing entries in version order.
func (r *Resource) Entries() []*Entry {
	entries := make([]*Entry, len(r.Versions))
	for i, v := range r.Versions {
		entries[i] = v.Entry
	}
	return entries
}
