package classpath

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultParallelism is the default number of entries indexed concurrently.
const DefaultParallelism = 4

// EventType identifies an indexing progress event.
type EventType int

const (
	// EventEntryStart is emitted before an entry is walked.
	EventEntryStart EventType = iota
	// EventEntryEnd is emitted after an entry has been indexed.
	EventEntryEnd
)

// Event reports indexing progress for one entry.
type Event struct {
	Type  EventType
	Entry *Entry
	// Resources is the inventory size, set on EventEntryEnd.
	Resources int
}

// EventHandler receives indexing events. With parallelism above one it is
// called from several goroutines.
type EventHandler func(Event)

// AggregateOption configures Aggregate.
type AggregateOption func(*aggregator)

// WithParallelism sets how many entries are indexed concurrently.
func WithParallelism(n int) AggregateOption {
	return func(a *aggregator) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

// WithEventHandler sets the progress event handler.
func WithEventHandler(h EventHandler) AggregateOption {
	return func(a *aggregator) {
		a.onEvent = h
	}
}

type aggregator struct {
	parallelism int
	onEvent     EventHandler
}

func (a *aggregator) emit(ev Event) {
	if a.onEvent != nil {
		a.onEvent(ev)
	}
}

// Index is the global map from resource name to the versions providing it.
type Index struct {
	entries   []*Entry
	resources map[string]*Resource
	names     []string
}

// Aggregate indexes every entry and groups all resource versions by name.
//
// Entries with the same URL are collapsed into one. The merge runs over the
// entries sorted by URL, so the result does not depend on input order or on
// the order in which parallel indexing finishes.
func Aggregate(ctx context.Context, entries []*Entry, opts ...AggregateOption) (*Index, error) {
	a := &aggregator{parallelism: DefaultParallelism}
	for _, opt := range opts {
		opt(a)
	}

	unique := dedupe(entries)
	if err := a.indexAll(ctx, unique); err != nil {
		return nil, err
	}

	sorted := make([]*Entry, len(unique))
	copy(sorted, unique)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].URL() < sorted[j].URL() })

	ix := &Index{
		entries:   sorted,
		resources: make(map[string]*Resource),
	}
	for _, e := range sorted {
		for _, v := range e.ResourceVersions() {
			r, ok := ix.resources[v.Name]
			if !ok {
				r = &Resource{Name: v.Name}
				ix.resources[v.Name] = r
				ix.names = append(ix.names, v.Name)
			}
			r.Versions = append(r.Versions, v)
		}
	}
	sort.Strings(ix.names)

	return ix, nil
}

// dedupe drops entries whose URL was already seen, keeping the first.
func dedupe(entries []*Entry) []*Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.URL()]; ok {
			continue
		}
		seen[e.URL()] = struct{}{}
		out = append(out, e)
	}
	return out
}

// indexAll indexes entries with bounded concurrency. The first error (only
// context cancellation) stops the remaining work.
func (a *aggregator) indexAll(ctx context.Context, entries []*Entry) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(a.parallelism))

	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)

	for _, e := range entries {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}

		wg.Go(func() {
			defer sem.Release(1)

			a.emit(Event{Type: EventEntryStart, Entry: e})
			versions, err := e.Index(ctx)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
				return
			}
			a.emit(Event{Type: EventEntryEnd, Entry: e, Resources: len(versions)})
		})
	}

	wg.Wait()
	return firstErr
}

// Entries returns the indexed entries sorted by URL.
func (ix *Index) Entries() []*Entry {
	return ix.entries
}

// Len returns the number of distinct resource names.
func (ix *Index) Len() int {
	return len(ix.names)
}

// Lookup returns the resource with the given name.
func (ix *Index) Lookup(name string) (*Resource, bool) {
	r, ok := ix.resources[name]
	return r, ok
}

// Resources returns every resource sorted by name.
func (ix *Index) Resources() []*Resource {
	return ix.filter(func(*Resource) bool { return true })
}

// Duplicates returns the resources provided by two or more entries.
func (ix *Index) Duplicates() []*Resource {
	return ix.filter((*Resource).HasDuplicates)
}

// SizeDifferingDuplicates returns the duplicated resources whose versions do
// not all have the same size.
func (ix *Index) SizeDifferingDuplicates() []*Resource {
	return ix.filter((*Resource).HasSizeDifferingDuplicates)
}

// Search returns the resources whose name matches re, sorted by name.
func (ix *Index) Search(re *regexp.Regexp) []*Resource {
	return ix.filter(func(r *Resource) bool { return re.MatchString(r.Name) })
}

func (ix *Index) filter(keep func(*Resource) bool) []*Resource {
	var out []*Resource
	for _, name := range ix.names {
		r := ix.resources[name]
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
