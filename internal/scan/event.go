package scan

import "github.com/terassyi/jaroverlap/internal/classpath"

// EventType represents the type of a scan progress event.
type EventType int

const (
	// EventStage marks the start of a driver step; Message names it.
	EventStage EventType = iota
	// EventExtract is emitted before each archive member is written; Name
	// is the member path.
	EventExtract
	// EventEntriesCollected carries the number of classpath entries in Total.
	EventEntriesCollected
	// EventEntryStart is emitted before an entry is indexed.
	EventEntryStart
	// EventEntryEnd is emitted after an entry is indexed; Resources is the
	// size of its inventory.
	EventEntryEnd
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventStage:
		return "stage"
	case EventExtract:
		return "extract"
	case EventEntriesCollected:
		return "entries-collected"
	case EventEntryStart:
		return "entry-start"
	case EventEntryEnd:
		return "entry-end"
	default:
		return "unknown"
	}
}

// Event is a progress notification from a scan.
type Event struct {
	Type      EventType
	Message   string
	Name      string
	Entry     *classpath.Entry
	Resources int
	Total     int
}

// EventHandler receives scan events. It may be called from several
// goroutines at once during indexing.
type EventHandler func(Event)

// Stage messages.
const (
	StageWipeWorkdir = "Deleting temporary directory"
	StageUnzipWar    = "Unzipping WAR"
	StageUnpackDist  = "Unpacking distribution"
	StageCollect     = "Scanning for classpath entries"
	StageManifest    = "Following manifest Class-Path entries"
	StageIndex       = "Indexing classpath entries"
)
