package ui

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/terassyi/jaroverlap/internal/scan"
)

// ScanSummary counts what a scan indexed.
type ScanSummary struct {
	Entries    int
	Resources  int
	Duplicates int
}

// ProgressManager renders scan progress. On a terminal it draws bars for
// extraction and indexing; otherwise it prints one status line per step.
type ProgressManager struct {
	mu         sync.Mutex
	w          io.Writer
	isTTY      bool
	quiet      bool
	progress   *mpb.Progress
	extractBar *mpb.Bar
	indexBar   *mpb.Bar
}

// NewProgressManager creates a progress manager writing to w, which is
// expected to be stderr. A quiet manager discards every event.
func NewProgressManager(w io.Writer, quiet bool) *ProgressManager {
	isTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	pm := &ProgressManager{
		w:     w,
		isTTY: isTTY,
		quiet: quiet,
	}

	if isTTY && !quiet {
		pm.progress = mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	}

	return pm
}

// Wait finishes any open bar and waits for rendering to complete.
func (pm *ProgressManager) Wait() {
	if pm.progress == nil {
		return
	}

	pm.mu.Lock()
	for _, bar := range []*mpb.Bar{pm.extractBar, pm.indexBar} {
		if bar != nil && !bar.Completed() {
			bar.Abort(false)
		}
	}
	pm.mu.Unlock()

	pm.progress.Wait()
}

// HandleEvent handles scan events for progress display.
func (pm *ProgressManager) HandleEvent(event scan.Event) {
	if pm.quiet {
		return
	}

	switch event.Type {
	case scan.EventStage:
		pm.handleStage(event)
	case scan.EventExtract:
		pm.handleExtract(event)
	case scan.EventEntriesCollected:
		pm.handleEntriesCollected(event)
	case scan.EventEntryStart:
		pm.handleEntryStart(event)
	case scan.EventEntryEnd:
		pm.handleEntryEnd(event)
	}
}

func (pm *ProgressManager) handleStage(event scan.Event) {
	if pm.isTTY {
		return
	}
	style := NewStyle()
	pm.println(style.Step.Sprint(event.Message))
}

func (pm *ProgressManager) handleExtract(event scan.Event) {
	if !pm.isTTY {
		if isJar(event.Name) {
			pm.println("Extracting jar " + path.Base(event.Name))
		}
		return
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.extractBar == nil {
		pm.extractBar = pm.progress.AddBar(0,
			mpb.BarFillerClearOnComplete(),
			mpb.PrependDecorators(
				decor.Name("  Extracting", decor.WC{W: 14, C: decor.DindentRight}),
				decor.CurrentNoUnit("%d files", decor.WC{W: 12}),
			),
			mpb.AppendDecorators(
				decor.OnComplete(decor.Name(""), " done"),
			),
		)
	}
	pm.extractBar.Increment()
}

func (pm *ProgressManager) handleEntriesCollected(event scan.Event) {
	if !pm.isTTY {
		pm.println(fmt.Sprintf("Found %d classpath entries", event.Total))
		return
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.extractBar != nil && !pm.extractBar.Completed() {
		pm.extractBar.SetTotal(pm.extractBar.Current(), true)
	}
	pm.indexBar = pm.progress.AddBar(int64(event.Total),
		mpb.BarFillerClearOnComplete(),
		mpb.PrependDecorators(
			decor.Name("  Indexing", decor.WC{W: 14, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WC{W: 12}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), " done"),
		),
	)
}

func (pm *ProgressManager) handleEntryStart(event scan.Event) {
	if pm.isTTY || event.Entry == nil {
		return
	}
	if event.Entry.IsJar() {
		pm.println("Processing jar " + event.Entry.JarName())
	} else {
		pm.println("Processing folder " + event.Entry.DisplayName())
	}
}

func (pm *ProgressManager) handleEntryEnd(event scan.Event) {
	if !pm.isTTY {
		if event.Entry != nil && event.Entry.IsJar() {
			pm.println("Finished processing jar " + event.Entry.JarName())
		}
		return
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.indexBar != nil {
		pm.indexBar.Increment()
	}
}

func (pm *ProgressManager) println(line string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	fmt.Fprintln(pm.w, line)
}

func isJar(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".jar")
}

// PrintScanSummary prints a one-line summary of an indexing run.
func PrintScanSummary(w io.Writer, s ScanSummary) {
	style := NewStyle()

	mark := style.SuccessMark
	if s.Duplicates > 0 {
		mark = style.WarnMark
	}
	fmt.Fprintf(w, "%s Indexed %d classpath entries, %d resources, %d with more than one version\n",
		mark, s.Entries, s.Resources, s.Duplicates)
}
