package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/terassyi/jaroverlap/internal/ui"
)

// SameSizeHint is printed when same-size duplicates are counted.
const SameSizeHint = "Use --exclude-same-size-dups (or JAROVERLAP_EXCLUDE_SAME_SIZE_DUPS=true) " +
	"for considering as a duplicate only classes with multiple class files of different sizes."

const warningPrefix = "** WARNING: "

// TextPrinter renders a Report in the plain-text layout.
type TextPrinter struct {
	writer io.Writer

	headerColor  *color.Color
	warningColor *color.Color
}

// NewTextPrinter creates a TextPrinter. Colors are also disabled when
// color.NoColor is set, which fatih/color does for non-terminal stdout.
func NewTextPrinter(w io.Writer, noColor bool) *TextPrinter {
	style := ui.NewStyle()
	p := &TextPrinter{
		writer:       w,
		headerColor:  style.Header,
		warningColor: style.Warning,
	}
	if noColor {
		p.headerColor.DisableColor()
		p.warningColor.DisableColor()
	}
	return p
}

// Print writes the report.
func (p *TextPrinter) Print(r *Report) error {
	var b strings.Builder

	b.WriteString("\n" + p.headerColor.Sprint(">>>> Jar overlap report: ") + "\n\n")
	for _, pair := range r.Pairs {
		fmt.Fprintf(&b, "%s overlaps with %s - total overlapping classes: %d (percent overlap: %.2f)\n",
			pair.Jar1, pair.Jar2, pair.Count, pair.PercentOverlap)
		for _, w := range pair.Warnings {
			p.warning(&b, w.Message)
		}
	}

	fmt.Fprintf(&b, "\nTotal number of classes with more than one version: %d\n\n", r.Total)

	if !r.ExcludeSameSize {
		b.WriteString("\n" + SameSizeHint + "\n\n")
	}

	if r.Detail {
		b.WriteString("\n" + p.headerColor.Sprint(">>>> Classpath resources with more than one version: ") + "\n\n")
		for _, l := range r.Duplicates {
			b.WriteString(l.Name + "\n")
			for _, loc := range l.Locations {
				b.WriteString("    " + loc.URL)
				if r.ShowSizes {
					fmt.Fprintf(&b, " (%d bytes)", loc.Size)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if s := r.Search; s != nil {
		switch {
		case s.Error != "":
			b.WriteString("\n")
			p.warning(&b, "Search skipped: "+s.Error)
		case len(s.Matches) > 0:
			b.WriteString("\nSearch results using regular expression: " + s.Expression + "\n\n")
			for _, m := range s.Matches {
				b.WriteString(m.Name + "\n\n")
				for _, loc := range m.Locations {
					b.WriteString("    " + loc.URL + "\n")
				}
				b.WriteString("\n")
			}
		}
	}

	_, err := io.WriteString(p.writer, b.String())
	return err
}

func (p *TextPrinter) warning(b *strings.Builder, msg string) {
	b.WriteString(p.warningColor.Sprint(warningPrefix+msg) + "\n")
}
