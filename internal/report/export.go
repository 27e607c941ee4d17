package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/terassyi/jaroverlap/internal/config"
)

// Write renders r to w in the given format.
func Write(w io.Writer, r *Report, format config.OutputFormat, noColor bool) error {
	switch format {
	case config.OutputText, "":
		return NewTextPrinter(w, noColor).Print(r)
	case config.OutputJSON:
		return ExportJSON(w, r)
	case config.OutputYAML:
		return ExportYAML(w, r)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ExportJSON writes the report as indented JSON.
func ExportJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// ExportYAML writes the report as YAML.
func ExportYAML(w io.Writer, r *Report) error {
	data, err := yaml.MarshalWithOptions(r, yaml.Indent(2))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
