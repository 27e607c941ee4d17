// Package config holds the option record threaded through a jaroverlap run.
// Options come from command-line flags and JAROVERLAP_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jerrors "github.com/terassyi/jaroverlap/internal/errors"
	"github.com/terassyi/jaroverlap/internal/workdir"
)

// Configuration keys. They keep the names of the original runtime
// properties; the environment variable is the key upper-cased with dots
// replaced by underscores and the JAROVERLAP_ prefix.
const (
	KeyDetail            = "detail"
	KeyExcludeSameSize   = "exclude.same.size.dups"
	KeySearch            = "search.by.file.name"
	KeyManifestClasspath = "manifest.classpath"
	KeyShowSizes         = "show.sizes"
	KeyParallel          = "parallel"
	KeyOutput            = "output"
	KeyQuiet             = "quiet"
	KeyNoColor           = "no.color"
	KeyLogLevel          = "log.level"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "JAROVERLAP"

const (
	DefaultParallel = 4
	MaxParallel     = 32
	DefaultLogLevel = "warn"
)

// OutputFormat selects the report renderer.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Options is the configuration of one run.
type Options struct {
	// Detail enables the per-resource duplicates listing.
	Detail bool
	// ExcludeSameSize counts a resource as duplicated only when its
	// versions differ in size.
	ExcludeSameSize bool
	// Search is a regular expression matched against resource names.
	// Empty disables the search block.
	Search string
	// ManifestClasspath follows Class-Path manifest attributes of jars.
	ManifestClasspath bool
	// ShowSizes prints byte sizes in the detail listing.
	ShowSizes bool
	// Parallel bounds concurrent entry indexing.
	Parallel int
	Output   OutputFormat
	Quiet    bool
	NoColor  bool
	LogLevel string

	// Workdir receives extracted archives.
	Workdir string
}

// Default returns the options used when nothing is configured.
func Default() *Options {
	return &Options{
		Parallel: DefaultParallel,
		Output:   OutputText,
		LogLevel: DefaultLogLevel,
		Workdir:  workdir.Default(),
	}
}

// Validate checks value ranges. It returns an *errors.OptionError.
func (o *Options) Validate() error {
	switch o.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return jerrors.NewOptionError(KeyOutput, "text, json, yaml", string(o.Output))
	}

	if o.Parallel < 1 || o.Parallel > MaxParallel {
		return jerrors.NewOptionError(KeyParallel, fmt.Sprintf("1..%d", MaxParallel), fmt.Sprint(o.Parallel))
	}

	switch strings.ToLower(o.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return jerrors.NewOptionError(KeyLogLevel, "debug, info, warn, error", o.LogLevel)
	}

	if o.Workdir == "" {
		return jerrors.NewOptionError("workdir", "a directory path", "")
	}
	return nil
}

// SetWorkdir sets the working directory from the optional positional
// argument. An empty argument keeps the default. A leading ~ is expanded.
func (o *Options) SetWorkdir(arg string) error {
	if arg == "" {
		return nil
	}
	dir, err := Expand(arg)
	if err != nil {
		return fmt.Errorf("failed to expand working directory: %w", err)
	}
	o.Workdir = dir
	return nil
}

// Expand expands a leading ~ to the user's home directory.
func Expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}

	if path == "~" {
		return os.UserHomeDir()
	}

	return path, nil
}
