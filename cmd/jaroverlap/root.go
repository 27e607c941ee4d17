package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/terassyi/jaroverlap/internal/config"
	jerrors "github.com/terassyi/jaroverlap/internal/errors"
	"github.com/terassyi/jaroverlap/internal/report"
	"github.com/terassyi/jaroverlap/internal/scan"
	"github.com/terassyi/jaroverlap/internal/ui"
)

const usageText = `jaroverlap <war-or-dir> [workdir]

  war-or-dir  a .war file, a directory of jars, or a .zip, .tar.gz or .tar.xz distribution
  workdir     directory archives are extracted to (default: $TMPDIR/jaroverlap)`

// noColor is read by main when formatting a returned error.
var noColor bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jaroverlap <war-or-dir> [workdir]",
		Short: "Report jars that overlap on a Java classpath",
		Long: `Jaroverlap scans a web-application archive, a directory of jars or a
library distribution and reports which jars provide the same classes.

For each pair of overlapping jars it prints the number of shared classes and
the percentage of overlap, and warns about jars that look like two versions
of the same library.

Every option can also be set with a JAROVERLAP_* environment variable, for
example JAROVERLAP_DETAIL=true.`,
		Args:          checkArgs,
		RunE:          runScan,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(cmd.Flags())
	cmd.SetFlagErrorFunc(flagError)
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func checkArgs(_ *cobra.Command, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return jerrors.NewArgumentCountError(args, usageText)
	}
	return nil
}

func flagError(_ *cobra.Command, err error) error {
	e := jerrors.Wrap(jerrors.CategoryUsage, "invalid command line", err).WithUsage(usageText)
	e.Code = jerrors.CodeInvalidOption
	return e
}

func runScan(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd.Flags(), args)
	if err != nil {
		return err
	}

	noColor = opts.NoColor
	if opts.NoColor {
		color.NoColor = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stderr := cmd.ErrOrStderr()
	prevLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLogLevel(opts.LogLevel)})))
	defer slog.SetDefault(prevLogger)

	target := args[0]
	slog.Info("analyzing", "target", target, "workdir", opts.Workdir)

	pm := ui.NewProgressManager(stderr, opts.Quiet)
	res, err := scan.Run(ctx, target, scan.Options{
		Workdir:           opts.Workdir,
		Parallelism:       opts.Parallel,
		ManifestClasspath: opts.ManifestClasspath,
		EventHandler:      pm.HandleEvent,
	})
	pm.Wait()
	if err != nil {
		return err
	}

	r := report.Build(res.Index, report.Options{
		Target:          target,
		Detail:          opts.Detail,
		ExcludeSameSize: opts.ExcludeSameSize,
		ShowSizes:       opts.ShowSizes,
		Search:          opts.Search,
	})
	if err := report.Write(cmd.OutOrStdout(), r, opts.Output, opts.NoColor); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !opts.Quiet {
		ui.PrintScanSummary(stderr, ui.ScanSummary{
			Entries:    len(res.Index.Entries()),
			Resources:  res.Index.Len(),
			Duplicates: len(res.Index.Duplicates()),
		})
	}
	return nil
}

// loadOptions reads flags and environment and applies the optional
// working directory argument.
func loadOptions(fs *pflag.FlagSet, args []string) (*config.Options, error) {
	opts, err := config.Load(fs)
	if err != nil {
		return nil, err
	}
	if len(args) == 2 {
		if err := opts.SetWorkdir(args[1]); err != nil {
			return nil, jerrors.NewOptionError("workdir", "a directory path", args[1])
		}
	}
	return opts, nil
}

// parseLogLevel converts a string log level to slog.Level.
// Accepted values: "debug", "info", "warn", "error" (case-insensitive).
// Defaults to slog.LevelWarn for unrecognized values.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
