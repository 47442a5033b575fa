package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/cmd/vidsum/tui"
	"github.com/vidsum/vidsum/pkg/vidsum/config"
	"github.com/vidsum/vidsum/pkg/vidsum/discover"
	"github.com/vidsum/vidsum/pkg/vidsum/filter"
	"github.com/vidsum/vidsum/pkg/vidsum/output"
	"github.com/vidsum/vidsum/pkg/vidsum/scan"
	"github.com/vidsum/vidsum/pkg/vidsum/tuner"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Scan library roots and update the catalog",
	Long: `Scan discovers video files under the given roots, fingerprints new
and changed files, and records them in the catalog.

Roots default to the configured libraries when none are given. Scans are
incremental: files whose size and modification time are unchanged since
the last scan keep their stored fingerprint.

Examples:
  vidsum scan                    # Scan configured libraries
  vidsum scan /media/movies      # Scan one directory
  vidsum scan --full             # Rehash every file
  vidsum scan --verify           # Also rehash unchanged files, flag drift
  vidsum scan --prune            # Drop records of vanished files
  vidsum scan --no-db /media/tv  # Preview what a scan would pick up`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("full", false, "rehash every file, bypass incremental detection")
	scanCmd.Flags().Bool("prune", false, "delete catalog records for vanished files")
	scanCmd.Flags().Bool("verify", false, "rehash unchanged files and flag fingerprint drift")
	scanCmd.Flags().Bool("no-db", false, "discover only, without touching the catalog")
	scanCmd.Flags().BoolP("interactive", "i", false, "show interactive scan progress")

	_ = viper.BindPFlag("full", scanCmd.Flags().Lookup("full"))
	_ = viper.BindPFlag("prune", scanCmd.Flags().Lookup("prune"))
	_ = viper.BindPFlag("verify", scanCmd.Flags().Lookup("verify"))
	_ = viper.BindPFlag("no_db", scanCmd.Flags().Lookup("no-db"))
	_ = viper.BindPFlag("interactive", scanCmd.Flags().Lookup("interactive"))

	rootCmd.AddCommand(scanCmd)
}

// runScan is the scan command handler.
func runScan(_ *cobra.Command, args []string) error {
	roots, explicit, err := resolveRoots(args)
	if err != nil {
		return err
	}

	opts := buildScanOptions(roots, explicit)

	if viper.GetBool("no_db") {
		return runDiscoverOnly(opts)
	}

	// Determine output mode. An explicit non-pretty format forces
	// non-interactive output.
	interactive := viper.GetBool("interactive")
	outFormat := viper.GetString("output.format")
	if outFormat != "" && outFormat != "pretty" {
		interactive = false
	}

	if interactive {
		return runInteractiveScan(opts)
	}
	return runNonInteractiveScan(opts)
}

// resolveRoots determines the library roots to scan. Explicit arguments
// win over the configured libraries; explicit roots are validated up
// front so typos fail fast.
func resolveRoots(args []string) (roots []string, explicit bool, err error) {
	if len(args) > 0 {
		roots, err = normalizePaths(args)
		if err != nil {
			return nil, false, err
		}
		for _, root := range roots {
			info, err := os.Stat(root)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, false, fmt.Errorf("path does not exist: %s", root)
				}
				return nil, false, fmt.Errorf("cannot access path: %w", err)
			}
			if !info.IsDir() {
				return nil, false, fmt.Errorf("path is not a directory: %s", root)
			}
		}
		return roots, true, nil
	}

	libraries := viper.GetStringSlice("libraries")
	if len(libraries) == 0 {
		return nil, false, fmt.Errorf("no library roots configured: pass a directory or set 'libraries' in the config file")
	}

	roots, err = normalizePaths(libraries)
	if err != nil {
		return nil, false, err
	}
	return roots, false, nil
}

// normalizePaths expands ~ and resolves each path to absolute form.
func normalizePaths(paths []string) ([]string, error) {
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		expanded, err := config.ExpandPath(p)
		if err != nil {
			return nil, fmt.Errorf("failed to expand path %q: %w", p, err)
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %w", p, err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

// buildScanOptions assembles scanner options from the effective
// configuration, with worker counts tuned to the machine unless pinned.
func buildScanOptions(roots []string, explicit bool) scan.Options {
	resources := tuner.Detect()
	optConfig := tuner.CalculateWithOverrides(resources,
		viper.GetInt("workers.stat"), viper.GetInt("workers.hash"))

	printVerbose("System: %d CPUs, %s RAM, %s available",
		resources.CPUCores,
		types.FormatSize(resources.TotalRAM),
		types.FormatSize(resources.AvailableRAM))
	printVerbose("Config: %d stat workers, %d hash workers",
		optConfig.StatWorkers, optConfig.HashWorkers)

	return scan.Options{
		Roots:          roots,
		Extensions:     filter.NormalizeExtensions(viper.GetStringSlice("extensions")),
		FollowSymlinks: viper.GetBool("follow_symlinks"),
		StatWorkers:    optConfig.StatWorkers,
		HashWorkers:    optConfig.HashWorkers,
		Full:           viper.GetBool("full"),
		Prune:          viper.GetBool("prune"),
		Verify:         viper.GetBool("verify"),
		ExplicitRoot:   explicit,
	}
}

// runInteractiveScan runs the scan inside the TUI.
func runInteractiveScan(opts scan.Options) error {
	// Re-initialize logging for TUI mode (enables log buffer, disables console)
	if err := initTUILogging(); err != nil {
		return fmt.Errorf("failed to initialize TUI logging: %w", err)
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()
	opts.Catalog = cat

	if c := openCache(); c != nil {
		defer func() { _ = c.Close() }()
		opts.Cache = c
	}
	opts.Reports = openReports()

	return tui.Run(tui.Options{Scan: opts})
}

// runNonInteractiveScan runs the scan with line-based progress output.
func runNonInteractiveScan(opts scan.Options) error {
	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()
	opts.Catalog = cat

	if c := openCache(); c != nil {
		defer func() { _ = c.Close() }()
		opts.Cache = c
	}
	opts.Reports = openReports()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, finishing current batch...")
		cancel()
	}()

	display := newProgressDisplay(!getQuiet())
	opts.OnProgress = display.update

	scanner, err := scan.New(opts)
	if err != nil {
		return err
	}

	rep, err := scanner.Run(ctx)
	display.finish()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	result := scanResultToOutput(rep)

	// Output results
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	if rep.Interrupted {
		fmt.Fprintln(os.Stderr, "\nScan interrupted. Partial results saved.")
	}

	return nil
}

// runDiscoverOnly walks the roots and lists what a scan would pick up,
// without opening the catalog or hashing anything.
func runDiscoverOnly(opts scan.Options) error {
	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping discovery...")
		cancel()
	}()

	display := newProgressDisplay(!getQuiet())

	var rows []output.Row
	var warnings []string
	interrupted := false
	seen := make(map[string]bool)

	for _, root := range opts.Roots {
		base := len(rows)
		files, err := discover.Discover(ctx, root, discover.Options{
			Extensions:     opts.Extensions,
			FollowSymlinks: opts.FollowSymlinks,
			StatWorkers:    opts.StatWorkers,
			OnProgress: func(found int, rate float64) {
				display.update(scan.Progress{
					Phase: scan.PhaseDiscover,
					Found: base + found,
					Rate:  rate,
				})
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				interrupted = true
				break
			}
			if opts.ExplicitRoot && len(opts.Roots) == 1 {
				display.finish()
				return err
			}
			warnings = append(warnings, fmt.Sprintf("%s: %v", root, err))
			continue
		}

		for _, f := range files {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			rows = append(rows, output.RowFromDiscovered(f))
		}
	}
	display.finish()

	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })

	result := &output.Result{
		Rows:        rows,
		Source:      strings.Join(opts.Roots, ", "),
		TotalRows:   len(rows),
		Warnings:    warnings,
		Interrupted: interrupted,
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}

// scanResultToOutput converts a scan report to an output result.
func scanResultToOutput(rep *scan.Report) *output.Result {
	summary := &output.Summary{
		JobID:       rep.JobID,
		Mode:        rep.Mode,
		Roots:       rep.Roots,
		Found:       rep.Found,
		New:         rep.New,
		Updated:     rep.Updated,
		Skipped:     rep.Skipped,
		Errored:     rep.Errored,
		Removed:     rep.Removed,
		Missing:     rep.Missing,
		Verified:    rep.Verified,
		Mismatched:  rep.Mismatched,
		Duration:    rep.Elapsed,
		Incremental: rep.Incremental,
	}

	var warnings []string
	for _, e := range rep.Errors {
		warnings = append(warnings, fmt.Sprintf("%s: %s", e.Path, e.Message))
	}

	return &output.Result{
		Summary:     summary,
		Source:      strings.Join(rep.Roots, ", "),
		Warnings:    warnings,
		Interrupted: rep.Interrupted,
	}
}
