package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/cache"
	"github.com/vidsum/vidsum/pkg/vidsum/catalog"
	"github.com/vidsum/vidsum/pkg/vidsum/report"
	"github.com/vidsum/vidsum/pkg/vidsum/scan"
	"github.com/vidsum/vidsum/pkg/vidsum/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [roots...]",
	Short: "Watch library roots and rescan on changes",
	Long: `Watch runs in the foreground, watching the library roots for
filesystem changes. Once a root settles (no relevant event for the
debounce period), an incremental scan of that root runs.

Event storms such as a finishing download or a batch rename collapse
into a single scan. Press Ctrl+C to stop.

Examples:
  vidsum watch                 # Watch configured libraries
  vidsum watch /media/incoming # Watch one directory
  vidsum watch --debounce 10s  # Wait longer for quiet`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("debounce", "", "quiet period before a change triggers a scan (e.g., 2s, 500ms)")

	_ = viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(watchCmd)
}

// runWatch is the watch command handler.
func runWatch(_ *cobra.Command, args []string) error {
	roots, _, err := resolveRoots(args)
	if err != nil {
		return err
	}

	debounce, err := resolveDebounce()
	if err != nil {
		return err
	}

	// Handles stay open for the life of the watch; every settle scan
	// reuses them.
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	fpCache := openCache()
	if fpCache != nil {
		defer fpCache.Close()
	}
	reports := openReports()

	w, err := watch.New(viper.GetStringSlice("extensions"), debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	for _, root := range roots {
		if err := w.Watch(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		printVerbose("Watching %s", root)
	}

	// Set up context with cancellation for interrupt handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nStopping watch...")
		cancel()
	}()

	printInfo("Watching %d root(s), debounce %s. Press Ctrl+C to stop.",
		len(roots), debounce)

	w.Run(ctx, func(root string) {
		rescanRoot(ctx, root, cat, fpCache, reports)
	})

	return nil
}

// resolveDebounce reads the configured debounce period. Empty selects the
// watcher default.
func resolveDebounce() (time.Duration, error) {
	s := viper.GetString("watch.debounce")
	if s == "" {
		return watch.DefaultDebounce, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid debounce %q: %w", s, err)
	}
	return d, nil
}

// rescanRoot runs an incremental scan of a settled root. It runs on the
// watcher's event goroutine, so a long scan delays the next settle rather
// than racing it.
func rescanRoot(ctx context.Context, root string, cat *catalog.Catalog, fpCache *cache.Cache, reports *report.Archive) {
	printInfo("Change detected under %s, scanning...", root)

	opts := buildScanOptions([]string{root}, true)
	opts.Catalog = cat
	opts.Cache = fpCache
	opts.Reports = reports

	scanner, err := scan.New(opts)
	if err != nil {
		printError("rescan of %s failed: %v", root, err)
		return
	}

	rep, err := scanner.Run(ctx)
	if err != nil {
		printError("rescan of %s failed: %v", root, err)
		return
	}
	if rep.Interrupted {
		printInfo("Scan interrupted.")
		return
	}

	printInfo("Scan complete: %d found, %d new, %d updated, %d errors (%s)",
		rep.Found, rep.New, rep.Updated, rep.Errored,
		rep.Elapsed.Round(time.Millisecond))
}
