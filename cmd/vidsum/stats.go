package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
	"github.com/vidsum/vidsum/pkg/vidsum/usage"
)

var statsCmd = &cobra.Command{
	Use:   "stats [root]",
	Short: "Show catalog statistics and disk usage",
	Long: `Show aggregate catalog statistics: file counts and sizes by scan
status and by extension.

With a root argument, stats also surveys the directory on disk and sets
filesystem truth next to the catalog totals. The survey counts every
regular file, so the gap between the two shows how much of the tree the
catalog covers.

Examples:
  vidsum stats                 # Catalog totals only
  vidsum stats /media/movies   # Catalog totals plus a disk survey`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// runStats is the stats command handler.
func runStats(_ *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	stats, err := cat.Stats()
	if err != nil {
		return fmt.Errorf("failed to read catalog stats: %w", err)
	}

	byExt, err := cat.ByExtension()
	if err != nil {
		return fmt.Errorf("failed to read extension stats: %w", err)
	}

	fmt.Println("\nCatalog")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Files:      %d\n", stats.TotalFiles)
	fmt.Printf("Total size: %s\n", types.FormatSize(stats.TotalSize))
	fmt.Printf("OK:         %d\n", stats.OKFiles)
	fmt.Printf("Missing:    %d\n", stats.MissingFiles)
	fmt.Printf("Errors:     %d\n", stats.ErrorFiles)

	if len(byExt) > 0 {
		fmt.Println("\nBy extension:")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-10s  %-10s  %-12s\n", "EXT", "FILES", "SIZE")
		fmt.Println(strings.Repeat("-", 60))
		for _, s := range byExt {
			fmt.Printf("%-10s  %-10d  %-12s\n",
				s.Extension, s.Count, types.FormatSize(s.TotalSize))
		}
	}

	if len(args) == 0 {
		return nil
	}

	roots, err := normalizePaths(args)
	if err != nil {
		return err
	}
	root := roots[0]

	// Set up context with cancellation for interrupt handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	printInfo("\nSurveying %s...", root)

	res, err := usage.Survey(ctx, root, viper.GetStringSlice("extensions"))
	if err != nil {
		return fmt.Errorf("survey failed: %w", err)
	}

	fmt.Println("\nOn disk")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Root:        %s\n", res.Root)
	fmt.Printf("Directories: %d\n", res.Dirs)
	fmt.Printf("All files:   %d (%s)\n", res.TotalFiles, types.FormatSize(res.TotalBytes))
	fmt.Printf("Video files: %d (%s)\n", res.MatchedFiles(), types.FormatSize(res.MatchedBytes()))
	fmt.Printf("Other files: %d (%s)\n", res.OtherFiles, types.FormatSize(res.OtherBytes))
	if res.Errored > 0 {
		fmt.Printf("Unreadable:  %d\n", res.Errored)
	}
	fmt.Printf("Survey time: %s\n", res.Elapsed.Round(time.Millisecond))

	if len(res.ByExtension) > 0 {
		exts := make([]string, 0, len(res.ByExtension))
		for ext := range res.ByExtension {
			exts = append(exts, ext)
		}
		sort.Slice(exts, func(i, j int) bool {
			return res.ByExtension[exts[i]].Bytes > res.ByExtension[exts[j]].Bytes
		})

		fmt.Println("\nBy extension (on disk):")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-10s  %-10s  %-12s\n", "EXT", "FILES", "SIZE")
		fmt.Println(strings.Repeat("-", 60))
		for _, ext := range exts {
			u := res.ByExtension[ext]
			fmt.Printf("%-10s  %-10d  %-12s\n", ext, u.Files, types.FormatSize(u.Bytes))
		}
	}

	// Catalog coverage of the surveyed root.
	under, err := cat.Under(root)
	if err != nil {
		return fmt.Errorf("failed to query catalog: %w", err)
	}
	var underSize int64
	for _, e := range under {
		underSize += e.Size
	}
	fmt.Printf("\nCataloged under root: %d files (%s)\n",
		len(under), types.FormatSize(underSize))
	if gap := res.MatchedFiles() - int64(len(under)); gap > 0 {
		fmt.Printf("Not yet cataloged:    %d files. Run 'vidsum scan %s'.\n", gap, root)
	}

	return nil
}
