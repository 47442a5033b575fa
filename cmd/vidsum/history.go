package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/config"
	"github.com/vidsum/vidsum/pkg/vidsum/report"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View scan history",
	Long: `View recent scan jobs and how the library has changed over time.

Every scan archives a report with its counters and any per-path errors.
'history show' displays one job in full; 'history snapshots' lists the
catalog's point-in-time library totals.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show details of a specific scan job",
	Long:  `Display the full report of one scan job, including per-path errors.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historySnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Show library totals over time",
	Long: `List the point-in-time snapshots the catalog records at the end of
each scan: total files, total size, and missing/error counts.`,
	RunE: runHistorySnapshots,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old scan reports",
	Long:  `Remove archived scan reports older than the retention period.`,
	RunE:  runHistoryClean,
}

var (
	historyLimit  int
	snapshotLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historySnapshotsCmd.Flags().IntVarP(&snapshotLimit, "limit", "l", 20, "maximum number of snapshots to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySnapshotsCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getArchive returns the report archive at the configured directory.
// Unlike scans, which degrade gracefully without one, history needs it.
func getArchive() (*report.Archive, error) {
	dir := viper.GetString("reports.path")
	if dir == "" {
		d, err := config.ReportDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get report directory: %w", err)
		}
		dir = d
	} else if expanded, err := config.ExpandPath(dir); err == nil {
		dir = expanded
	}

	return report.New(dir)
}

// runHistory lists recent scan jobs.
func runHistory(_ *cobra.Command, _ []string) error {
	archive, err := getArchive()
	if err != nil {
		return fmt.Errorf("failed to initialize report archive: %w", err)
	}

	entries, err := archive.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No scan reports found.")
		printInfo("Run 'vidsum scan' to scan your libraries.")
		return nil
	}

	// Print header
	fmt.Printf("\n%-36s  %-16s  %-11s  %-7s  %-7s  %-7s\n",
		"JOB ID", "TIME", "MODE", "FOUND", "NEW", "ERRORS")
	fmt.Println(strings.Repeat("-", 96))

	for _, entry := range entries {
		fmt.Printf("%-36s  %-16s  %-11s  %-7d  %-7d  %-7d\n",
			truncateString(entry.JobID, 36),
			entry.Timestamp.Local().Format("2006-01-02 15:04"),
			entry.Mode,
			entry.Summary.Found,
			entry.Summary.New,
			entry.Summary.Errored,
		)
	}

	fmt.Println(strings.Repeat("-", 96))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'vidsum history show <job-id>' for details on a specific job.")

	return nil
}

// runHistoryShow displays the full report of one scan job.
func runHistoryShow(_ *cobra.Command, args []string) error {
	jobID := args[0]

	archive, err := getArchive()
	if err != nil {
		return fmt.Errorf("failed to initialize report archive: %w", err)
	}

	entry, err := archive.Get(jobID)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	elapsed := time.Duration(entry.Summary.ElapsedSeconds * float64(time.Second))

	// Display report details
	fmt.Println("\nScan Report")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Job ID:     %s\n", entry.JobID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Mode:       %s\n", entry.Mode)
	fmt.Printf("Roots:      %s\n", strings.Join(entry.Roots, ", "))
	fmt.Printf("Found:      %d\n", entry.Summary.Found)
	fmt.Printf("New:        %d\n", entry.Summary.New)
	fmt.Printf("Updated:    %d\n", entry.Summary.Updated)
	fmt.Printf("Skipped:    %d\n", entry.Summary.Skipped)
	fmt.Printf("Errored:    %d\n", entry.Summary.Errored)
	fmt.Printf("Removed:    %d\n", entry.Summary.Removed)
	fmt.Printf("Missing:    %d\n", entry.Summary.Missing)
	fmt.Printf("Verified:   %d\n", entry.Summary.Verified)
	fmt.Printf("Mismatched: %d\n", entry.Summary.Mismatched)
	fmt.Printf("Elapsed:    %s\n", elapsed.Round(time.Millisecond))
	if entry.Summary.Interrupted {
		fmt.Println("Interrupted: yes")
	}

	if len(entry.Errors) > 0 {
		fmt.Println("\nErrors:")
		fmt.Println(strings.Repeat("-", 60))

		// Limit display to 50 errors
		limit := 50
		if len(entry.Errors) < limit {
			limit = len(entry.Errors)
		}

		for i := 0; i < limit; i++ {
			e := entry.Errors[i]
			fmt.Printf("%s: %s\n", e.Path, e.Message)
		}

		if len(entry.Errors) > limit {
			fmt.Printf("\n... and %d more errors\n", len(entry.Errors)-limit)
		}
	}

	return nil
}

// runHistorySnapshots lists the catalog's library snapshots.
func runHistorySnapshots(_ *cobra.Command, _ []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	snapshots, err := cat.Snapshots(snapshotLimit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		printInfo("No snapshots recorded yet.")
		printInfo("Run 'vidsum scan' to scan your libraries.")
		return nil
	}

	// Print header
	fmt.Printf("\n%-19s  %-10s  %-12s  %-8s  %-8s\n",
		"TIME", "FILES", "SIZE", "MISSING", "ERRORS")
	fmt.Println(strings.Repeat("-", 65))

	for _, s := range snapshots {
		fmt.Printf("%-19s  %-10d  %-12s  %-8d  %-8d\n",
			s.SnapshotAt.Local().Format("2006-01-02 15:04:05"),
			s.TotalFiles,
			types.FormatSize(s.TotalSize),
			s.MissingFiles,
			s.ErrorFiles,
		)
	}

	fmt.Println(strings.Repeat("-", 65))

	return nil
}

// runHistoryClean removes old scan reports.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	archive, err := getArchive()
	if err != nil {
		return fmt.Errorf("failed to initialize report archive: %w", err)
	}

	retentionDays := viper.GetInt("reports.retention_days")
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning scan reports older than %d days...", retentionDays)

	removed, err := archive.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean reports: %w", err)
	}

	printInfo("Removed %d report(s).", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
