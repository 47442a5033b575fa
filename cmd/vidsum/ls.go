package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/output"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

var lsCmd = &cobra.Command{
	Use:   "ls [dir]",
	Short: "List cataloged files",
	Long: `List files recorded in the catalog, with filtering and sorting.

Listing reads the catalog only and never touches the filesystem; run
'vidsum scan' first to populate it. An optional directory argument
restricts the listing to files under that path.

Examples:
  vidsum ls                            # Everything, largest first
  vidsum ls /media/movies              # Only files under a directory
  vidsum ls --ext mkv --min-size 4G    # Large Matroska files
  vidsum ls --status missing           # Files that vanished from disk
  vidsum ls --newer-than 2w --sort scanned
  vidsum ls -o paths | xargs -d '\n' ls -lh`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().IntP("limit", "l", 0, "maximum number of files to list (0=all)")
	lsCmd.Flags().StringP("min-size", "s", "", "minimum file size (e.g., 700M, 4G)")
	lsCmd.Flags().String("ext", "", "comma-separated extensions to include")
	lsCmd.Flags().StringP("type", "t", "", "file type group (video, audio, subtitle, image)")
	lsCmd.Flags().String("status", "", "comma-separated statuses (ok, error, missing)")
	lsCmd.Flags().String("include", "", "comma-separated glob patterns paths must match")
	lsCmd.Flags().String("exclude", "", "comma-separated glob patterns to skip")
	lsCmd.Flags().String("older-than", "", "only files modified before this age (e.g., 30d, 6mo, 1y)")
	lsCmd.Flags().String("newer-than", "", "only files modified within this age (e.g., 2w)")
	lsCmd.Flags().String("sort", "size", "sort field: size, age, path, scanned")
	lsCmd.Flags().BoolP("reverse", "r", false, "reverse the sort order")

	_ = viper.BindPFlag("limit", lsCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("min_size", lsCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("ext", lsCmd.Flags().Lookup("ext"))
	_ = viper.BindPFlag("type", lsCmd.Flags().Lookup("type"))
	_ = viper.BindPFlag("status", lsCmd.Flags().Lookup("status"))
	_ = viper.BindPFlag("include", lsCmd.Flags().Lookup("include"))
	_ = viper.BindPFlag("exclude", lsCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("older_than", lsCmd.Flags().Lookup("older-than"))
	_ = viper.BindPFlag("newer_than", lsCmd.Flags().Lookup("newer-than"))
	_ = viper.BindPFlag("sort", lsCmd.Flags().Lookup("sort"))
	_ = viper.BindPFlag("reverse", lsCmd.Flags().Lookup("reverse"))

	rootCmd.AddCommand(lsCmd)
}

// runLs is the ls command handler.
func runLs(_ *cobra.Command, args []string) error {
	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	fltr, err := buildFilter()
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	var entries []types.CatalogEntry
	source := "catalog"
	if len(args) == 1 {
		dirs, err := normalizePaths(args)
		if err != nil {
			return err
		}
		source = dirs[0]
		entries, err = cat.Under(dirs[0])
		if err != nil {
			return fmt.Errorf("failed to query catalog: %w", err)
		}
	} else {
		entries, err = cat.All()
		if err != nil {
			return fmt.Errorf("failed to query catalog: %w", err)
		}
	}

	filtered := fltr.Apply(entries)

	result := &output.Result{
		Rows:      output.RowsFromEntries(filtered),
		Source:    source,
		TotalRows: len(filtered),
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}
