package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/cache"
	"github.com/vidsum/vidsum/pkg/vidsum/fingerprint"
	"github.com/vidsum/vidsum/pkg/vidsum/output"
	"github.com/vidsum/vidsum/pkg/vidsum/scan"
	"github.com/vidsum/vidsum/pkg/vidsum/tuner"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

var hashCmd = &cobra.Command{
	Use:   "hash <paths...>",
	Short: "Fingerprint files without touching the catalog",
	Long: `Hash computes the partial-content fingerprint of each given file.

The fingerprint covers the first and last 64 KiB of the file plus its
size, so hashing is fast even for very large media files. Results come
from the fingerprint cache when size and modification time still match;
use --no-cache to force recomputation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

// runHash is the hash command handler.
func runHash(_ *cobra.Command, args []string) error {
	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	paths, err := normalizePaths(args)
	if err != nil {
		return err
	}

	// Stat everything up front: a missing path or a directory is a
	// usage error, not a per-file hash failure.
	infos := make(map[string]fs.FileInfo, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("path does not exist: %s", p)
			}
			return fmt.Errorf("cannot access path: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory (use 'vidsum scan' for directories)", p)
		}
		infos[p] = info
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping...")
		cancel()
	}()

	c := openCache()
	if c != nil {
		defer func() { _ = c.Close() }()
	}

	// Consult the cache before hashing
	byPath := make(map[string]types.Fingerprint, len(paths))
	pending := make([]string, 0, len(paths))
	for _, p := range paths {
		if c != nil {
			info := infos[p]
			if hash, ok := c.Lookup(p, info.Size(), info.ModTime()); ok {
				byPath[p] = types.Fingerprint{Path: p, Hash: hash}
				continue
			}
		}
		pending = append(pending, p)
	}
	cached := len(paths) - len(pending)
	if cached > 0 {
		printVerbose("%d of %d fingerprints served from cache", cached, len(paths))
	}

	interrupted := false
	if len(pending) > 0 {
		optConfig := tuner.CalculateWithOverrides(tuner.Detect(),
			viper.GetInt("workers.stat"), viper.GetInt("workers.hash"))

		display := newProgressDisplay(!getQuiet())
		fps, err := fingerprint.HashAll(ctx, pending, fingerprint.Options{
			Workers: optConfig.HashWorkers,
			OnProgress: func(processed, total int, rate float64) {
				display.update(scan.Progress{
					Phase: scan.PhaseHash,
					Done:  cached + processed,
					Total: len(paths),
					Rate:  rate,
				})
			},
		})
		display.finish()
		if err != nil {
			interrupted = true
		}

		fill := make(map[string]*cache.Entry)
		for _, fp := range fps {
			byPath[fp.Path] = fp
			if c != nil && fp.OK() {
				info := infos[fp.Path]
				fill[fp.Path] = &cache.Entry{
					Size:  info.Size(),
					Mtime: info.ModTime().UnixNano(),
					Hash:  fp.Hash,
				}
			}
		}
		if len(fill) > 0 {
			if err := c.PutBatch(fill); err != nil {
				printVerbose("Failed to update fingerprint cache: %v", err)
			}
		}
	}

	// Preserve input order; interrupted runs simply stop short.
	ordered := make([]types.Fingerprint, 0, len(paths))
	for _, p := range paths {
		if fp, ok := byPath[p]; ok {
			ordered = append(ordered, fp)
		}
	}

	rows := output.RowsFromFingerprints(ordered)
	result := &output.Result{
		Rows:        rows,
		Source:      strings.Join(paths, ", "),
		TotalRows:   len(rows),
		Interrupted: interrupted,
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}
