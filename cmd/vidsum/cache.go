package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vidsum/vidsum/pkg/vidsum/cache"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the fingerprint cache",
	Long: `Commands for managing the fingerprint cache.

The cache stores computed fingerprints keyed by path, size, and
modification time, so repeat scans skip rehashing unchanged files.
Cache data is stored in the XDG cache directory (typically
~/.cache/vidsum/fingerprints).`,
}

var cacheClearUnder string

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached fingerprints",
	Long: `Removes cached fingerprints. The next scan will rehash every file.

With --under, only entries below the given directory are dropped.`,
	RunE: runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays the cache location, entry count, size, and last modified time.`,
	RunE:  runCacheStats,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the fingerprint cache directory.`,
	RunE:  runCachePath,
}

func init() {
	cacheClearCmd.Flags().StringVar(&cacheClearUnder, "under", "", "only clear entries under this directory")

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// runCacheClear removes cached fingerprints.
func runCacheClear(_ *cobra.Command, _ []string) error {
	cachePath, err := fingerprintCachePath()
	if err != nil {
		return err
	}

	// Check if cache exists
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		fmt.Println("Cache is already empty.")
		return nil
	}

	if cacheClearUnder != "" {
		dirs, err := normalizePaths([]string{cacheClearUnder})
		if err != nil {
			return err
		}

		c, err := cache.Open(cachePath)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer c.Close()

		if err := c.Clear(dirs[0]); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Printf("Cleared cached fingerprints under %s.\n", dirs[0])
		return nil
	}

	// Dropping the directory reclaims badger's value log space too.
	if err := os.RemoveAll(cachePath); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("Cache cleared.")
	return nil
}

// runCacheStats displays cache location, entry count, and size.
func runCacheStats(_ *cobra.Command, _ []string) error {
	cachePath, err := fingerprintCachePath()
	if err != nil {
		return err
	}

	info, err := os.Stat(cachePath)
	if os.IsNotExist(err) {
		fmt.Println("Cache: empty (not yet created)")
		fmt.Printf("Cache location: %s\n", cachePath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat cache: %w", err)
	}

	c, err := cache.Open(cachePath)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer c.Close()

	entries, err := c.Count()
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}

	// On-disk size across badger's table and value log files
	var size int64
	err = filepath.Walk(cachePath, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to calculate cache size: %w", err)
	}

	fmt.Printf("Cache location: %s\n", cachePath)
	fmt.Printf("Cached fingerprints: %d\n", entries)
	fmt.Printf("Cache size: %s\n", types.FormatSize(size))
	fmt.Printf("Last modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	return nil
}

// runCachePath prints the cache directory.
func runCachePath(_ *cobra.Command, _ []string) error {
	cachePath, err := fingerprintCachePath()
	if err != nil {
		return err
	}
	fmt.Println(cachePath)
	return nil
}
