package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags; see the stave build targets.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version, commit hash, and build date of vidsum.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Print(versionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionString assembles the version report. Binaries built without
// ldflags fall back to the VCS revision the Go toolchain embeds.
func versionString() string {
	rev := commit
	if rev == "none" {
		rev = vcsRevision()
	}
	return fmt.Sprintf("vidsum %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s\n",
		version, rev, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// vcsRevision reads the revision recorded in the build info, or "none"
// when the binary was built outside a repository.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "none"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return "none"
}
