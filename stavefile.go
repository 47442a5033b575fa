//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default is the target run by a bare `stave` invocation.
var Default = Build

// Aliases map single letters to the common targets.
var Aliases = map[string]any{
	"b": Build,
	"t": Test,
	"l": Lint,
	"i": Install,
	"c": Clean,
}

const (
	binaryName = "vidsum"
	mainPkg    = "./cmd/vidsum"
	binDir     = "bin"
)

// All lints and tests, then builds.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Build compiles the vidsum binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(),
		"-o", exeName(filepath.Join(binDir, binaryName)), mainPkg)
}

// Install builds vidsum and copies it into the install directory.
func Install() error {
	st.Deps(Build)

	dir, err := installDir()
	if err != nil {
		return err
	}

	src := exeName(filepath.Join(binDir, binaryName))
	dst := exeName(filepath.Join(dir, binaryName))
	if st.Verbose() {
		fmt.Printf("Installing %s to %s\n", src, dst)
	}
	return sh.Copy(dst, src)
}

// Uninstall removes the installed vidsum binary.
func Uninstall() error {
	dir, err := installDir()
	if err != nil {
		return err
	}

	target := exeName(filepath.Join(dir, binaryName))
	if _, err := os.Stat(target); os.IsNotExist(err) {
		if st.Verbose() {
			fmt.Printf("Binary not found at %s, nothing to uninstall\n", target)
		}
		return nil
	}

	if st.Verbose() {
		fmt.Printf("Removing %s\n", target)
	}
	return os.Remove(target)
}

// Test runs the test suite with the race detector on.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Cover runs the test suite and writes an HTML coverage report.
func Cover() error {
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if st.Verbose() {
		fmt.Printf("Removing %s/\n", binDir)
	}
	return sh.Rm(binDir + "/")
}

// Fmt runs gofmt and goimports over the tree.
func Fmt() error {
	for _, tool := range []string{"gofmt", "goimports"} {
		if err := sh.Run(tool, "-w", "."); err != nil {
			return fmt.Errorf("running %s: %w", tool, err)
		}
	}
	return nil
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

// installDir resolves where binaries install: GOBIN, then GOPATH/bin,
// then /usr/local/bin.
func installDir() (string, error) {
	gocmd := st.GoCmd()

	if bin, err := sh.Output(gocmd, "env", "GOBIN"); err != nil {
		return "", fmt.Errorf("reading GOBIN: %w", err)
	} else if bin != "" {
		return bin, nil
	}

	gopath, err := sh.Output(gocmd, "env", "GOPATH")
	if err != nil {
		return "", fmt.Errorf("reading GOPATH: %w", err)
	}
	if gopath != "" {
		return filepath.Join(gopath, "bin"), nil
	}
	return "/usr/local/bin", nil
}

// exeName appends .exe on windows.
func exeName(path string) string {
	if runtime.GOOS == "windows" {
		return path + ".exe"
	}
	return path
}

// buildLdflags injects git version metadata into the version command.
func buildLdflags() string {
	gitOr := func(fallback string, args ...string) string {
		out, err := sh.Output("git", args...)
		if err != nil || out == "" {
			return fallback
		}
		return strings.TrimSpace(out)
	}

	pkg := "github.com/vidsum/vidsum/cmd/vidsum"
	return fmt.Sprintf("-X %s.version=%s -X %s.commit=%s -X %s.date=%s",
		pkg, gitOr("dev", "describe", "--tags", "--always"),
		pkg, gitOr("unknown", "rev-parse", "--short", "HEAD"),
		pkg, time.Now().Format(time.RFC3339))
}
