// Package fingerprint computes partial-content fingerprints for media
// files. A fingerprint covers only the first and last chunk of a file
// plus its size, trading collision resistance for speed on large files;
// it is not a cryptographic digest.
package fingerprint

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// ChunkSize is the number of bytes hashed from each end of a file.
// Files smaller than two chunks are hashed in full.
const ChunkSize = 64 * types.KiB

// Compute returns the fingerprint string for the file at path, in the
// form "xxh64:<first>:<last>:<size>" with zero-padded lowercase hex
// hash fields and a decimal size.
func Compute(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()

	if size < 2*ChunkSize {
		return computeWhole(f, size)
	}
	return computeEnds(f, size)
}

// computeWhole hashes the entire content of a small file. The single
// hash fills both fields so the format stays uniform across sizes.
func computeWhole(f *os.File, size int64) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name(), err)
	}
	sum := h.Sum64()
	return format(sum, sum, size), nil
}

// computeEnds hashes exactly the first and last chunk of a large file.
// A short read or failed seek fails the whole fingerprint.
func computeEnds(f *os.File, size int64) (string, error) {
	chunk := make([]byte, ChunkSize)

	if _, err := io.ReadFull(f, chunk); err != nil {
		return "", fmt.Errorf("read first chunk of %s: %w", f.Name(), err)
	}
	first := xxhash.Sum64(chunk)

	if _, err := f.Seek(size-ChunkSize, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek %s: %w", f.Name(), err)
	}
	if _, err := io.ReadFull(f, chunk); err != nil {
		return "", fmt.Errorf("read final chunk of %s: %w", f.Name(), err)
	}
	last := xxhash.Sum64(chunk)

	return format(first, last, size), nil
}

func format(first, last uint64, size int64) string {
	return fmt.Sprintf("xxh64:%016x:%016x:%d", first, last, size)
}
