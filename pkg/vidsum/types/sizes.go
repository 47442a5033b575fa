package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units. They are untyped so they can
// be used in both int and int64 contexts without conversion.
const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
	TiB = 1 << 40
)

// ErrInvalidSize reports a size string that could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize reports a negative size value.
var ErrNegativeSize = errors.New("size cannot be negative")

// sizeUnits lists accepted suffixes with their multipliers, longest
// first so "KiB" is cut before "B" could match.
var sizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"KIB", KiB}, {"MIB", MiB}, {"GIB", GiB}, {"TIB", TiB},
	{"KB", KiB}, {"MB", MiB}, {"GB", GiB}, {"TB", TiB}, {"IB", 1},
	{"K", KiB}, {"M", MiB}, {"G", GiB}, {"T", TiB}, {"B", 1},
	{"", 1},
}

// ParseSize converts a human-readable size such as "1024", "512B",
// "100k", "50MiB", or "1.5GB" into a byte count. Suffixes are
// case-insensitive and always mean binary (IEC) multiples, so "100KB"
// and "100KiB" both parse to 102400. Fractional values truncate to
// whole bytes, and whitespace around the number and suffix is ignored.
//
// Unparseable input returns ErrInvalidSize; a leading minus sign
// returns ErrNegativeSize.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	upper := strings.ToUpper(s)
	for _, u := range sizeUnits {
		number, ok := strings.CutSuffix(upper, u.suffix)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
		}
		return int64(value * float64(u.mult)), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
}

// FormatSize renders a byte count in binary (IEC) units, the same
// convention ParseSize reads: 0 becomes "0 B", 1024 becomes "1.0 KiB",
// and 1536*1024 becomes "1.5 MiB".
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
