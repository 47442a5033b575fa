package types

import (
	"errors"
	"testing"
)

// TestSizeConstants pins the unit values and keeps the constants
// untyped: derived constants like the hasher's chunk size must slot
// into int contexts (slice literals, strconv.Itoa) as well as the
// int64 contexts of file sizes and seek offsets.
func TestSizeConstants(t *testing.T) {
	asInt := []int{KiB, MiB, GiB}
	if asInt[0] != 1024 || asInt[1] != 1024*1024 || asInt[2] != 1024*1024*1024 {
		t.Errorf("unit constants = %v, want [1024 1048576 1073741824]", asInt)
	}

	var asInt64 int64 = TiB
	if asInt64 != 1099511627776 {
		t.Errorf("TiB = %d, want 1099511627776", asInt64)
	}
}

func TestParseSize(t *testing.T) {
	valid := []struct {
		input string
		want  int64
	}{
		{"1024", 1024},
		{"0", 0},
		{"512B", 512},
		{"512b", 512},
		{"100K", 100 * KiB},
		{"100k", 100 * KiB},
		{"100KB", 100 * KiB},
		{"100KiB", 100 * KiB},
		{"50M", 50 * MiB},
		{"50MiB", 50 * MiB},
		{"2G", 2 * GiB},
		{"2gb", 2 * GiB},
		{"1T", TiB},
		{"1TiB", TiB},
		{"  100M", 100 * MiB},
		{"100M  ", 100 * MiB},
		{"100 M", 100 * MiB},
		{"1.5G", 1610612736}, // fractions truncate to whole bytes
	}

	for _, tc := range valid {
		got, err := ParseSize(tc.input)
		if err != nil {
			t.Errorf("ParseSize(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}

	invalid := []string{"", "   ", "100X", "abc", "M", "100M100", "100 K B"}
	for _, input := range invalid {
		if _, err := ParseSize(input); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("ParseSize(%q) error = %v, want ErrInvalidSize", input, err)
		}
	}

	for _, input := range []string{"-1", "-100M"} {
		if _, err := ParseSize(input); !errors.Is(err, ErrNegativeSize) {
			t.Errorf("ParseSize(%q) error = %v, want ErrNegativeSize", input, err)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{KiB, "1.0 KiB"},
		{MiB, "1.0 MiB"},
		{GiB, "1.0 GiB"},
		{TiB, "1.0 TiB"},
		{1536 * KiB, "1.5 MiB"},
	}

	for _, tc := range cases {
		if got := FormatSize(tc.bytes); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, size := range []int64{0, 512, KiB, 100 * MiB, 2 * GiB} {
		parsed, err := ParseSize(FormatSize(size))
		if err != nil {
			t.Fatalf("ParseSize(FormatSize(%d)) error: %v", size, err)
		}
		if parsed != size {
			t.Errorf("round trip of %d produced %d", size, parsed)
		}
	}
}
