package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Calendar durations for age filters. Months and years are fixed-length
// approximations; age filtering does not need calendar arithmetic.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

// ErrInvalidDuration indicates that the duration string could not be parsed.
var ErrInvalidDuration = errors.New("invalid duration format")

// ErrNegativeValue indicates that a negative value was provided.
var ErrNegativeValue = errors.New("value cannot be negative")

// calendarUnits maps age-filter suffixes to their durations. "mo" must
// stay ahead of any single-letter unit it overlaps with.
var calendarUnits = []struct {
	suffix string
	unit   time.Duration
}{
	{"mo", Month},
	{"d", Day},
	{"w", Week},
	{"y", Year},
}

// ParseDuration parses an age-filter duration. On top of Go's native
// forms ("24h", "90m", "1h30m") it accepts calendar suffixes: "30d",
// "2w", "3mo", "1y". Values may be fractional ("1.5d") and matching is
// case-insensitive.
//
// Returns ErrInvalidDuration if the format is not recognized and
// ErrNegativeValue if the value is negative.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeValue
	}

	for _, cu := range calendarUnits {
		number, ok := strings.CutSuffix(s, cu.suffix)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		return time.Duration(value * float64(cu.unit)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return d, nil
}
