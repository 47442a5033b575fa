package filter

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr error
	}{
		{name: "days", input: "30d", want: 30 * Day},
		{name: "single day", input: "1d", want: Day},
		{name: "weeks", input: "2w", want: 2 * Week},
		{name: "months", input: "3mo", want: 3 * Month},
		{name: "years", input: "1y", want: Year},
		{name: "hours", input: "24h", want: 24 * time.Hour},
		{name: "minutes", input: "90m", want: 90 * time.Minute},
		{name: "seconds", input: "45s", want: 45 * time.Second},
		{name: "fractional days", input: "1.5d", want: 36 * time.Hour},
		{name: "go duration fallback", input: "1h30m", want: 90 * time.Minute},
		{name: "whitespace tolerated", input: "  7d  ", want: 7 * Day},
		{name: "uppercase suffix", input: "2W", want: 2 * Week},
		{name: "empty string", input: "", wantErr: ErrInvalidDuration},
		{name: "negative", input: "-1d", wantErr: ErrNegativeValue},
		{name: "garbage", input: "abc", wantErr: ErrInvalidDuration},
		{name: "missing value", input: "d", wantErr: ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDuration(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
