package main

import (
	"slices"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/filter"
)

// resetViper clears flag state between cases and restores the defaults the
// ls command binds.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	viper.SetDefault("limit", 0)
	viper.SetDefault("sort", "size")
	viper.SetDefault("reverse", false)
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]any
		wantLimit      int
		wantMinSize    int64
		wantSortBy     filter.SortField
		wantDescending bool
		wantErr        bool
	}{
		{
			name:           "defaults sort by size, largest first",
			wantSortBy:     filter.SortSize,
			wantDescending: true,
		},
		{
			name:           "explicit limit",
			flags:          map[string]any{"limit": 100},
			wantLimit:      100,
			wantSortBy:     filter.SortSize,
			wantDescending: true,
		},
		{
			name:           "minimum size",
			flags:          map[string]any{"min_size": "4G"},
			wantMinSize:    4 << 30,
			wantSortBy:     filter.SortSize,
			wantDescending: true,
		},
		{
			name:           "age sorts oldest first",
			flags:          map[string]any{"sort": "age"},
			wantSortBy:     filter.SortAge,
			wantDescending: true,
		},
		{
			name:           "path sorts ascending",
			flags:          map[string]any{"sort": "path"},
			wantSortBy:     filter.SortPath,
			wantDescending: false,
		},
		{
			name:           "reverse flips size to smallest first",
			flags:          map[string]any{"reverse": true},
			wantSortBy:     filter.SortSize,
			wantDescending: false,
		},
		{
			name:           "reverse flips path to descending",
			flags:          map[string]any{"sort": "path", "reverse": true},
			wantSortBy:     filter.SortPath,
			wantDescending: true,
		},
		{
			name:    "unknown sort field",
			flags:   map[string]any{"sort": "alphabetical"},
			wantErr: true,
		},
		{
			name:    "unparseable min size",
			flags:   map[string]any{"min_size": "huge"},
			wantErr: true,
		},
		{
			name:    "unknown status",
			flags:   map[string]any{"status": "gone"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for key, value := range tt.flags {
				viper.Set(key, value)
			}

			f, err := buildFilter()
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if f.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", f.Limit, tt.wantLimit)
			}
			if f.MinSize != tt.wantMinSize {
				t.Errorf("MinSize = %d, want %d", f.MinSize, tt.wantMinSize)
			}
			if f.SortBy != tt.wantSortBy {
				t.Errorf("SortBy = %v, want %v", f.SortBy, tt.wantSortBy)
			}
			if f.SortDescending != tt.wantDescending {
				t.Errorf("SortDescending = %v, want %v", f.SortDescending, tt.wantDescending)
			}
		})
	}
}

func TestBuildFilter_Durations(t *testing.T) {
	tests := []struct {
		name      string
		flags     map[string]any
		wantOlder time.Duration
		wantNewer time.Duration
		wantErr   bool
	}{
		{
			name:      "older than a month",
			flags:     map[string]any{"older_than": "30d"},
			wantOlder: 30 * 24 * time.Hour,
		},
		{
			name:      "newer than a week",
			flags:     map[string]any{"newer_than": "1w"},
			wantNewer: 7 * 24 * time.Hour,
		},
		{
			name:      "both bounds",
			flags:     map[string]any{"older_than": "1w", "newer_than": "90d"},
			wantOlder: 7 * 24 * time.Hour,
			wantNewer: 90 * 24 * time.Hour,
		},
		{
			name:    "bad older than",
			flags:   map[string]any{"older_than": "soon"},
			wantErr: true,
		},
		{
			name:    "bad newer than",
			flags:   map[string]any{"newer_than": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for key, value := range tt.flags {
				viper.Set(key, value)
			}

			f, err := buildFilter()
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if f.OlderThan != tt.wantOlder {
				t.Errorf("OlderThan = %v, want %v", f.OlderThan, tt.wantOlder)
			}
			if f.NewerThan != tt.wantNewer {
				t.Errorf("NewerThan = %v, want %v", f.NewerThan, tt.wantNewer)
			}
		})
	}
}

func TestBuildFilter_Extensions(t *testing.T) {
	tests := []struct {
		name      string
		flags     map[string]any
		wantCount int
		wantErr   bool
	}{
		{
			name:      "video type group",
			flags:     map[string]any{"type": "video"},
			wantCount: len(filter.TypeGroups["video"]),
		},
		{
			name:      "multiple type groups",
			flags:     map[string]any{"type": "video,subtitle"},
			wantCount: len(filter.TypeGroups["video"]) + len(filter.TypeGroups["subtitle"]),
		},
		{
			name:      "custom extensions",
			flags:     map[string]any{"ext": ".mp4,.mkv"},
			wantCount: 2,
		},
		{
			name:      "extensions without dots",
			flags:     map[string]any{"ext": "mp4,mkv"},
			wantCount: 2,
		},
		{
			name:      "group combined with extensions",
			flags:     map[string]any{"type": "subtitle", "ext": "mkv"},
			wantCount: len(filter.TypeGroups["subtitle"]) + 1,
		},
		{
			name:    "unknown type group",
			flags:   map[string]any{"type": "spreadsheet"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for key, value := range tt.flags {
				viper.Set(key, value)
			}

			f, err := buildFilter()
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(f.Extensions) != tt.wantCount {
				t.Errorf("Extensions count = %d, want %d", len(f.Extensions), tt.wantCount)
			}
		})
	}
}

func TestParseCommaSeparated(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"mkv,mp4", []string{"mkv", "mp4"}},
		{"mkv, mp4, avi", []string{"mkv", "mp4", "avi"}},
		{"mkv", []string{"mkv"}},
		{"mkv,,mp4,", []string{"mkv", "mp4"}},
		{"", nil},
	}
	for _, tc := range cases {
		if got := parseCommaSeparated(tc.in); !slices.Equal(got, tc.want) {
			t.Errorf("parseCommaSeparated(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestResolveFormatter(t *testing.T) {
	cases := []struct {
		name    string
		format  string
		tmpl    string
		wantErr bool
	}{
		{name: "empty falls back to pretty"},
		{name: "plain", format: "plain"},
		{name: "json", format: "json"},
		{name: "paths", format: "paths"},
		{name: "template with body", format: "template", tmpl: "{{.Path}}"},
		{name: "template without body", format: "template", wantErr: true},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetViper(t)
			viper.Set("output.format", tc.format)
			viper.Set("template", tc.tmpl)

			formatter, err := resolveFormatter()
			if (err != nil) != tc.wantErr {
				t.Fatalf("resolveFormatter() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && formatter == nil {
				t.Error("resolveFormatter() returned nil formatter without error")
			}
		})
	}
}
