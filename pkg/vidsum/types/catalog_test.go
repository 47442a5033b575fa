package types

import (
	"testing"
	"time"
)

func TestNewCatalogEntry(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		filename  string
		directory string
		extension string
	}{
		{
			name:      "regular video file",
			path:      "/media/movies/heat.mkv",
			filename:  "heat.mkv",
			directory: "/media/movies",
			extension: "mkv",
		},
		{
			name:      "uppercase extension lowered",
			path:      "/media/movies/ALIEN.MP4",
			filename:  "ALIEN.MP4",
			directory: "/media/movies",
			extension: "mp4",
		},
		{
			name:      "no extension",
			path:      "/media/movies/README",
			filename:  "README",
			directory: "/media/movies",
			extension: "",
		},
		{
			name:      "multiple dots keeps last",
			path:      "/media/shows/s01e01.1080p.mkv",
			filename:  "s01e01.1080p.mkv",
			directory: "/media/shows",
			extension: "mkv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewCatalogEntry(tt.path)
			if e.Path != tt.path {
				t.Errorf("Path = %q, want %q", e.Path, tt.path)
			}
			if e.Filename != tt.filename {
				t.Errorf("Filename = %q, want %q", e.Filename, tt.filename)
			}
			if e.Directory != tt.directory {
				t.Errorf("Directory = %q, want %q", e.Directory, tt.directory)
			}
			if e.Extension != tt.extension {
				t.Errorf("Extension = %q, want %q", e.Extension, tt.extension)
			}
		})
	}
}

func TestCatalogEntryUpToDate(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	entry := CatalogEntry{Size: 4096, ModTime: base}

	tests := []struct {
		name    string
		size    int64
		modTime time.Time
		want    bool
	}{
		{"identical", 4096, base, true},
		{"sub-second drift ignored", 4096, base.Add(500 * time.Millisecond), true},
		{"size changed", 8192, base, false},
		{"mtime changed", 4096, base.Add(2 * time.Second), false},
		{"both changed", 8192, base.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.UpToDate(tt.size, tt.modTime); got != tt.want {
				t.Errorf("UpToDate(%d, %v) = %v, want %v", tt.size, tt.modTime, got, tt.want)
			}
		})
	}
}

func TestCatalogEntryHumanSize(t *testing.T) {
	e := CatalogEntry{Size: 2 * MiB}
	if got := e.HumanSize(); got != "2.0 MiB" {
		t.Errorf("HumanSize() = %q, want %q", got, "2.0 MiB")
	}
}
