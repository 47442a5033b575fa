package filter

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// Filter defines criteria for filtering, sorting, and limiting catalog entries.
type Filter struct {
	// MinSize is the minimum file size in bytes. Entries smaller are excluded.
	MinSize int64

	// Include contains glob patterns. If non-empty, entries must match at least one.
	Include []string

	// Exclude contains glob patterns. Matching entries are excluded.
	Exclude []string

	// Extensions contains file extensions to include, lowercase without the
	// leading dot (e.g., "mp4", "mkv"). If non-empty, only entries with
	// matching extensions are included.
	Extensions []string

	// Statuses contains scan statuses to include. If non-empty, only entries
	// with one of these statuses are included.
	Statuses []string

	// Under restricts entries to those inside the given directory.
	Under string

	// OlderThan excludes entries modified more recently than this duration ago.
	OlderThan time.Duration

	// NewerThan excludes entries modified longer ago than this duration.
	NewerThan time.Duration

	// SortBy specifies the field to sort results by.
	SortBy SortField

	// SortDescending specifies whether to sort in descending order.
	SortDescending bool

	// Limit is the maximum number of entries to return. 0 means unlimited.
	Limit int
}

// Option is a functional option for configuring a Filter.
type Option func(*Filter)

// New creates a new Filter with the given options.
// Default values:
//   - Limit: 0 (unlimited)
//   - SortBy: SortPath
//   - SortDescending: false
func New(opts ...Option) *Filter {
	f := &Filter{
		SortBy: SortPath,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// WithLimit sets the maximum number of entries to return.
// If limit <= 0, it is set to 0 (unlimited).
func WithLimit(limit int) Option {
	return func(f *Filter) {
		if limit < 0 {
			limit = 0
		}
		f.Limit = limit
	}
}

// WithMinSize sets the minimum file size in bytes.
// If minSize < 0, it is set to 0.
func WithMinSize(minSize int64) Option {
	return func(f *Filter) {
		if minSize < 0 {
			minSize = 0
		}
		f.MinSize = minSize
	}
}

// WithInclude sets the include glob patterns.
// If any patterns are specified, entries must match at least one to be included.
func WithInclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Include = patterns
	}
}

// WithExclude sets the exclude glob patterns.
// Entries matching any pattern are excluded.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Exclude = patterns
	}
}

// WithExtensions sets the file extensions to include.
// Extensions are normalized: lowercase with any leading dot removed.
func WithExtensions(extensions ...string) Option {
	return func(f *Filter) {
		f.Extensions = NormalizeExtensions(extensions)
	}
}

// WithStatuses sets the scan statuses to include.
func WithStatuses(statuses ...string) Option {
	return func(f *Filter) {
		f.Statuses = statuses
	}
}

// WithUnder restricts results to entries inside the given directory.
func WithUnder(dir string) Option {
	return func(f *Filter) {
		f.Under = filepath.Clean(dir)
	}
}

// WithOlderThan sets the minimum age of entries to include.
// Entries modified more recently than this duration ago are excluded.
func WithOlderThan(d time.Duration) Option {
	return func(f *Filter) {
		f.OlderThan = d
	}
}

// WithNewerThan sets the maximum age of entries to include.
// Entries modified longer ago than this duration are excluded.
func WithNewerThan(d time.Duration) Option {
	return func(f *Filter) {
		f.NewerThan = d
	}
}

// WithSortBy sets the field to sort results by.
func WithSortBy(field SortField) Option {
	return func(f *Filter) {
		f.SortBy = field
	}
}

// WithSortDescending sets whether to sort in descending order.
func WithSortDescending(desc bool) Option {
	return func(f *Filter) {
		f.SortDescending = desc
	}
}

// Match returns true if the entry matches all filter criteria.
// It checks MinSize, Extensions, Statuses, Under, OlderThan, NewerThan,
// Exclude patterns, and Include patterns in that order.
func (f *Filter) Match(e types.CatalogEntry) bool {
	if !f.matchSize(e) {
		return false
	}
	if !f.matchExtension(e) {
		return false
	}
	if !f.matchStatus(e) {
		return false
	}
	if !f.matchUnder(e) {
		return false
	}
	if !f.matchAge(e) {
		return false
	}
	if !f.matchPatterns(e) {
		return false
	}
	return true
}

// matchSize checks if the entry meets the minimum size requirement.
func (f *Filter) matchSize(e types.CatalogEntry) bool {
	return f.MinSize <= 0 || e.Size >= f.MinSize
}

// matchExtension checks if the entry has an allowed extension.
func (f *Filter) matchExtension(e types.CatalogEntry) bool {
	if len(f.Extensions) == 0 {
		return true
	}
	return slices.Contains(f.Extensions, e.Extension)
}

// matchStatus checks if the entry has an allowed scan status.
func (f *Filter) matchStatus(e types.CatalogEntry) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	return slices.Contains(f.Statuses, e.Status)
}

// matchUnder checks if the entry lives inside the restricted directory.
func (f *Filter) matchUnder(e types.CatalogEntry) bool {
	if f.Under == "" {
		return true
	}
	if e.Directory == f.Under {
		return true
	}
	return strings.HasPrefix(e.Path, f.Under+string(filepath.Separator))
}

// matchAge checks if the entry meets the age requirements.
func (f *Filter) matchAge(e types.CatalogEntry) bool {
	now := time.Now()

	// Check older than (entry must be older than this duration)
	if f.OlderThan > 0 {
		threshold := now.Add(-f.OlderThan)
		if e.ModTime.After(threshold) {
			return false
		}
	}

	// Check newer than (entry must be newer than this duration)
	if f.NewerThan > 0 {
		threshold := now.Add(-f.NewerThan)
		if e.ModTime.Before(threshold) {
			return false
		}
	}

	return true
}

// matchPatterns checks if the entry matches include/exclude patterns.
func (f *Filter) matchPatterns(e types.CatalogEntry) bool {
	// Check exclude patterns
	if f.matchesAnyPattern(e.Path, f.Exclude) {
		return false
	}

	// Check include patterns (if any specified, must match at least one)
	if len(f.Include) > 0 && !f.matchesAnyPattern(e.Path, f.Include) {
		return false
	}

	return true
}

// matchesAnyPattern returns true if the path matches any of the glob patterns.
func (f *Filter) matchesAnyPattern(path string, patterns []string) bool {
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue // Skip invalid patterns
		}
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of the entries slice based on the filter's
// sort settings. The original slice is not modified.
func (f *Filter) Sort(entries []types.CatalogEntry) []types.CatalogEntry {
	if len(entries) == 0 {
		return []types.CatalogEntry{}
	}

	// Make a copy to avoid modifying the original
	sorted := make([]types.CatalogEntry, len(entries))
	copy(sorted, entries)

	slices.SortFunc(sorted, func(a, b types.CatalogEntry) int {
		var result int
		switch f.SortBy {
		case SortSize:
			result = cmp.Compare(a.Size, b.Size)
		case SortAge:
			// Older files sort as "larger" so age ordering reads naturally
			result = -a.ModTime.Compare(b.ModTime)
		case SortScanned:
			result = a.ScannedAt.Compare(b.ScannedAt)
		case SortPath:
			result = cmp.Compare(a.Path, b.Path)
		default:
			result = cmp.Compare(a.Path, b.Path)
		}

		if f.SortDescending {
			return -result
		}
		return result
	})

	return sorted
}

// Apply runs the complete filtering pipeline: Match, Sort, and Limit.
// It returns a new slice containing only the entries that pass all filters,
// sorted according to the filter settings, and limited to the specified count.
func (f *Filter) Apply(entries []types.CatalogEntry) []types.CatalogEntry {
	// Filter
	var matched []types.CatalogEntry
	for _, e := range entries {
		if f.Match(e) {
			matched = append(matched, e)
		}
	}

	// Sort
	sorted := f.Sort(matched)

	// Limit
	if f.Limit > 0 && len(sorted) > f.Limit {
		return sorted[:f.Limit]
	}

	return sorted
}
