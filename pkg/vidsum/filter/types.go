// Package filter provides filtering, sorting, and limiting functionality
// for catalog entries in the vidsum video library scanner. It supports
// filtering by size, age, extension, scan status, patterns, and directory,
// with configurable sorting and limits.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// SortField specifies the field to sort entries by.
type SortField int

const (
	// SortPath sorts entries by path alphabetically.
	SortPath SortField = iota
	// SortSize sorts entries by size in bytes.
	SortSize
	// SortAge sorts entries by modification time.
	SortAge
	// SortScanned sorts entries by the time they were last scanned.
	SortScanned
)

// Sort field string constants.
const (
	sortFieldPath    = "path"
	sortFieldSize    = "size"
	sortFieldAge     = "age"
	sortFieldScanned = "scanned"
)

// String returns the string representation of the sort field.
func (s SortField) String() string {
	switch s {
	case SortPath:
		return sortFieldPath
	case SortSize:
		return sortFieldSize
	case SortAge:
		return sortFieldAge
	case SortScanned:
		return sortFieldScanned
	default:
		return sortFieldPath
	}
}

// ErrInvalidSortField indicates that the sort field string could not be parsed.
var ErrInvalidSortField = errors.New("invalid sort field")

// ParseSortField parses a string into a SortField.
// Valid values are "path", "size", "age", and "scanned" (case-insensitive).
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(s) {
	case sortFieldPath:
		return SortPath, nil
	case sortFieldSize:
		return SortSize, nil
	case sortFieldAge:
		return SortAge, nil
	case sortFieldScanned:
		return SortScanned, nil
	default:
		return SortPath, fmt.Errorf("%w: %q", ErrInvalidSortField, s)
	}
}

// ErrInvalidStatus indicates that the status string is not a known scan status.
var ErrInvalidStatus = errors.New("invalid scan status")

// ParseStatus validates a scan status string.
// Valid values are "ok", "error", and "missing" (case-insensitive).
func ParseStatus(s string) (string, error) {
	switch strings.ToLower(s) {
	case types.StatusOK:
		return types.StatusOK, nil
	case types.StatusError:
		return types.StatusError, nil
	case types.StatusMissing:
		return types.StatusMissing, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// TypeGroups maps type group names to extension lists, dot-less to match
// the extension field stored in the catalog. The video group is broader
// than DefaultExtensions, so "--type video" matches containers a library
// carries without being configured for them.
var TypeGroups = map[string][]string{
	"video": {
		"mkv", "mp4", "avi", "webm", "m4v", "mov", "wmv", "flv",
		"mpeg", "mpg", "ts", "m2ts", "vob", "ogv", "3gp",
	},
	"audio": {
		"mp3", "flac", "wav", "aac", "ogg", "wma", "m4a", "opus",
	},
	"subtitle": {
		"srt", "sub", "ass", "ssa", "vtt", "idx",
	},
	"image": {
		"jpg", "jpeg", "png", "gif", "bmp", "webp",
	},
}

// ErrUnknownTypeGroup indicates a type group name with no TypeGroups entry.
var ErrUnknownTypeGroup = errors.New("unknown type group")

// ExpandTypeGroups resolves type group names into their extension lists.
func ExpandTypeGroups(groups []string) ([]string, error) {
	var exts []string
	for _, g := range groups {
		name := strings.ToLower(strings.TrimSpace(g))
		if name == "" {
			continue
		}
		groupExts, ok := TypeGroups[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTypeGroup, name, availableTypeGroups())
		}
		exts = append(exts, groupExts...)
	}
	return exts, nil
}

// availableTypeGroups returns the group names, sorted for stable errors.
func availableTypeGroups() string {
	names := make([]string, 0, len(TypeGroups))
	for name := range TypeGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// NormalizeExtensions lowercases extensions and strips any leading dot so
// they compare equal to the extension field stored in the catalog.
// Empty strings are dropped.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext == "" {
			continue
		}
		normalized = append(normalized, ext)
	}
	return normalized
}
