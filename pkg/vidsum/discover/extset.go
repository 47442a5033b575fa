package discover

import (
	"path/filepath"
	"strings"
)

// extSet is a lowercased extension lookup built once at walk start.
type extSet map[string]struct{}

// newExtSet normalizes extensions by lowercasing and stripping any
// leading dot. Empty entries are dropped.
func newExtSet(extensions []string) extSet {
	set := make(extSet, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

// match reports whether name carries an extension in the set. A name
// whose only dot is the leading one has no extension and never matches.
func (s extSet) match(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return false
	}
	_, ok := s[strings.ToLower(ext[1:])]
	return ok
}
