package discover

import "sync"

// visitedSet tracks canonicalized directory paths for symlink cycle
// detection. Its lifetime is bounded to a single walk.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// checkAndAdd reports whether path was already present, inserting it if
// not. The check and the insert form one critical section so two
// callers can never both observe "not visited" for the same path.
func (v *visitedSet) checkAndAdd(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[path]; ok {
		return true
	}
	v.seen[path] = struct{}{}
	return false
}
