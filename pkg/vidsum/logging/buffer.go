package logging

import (
	"sync"
	"time"
)

// DefaultBufferSize is the default number of entries the ring buffer keeps.
const DefaultBufferSize = 100

// Entry is a single log record retained for TUI display.
type Entry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
}

// Buffer holds recent log entries in a fixed-size ring for the TUI log
// panel. It is safe for concurrent use.
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	maxSize int
	start   int // index of oldest entry
	count   int
}

// NewBuffer creates a ring buffer with the given capacity.
func NewBuffer(maxSize int) *Buffer {
	if maxSize <= 0 {
		maxSize = DefaultBufferSize
	}
	return &Buffer{
		entries: make([]Entry, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an entry, overwriting the oldest once the buffer is full.
func (b *Buffer) Add(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := (b.start + b.count) % b.maxSize
	b.entries[idx] = entry

	if b.count < b.maxSize {
		b.count++
	} else {
		b.start = (b.start + 1) % b.maxSize
	}
}

// Entries returns a copy of all buffered entries, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]Entry, b.count)
	for i := range result {
		result[i] = b.entries[(b.start+i)%b.maxSize]
	}
	return result
}

// Last returns the most recent n entries, newest last. If n exceeds the
// buffered count, all entries are returned.
func (b *Buffer) Last(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.count {
		n = b.count
	}

	result := make([]Entry, n)
	offset := b.count - n
	for i := range result {
		result[i] = b.entries[(b.start+offset+i)%b.maxSize]
	}
	return result
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Clear removes all entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = 0
	b.count = 0
}
