package cache

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("cache entry not found")

// Cache wraps Badger for fingerprint cache operations.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a fingerprint cache at the given directory.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached fingerprint for path if one exists and is still
// valid for the given size and modification time.
func (c *Cache) Lookup(path string, size int64, modTime time.Time) (string, bool) {
	entry, err := c.Get(path)
	if err != nil {
		return "", false
	}
	if !entry.Valid(size, modTime) {
		return "", false
	}
	return entry.Hash, true
}

// Get retrieves a cached entry by path.
func (c *Cache) Get(path string) (*Entry, error) {
	key := makeKey(path)
	var entry Entry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(entry.Decode)
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores a cached entry for path.
func (c *Cache) Put(path string, entry *Entry) error {
	value, err := entry.Encode()
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(path), value)
	})
}

// PutBatch stores multiple entries efficiently in a single write batch.
func (c *Cache) PutBatch(entries map[string]*Entry) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for path, entry := range entries {
		value, err := entry.Encode()
		if err != nil {
			return err
		}
		if err := wb.Set(makeKey(path), value); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Delete removes the cached entry for path.
func (c *Cache) Delete(path string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(makeKey(path))
	})
}

// Clear removes all cached entries under the given directory.
func (c *Cache) Clear(dir string) error {
	return c.deletePrefix(makePrefix(dir))
}

// ClearAll removes every cached entry.
func (c *Cache) ClearAll() error {
	return c.deletePrefix([]byte{})
}

func (c *Cache) deletePrefix(prefix []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of cached entries.
func (c *Cache) Count() (int, error) {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
