package catalog

import (
	"fmt"
	"time"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// Stats summarizes the catalog by scan status.
type Stats struct {
	TotalFiles   int   `json:"total_files"`
	TotalSize    int64 `json:"total_size_bytes"`
	OKFiles      int   `json:"ok_files"`
	MissingFiles int   `json:"missing_files"`
	ErrorFiles   int   `json:"error_files"`
}

// ExtensionStat summarizes the catalog for one file extension.
type ExtensionStat struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
	TotalSize int64  `json:"total_size_bytes"`
}

// Snapshot is a point-in-time record of library counts and sizes.
type Snapshot struct {
	ID           int64     `json:"id"`
	SnapshotAt   time.Time `json:"snapshot_at"`
	TotalFiles   int       `json:"total_files"`
	TotalSize    int64     `json:"total_size_bytes"`
	MissingFiles int       `json:"missing_files"`
	ErrorFiles   int       `json:"error_files"`
}

// Stats returns aggregate counts and sizes grouped by scan status.
func (c *Catalog) Stats() (*Stats, error) {
	rows, err := c.db.Query(`
        SELECT scan_status, COUNT(*), COALESCE(SUM(size_bytes), 0)
        FROM files GROUP BY scan_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count int
		var size int64
		if err := rows.Scan(&status, &count, &size); err != nil {
			return nil, err
		}

		stats.TotalFiles += count
		stats.TotalSize += size
		switch status {
		case types.StatusOK:
			stats.OKFiles = count
		case types.StatusMissing:
			stats.MissingFiles = count
		case types.StatusError:
			stats.ErrorFiles = count
		}
	}
	return &stats, rows.Err()
}

// ByExtension returns per-extension counts and sizes, largest first.
func (c *Catalog) ByExtension() ([]ExtensionStat, error) {
	rows, err := c.db.Query(`
        SELECT extension, COUNT(*), COALESCE(SUM(size_bytes), 0)
        FROM files GROUP BY extension
        ORDER BY COALESCE(SUM(size_bytes), 0) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query extension stats: %w", err)
	}
	defer rows.Close()

	var stats []ExtensionStat
	for rows.Next() {
		var s ExtensionStat
		if err := rows.Scan(&s.Extension, &s.Count, &s.TotalSize); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Snapshot records the current library counts in the snapshot history.
// Called at the end of a scan so library growth can be tracked over time.
func (c *Catalog) Snapshot() error {
	stats, err := c.Stats()
	if err != nil {
		return err
	}

	_, err = c.db.Exec(`
        INSERT INTO library_snapshots
            (snapshot_at, total_files, total_size_bytes, missing_files, error_files)
        VALUES (?, ?, ?, ?, ?)`,
		formatTime(time.Now()), stats.TotalFiles, stats.TotalSize,
		stats.MissingFiles, stats.ErrorFiles,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Snapshots returns the most recent snapshots, newest first.
// limit <= 0 returns all snapshots.
func (c *Catalog) Snapshots(limit int) ([]Snapshot, error) {
	query := `
        SELECT id, snapshot_at, total_files, total_size_bytes,
               missing_files, error_files
        FROM library_snapshots ORDER BY snapshot_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var at string
		if err := rows.Scan(&s.ID, &at, &s.TotalFiles, &s.TotalSize,
			&s.MissingFiles, &s.ErrorFiles); err != nil {
			return nil, err
		}
		s.SnapshotAt = parseTime(at)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
