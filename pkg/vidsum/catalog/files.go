package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// chunkSize limits IN (...) parameter lists; SQLite allows at most 999.
const chunkSize = 900

const entryColumns = `path, filename, directory, extension, size_bytes,
    modified_at, content_hash, scanned_at, scan_status, scan_error, job_id`

// Upsert inserts or updates an entry keyed by path. On update the original
// job_id is kept so an entry stays linked to the scan that discovered it.
func (c *Catalog) Upsert(e types.CatalogEntry) error {
	_, err := c.db.Exec(`
        INSERT INTO files (`+entryColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            filename = excluded.filename,
            directory = excluded.directory,
            extension = excluded.extension,
            size_bytes = excluded.size_bytes,
            modified_at = excluded.modified_at,
            content_hash = excluded.content_hash,
            scanned_at = excluded.scanned_at,
            scan_status = excluded.scan_status,
            scan_error = excluded.scan_error,
            job_id = COALESCE(files.job_id, excluded.job_id)`,
		e.Path, e.Filename, e.Directory, e.Extension, e.Size,
		formatTime(e.ModTime), nullable(e.Hash), formatTime(e.ScannedAt),
		e.Status, nullable(e.ScanError), nullable(e.JobID),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %q: %w", e.Path, err)
	}
	return nil
}

// UpsertBatch upserts all entries inside a single transaction.
func (c *Catalog) UpsertBatch(entries []types.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT INTO files (` + entryColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            filename = excluded.filename,
            directory = excluded.directory,
            extension = excluded.extension,
            size_bytes = excluded.size_bytes,
            modified_at = excluded.modified_at,
            content_hash = excluded.content_hash,
            scanned_at = excluded.scanned_at,
            scan_status = excluded.scan_status,
            scan_error = excluded.scan_error,
            job_id = COALESCE(files.job_id, excluded.job_id)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(
			e.Path, e.Filename, e.Directory, e.Extension, e.Size,
			formatTime(e.ModTime), nullable(e.Hash), formatTime(e.ScannedAt),
			e.Status, nullable(e.ScanError), nullable(e.JobID),
		); err != nil {
			return fmt.Errorf("failed to upsert %q: %w", e.Path, err)
		}
	}

	return tx.Commit()
}

// GetByPath returns the entry for path, or ErrNotFound.
func (c *Catalog) GetByPath(path string) (*types.CatalogEntry, error) {
	row := c.db.QueryRow(
		`SELECT `+entryColumns+` FROM files WHERE path = ?`, path)

	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByPaths returns entries for the given paths, keyed by path. Paths
// with no catalog entry are absent from the result. Lookups are chunked
// to stay under SQLite's parameter limit.
func (c *Catalog) GetByPaths(paths []string) (map[string]types.CatalogEntry, error) {
	result := make(map[string]types.CatalogEntry, len(paths))

	for start := 0; start < len(paths); start += chunkSize {
		chunk := paths[start:min(start+chunkSize, len(paths))]

		query := `SELECT ` + entryColumns + ` FROM files WHERE path IN (?` +
			strings.Repeat(",?", len(chunk)-1) + `)`
		args := make([]any, len(chunk))
		for i, p := range chunk {
			args[i] = p
		}

		rows, err := c.db.Query(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query paths: %w", err)
		}

		for rows.Next() {
			e, err := scanEntry(rows.Scan)
			if err != nil {
				rows.Close()
				return nil, err
			}
			result[e.Path] = e
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return result, nil
}

// All returns every entry in the catalog.
func (c *Catalog) All() ([]types.CatalogEntry, error) {
	return c.queryEntries(`SELECT ` + entryColumns + ` FROM files`)
}

// Under returns entries whose directory is at or below dir. The match is
// boundary-aware: /media/movies does not cover /media/movies2.
func (c *Catalog) Under(dir string) ([]types.CatalogEntry, error) {
	return c.queryEntries(
		`SELECT `+entryColumns+` FROM files WHERE directory = ? OR directory LIKE ?`,
		dir, dirPrefix(dir))
}

// PathsUnder returns the paths of all entries whose directory is at or
// below dir. Used by missing-file detection after a scan.
func (c *Catalog) PathsUnder(dir string) ([]string, error) {
	rows, err := c.db.Query(
		`SELECT path FROM files WHERE directory = ? OR directory LIKE ?`,
		dir, dirPrefix(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to query paths under %q: %w", dir, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// MarkMissing sets scan_status to "missing" for the given paths and
// returns the number of entries updated.
func (c *Catalog) MarkMissing(paths []string) (int, error) {
	return c.updatePaths(
		`UPDATE files SET scan_status = '`+types.StatusMissing+`' WHERE path IN `, paths)
}

// Prune deletes the entries for the given paths and returns the number
// of entries removed.
func (c *Catalog) Prune(paths []string) (int, error) {
	return c.updatePaths(`DELETE FROM files WHERE path IN `, paths)
}

// Delete removes the entry for path.
func (c *Catalog) Delete(path string) error {
	_, err := c.db.Exec(`DELETE FROM files WHERE path = ?`, path)
	return err
}

// updatePaths runs stmt against chunked IN lists and sums affected rows.
func (c *Catalog) updatePaths(stmt string, paths []string) (int, error) {
	total := 0

	for start := 0; start < len(paths); start += chunkSize {
		chunk := paths[start:min(start+chunkSize, len(paths))]

		query := stmt + `(?` + strings.Repeat(",?", len(chunk)-1) + `)`
		args := make([]any, len(chunk))
		for i, p := range chunk {
			args[i] = p
		}

		res, err := c.db.Exec(query, args...)
		if err != nil {
			return total, fmt.Errorf("failed to update paths: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		}
	}

	return total, nil
}

// queryEntries runs a query returning entryColumns rows.
func (c *Catalog) queryEntries(query string, args ...any) ([]types.CatalogEntry, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []types.CatalogEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// scanEntry reads one entryColumns row via the given scan function.
func scanEntry(scan func(dest ...any) error) (types.CatalogEntry, error) {
	var e types.CatalogEntry
	var modified, scanned string
	var hash, scanError, jobID sql.NullString

	err := scan(&e.Path, &e.Filename, &e.Directory, &e.Extension, &e.Size,
		&modified, &hash, &scanned, &e.Status, &scanError, &jobID)
	if err != nil {
		return e, err
	}

	e.ModTime = parseTime(modified)
	e.ScannedAt = parseTime(scanned)
	e.Hash = hash.String
	e.ScanError = scanError.String
	e.JobID = jobID.String
	return e, nil
}

// formatTime stores timestamps as RFC 3339 UTC strings.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads an RFC 3339 timestamp, returning the zero time on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// dirPrefix builds the LIKE pattern matching subdirectories of dir.
func dirPrefix(dir string) string {
	sep := string(filepath.Separator)
	return strings.TrimRight(dir, sep) + sep + "%"
}
