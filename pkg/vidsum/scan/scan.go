package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vidsum/vidsum/pkg/vidsum/cache"
	"github.com/vidsum/vidsum/pkg/vidsum/discover"
	"github.com/vidsum/vidsum/pkg/vidsum/fingerprint"
	"github.com/vidsum/vidsum/pkg/vidsum/logging"
	"github.com/vidsum/vidsum/pkg/vidsum/progress"
	"github.com/vidsum/vidsum/pkg/vidsum/report"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

var logger = logging.Get("scan")

// Scanner runs scan jobs against a catalog.
type Scanner struct {
	opts Options
}

// New creates a Scanner. Options are validated and defaults applied.
func New(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{opts: opts}, nil
}

// Run executes one scan job and blocks until it finishes.
//
// Cancellation is not an error: the scan stops at the next batch
// boundary, keeps whatever was already persisted, and returns a report
// with Interrupted set. Errors are returned only for invalid roots
// (single explicit root) and catalog failures.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	tracker := progress.NewTracker()

	rep := &Report{
		JobID:       uuid.New().String(),
		Started:     time.Now().UTC(),
		Roots:       s.opts.Roots,
		Mode:        s.mode(),
		Incremental: !s.opts.Full,
	}

	logger.Info("scan started",
		"job_id", rep.JobID, "mode", rep.Mode, "roots", len(s.opts.Roots))

	files, failedRoots, err := s.discover(ctx, rep)
	if err != nil {
		return nil, err
	}
	rep.Found = len(files)

	fileByPath := make(map[string]types.DiscoveredFile, len(files))
	for _, f := range files {
		fileByPath[f.Path] = f
	}

	existing, err := s.opts.Catalog.GetByPaths(pathsOf(files))
	if err != nil {
		return nil, err
	}

	changed, unchanged := s.splitChanged(files, existing, rep)

	// Vanished files are reconciled before hashing so a long hash phase
	// cannot delay it. Skipped once the scan is already cancelled.
	if ctx.Err() == nil {
		if err := s.handleMissing(fileByPath, failedRoots, rep); err != nil {
			return nil, err
		}
	}

	var outcomes []types.Fingerprint

	// Only plain incremental scans trust cached fingerprints. Full and
	// verify exist to re-read content, so both go to disk.
	pending := changed
	if s.opts.Cache != nil && !s.opts.Full && !s.opts.Verify {
		outcomes, pending = s.consultCache(changed)
		if hits := len(outcomes); hits > 0 {
			logger.Debug("fingerprint cache hits", "count", hits)
		}
	}

	if len(pending) > 0 && ctx.Err() == nil {
		cached := len(outcomes)
		results, hashErr := fingerprint.HashAll(ctx, pathsOf(pending), fingerprint.Options{
			Workers: s.opts.HashWorkers,
			OnProgress: func(done, total int, rate float64) {
				s.progress(Progress{
					Phase:   PhaseHash,
					Found:   rep.Found,
					Done:    cached + done,
					Total:   cached + total,
					Rate:    rate,
					Skipped: rep.Skipped,
				})
			},
		})
		outcomes = append(outcomes, results...)
		if hashErr != nil {
			rep.Interrupted = true
		}
	}

	if s.opts.Verify && !s.opts.Full && ctx.Err() == nil {
		outcomes = s.verifyUnchanged(ctx, unchanged, existing, outcomes, rep)
	}

	if err := s.persist(ctx, outcomes, fileByPath, existing, rep); err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		rep.Interrupted = true
	}
	rep.Elapsed = tracker.Elapsed()

	s.finalize(rep)

	logger.Info("scan complete",
		"job_id", rep.JobID,
		"found", rep.Found,
		"new", rep.New,
		"updated", rep.Updated,
		"skipped", rep.Skipped,
		"errors", rep.Errored,
		"interrupted", rep.Interrupted,
		"elapsed", rep.Elapsed,
		"rate", progress.RatePerSecond(rep.Processed(), rep.Elapsed))

	return rep, nil
}

// mode names the scan flavor for reports and logs.
func (s *Scanner) mode() string {
	switch {
	case s.opts.Full:
		return "full"
	case s.opts.Verify:
		return "verify"
	default:
		return "scan"
	}
}

// discover walks each root and merges results, deduplicating paths
// shared by overlapping roots. When scanning multiple roots from
// config, an unreadable root is recorded as a scan error and the rest
// proceed; a single root named on the command line fails fast with the
// typed discovery error.
func (s *Scanner) discover(ctx context.Context, rep *Report) ([]types.DiscoveredFile, map[string]bool, error) {
	var files []types.DiscoveredFile
	seen := make(map[string]bool)
	failed := make(map[string]bool)

	for _, root := range s.opts.Roots {
		base := len(files)
		found, err := discover.Discover(ctx, root, discover.Options{
			Extensions:     s.opts.Extensions,
			FollowSymlinks: s.opts.FollowSymlinks,
			StatWorkers:    s.opts.StatWorkers,
			OnProgress: func(n int, rate float64) {
				s.progress(Progress{
					Phase: PhaseDiscover,
					Found: base + n,
					Done:  base + n,
					Rate:  rate,
				})
			},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				rep.Interrupted = true
				return files, failed, nil
			}
			if s.opts.ExplicitRoot && len(s.opts.Roots) == 1 {
				return nil, nil, err
			}
			logger.Warn("library root unreadable", "root", root, "error", err)
			rep.Errors = append(rep.Errors, report.ScanError{Path: root, Message: err.Error()})
			failed[root] = true
			continue
		}

		for _, f := range found {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			files = append(files, f)
		}
	}

	return files, failed, nil
}

// splitChanged partitions discovered files into those needing a rehash
// and those whose catalog record is current. A record counts as current
// only when size and mtime match and its status is ok, so files that
// vanished and came back, or errored last scan, are retried.
func (s *Scanner) splitChanged(files []types.DiscoveredFile, existing map[string]types.CatalogEntry, rep *Report) (changed, unchanged []types.DiscoveredFile) {
	for _, f := range files {
		prior, ok := existing[f.Path]
		current := ok && prior.Status == types.StatusOK && prior.UpToDate(f.Size, f.ModTime)
		if s.opts.Full || !current {
			changed = append(changed, f)
			continue
		}
		rep.Skipped++
		unchanged = append(unchanged, f)
	}
	return changed, unchanged
}

// handleMissing reconciles catalog records whose files are gone. A
// record is touched only when its path is absent from the discovered
// set AND no longer a regular file on disk, so files merely hidden from
// discovery (dot-directories, unreadable subtrees) are left alone.
func (s *Scanner) handleMissing(fileByPath map[string]types.DiscoveredFile, failedRoots map[string]bool, rep *Report) error {
	var gone []string
	checked := make(map[string]bool)

	for _, root := range s.opts.Roots {
		if failedRoots[root] {
			continue
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}

		cataloged, err := s.opts.Catalog.PathsUnder(absRoot)
		if err != nil {
			return err
		}
		for _, p := range cataloged {
			if checked[p] {
				continue
			}
			checked[p] = true
			if _, ok := fileByPath[p]; ok {
				continue
			}
			if stillPresent(p) {
				continue
			}
			gone = append(gone, p)
		}
	}

	if len(gone) == 0 {
		return nil
	}

	if s.opts.Prune {
		n, err := s.opts.Catalog.Prune(gone)
		if err != nil {
			return err
		}
		rep.Removed = n
		logger.Info("pruned vanished files", "count", n)
		return nil
	}

	n, err := s.opts.Catalog.MarkMissing(gone)
	if err != nil {
		return err
	}
	rep.Missing = n
	logger.Info("marked files missing", "count", n)
	return nil
}

// consultCache splits files into cache hits, returned as ready
// fingerprints, and misses that still need hashing.
func (s *Scanner) consultCache(files []types.DiscoveredFile) (hits []types.Fingerprint, misses []types.DiscoveredFile) {
	for _, f := range files {
		if hash, ok := s.opts.Cache.Lookup(f.Path, f.Size, f.ModTime); ok {
			hits = append(hits, types.Fingerprint{Path: f.Path, Hash: hash})
		} else {
			misses = append(misses, f)
		}
	}
	return hits, misses
}

// verifyUnchanged rehashes files the incremental check skipped and
// compares against stored fingerprints. Matches count as verified;
// drifted or previously errored records move into the persist set with
// the fresh fingerprint. Files unreadable during verify are left alone.
func (s *Scanner) verifyUnchanged(ctx context.Context, unchanged []types.DiscoveredFile, existing map[string]types.CatalogEntry, outcomes []types.Fingerprint, rep *Report) []types.Fingerprint {
	if len(unchanged) == 0 {
		return outcomes
	}

	results, err := fingerprint.HashAll(ctx, pathsOf(unchanged), fingerprint.Options{
		Workers: s.opts.HashWorkers,
		OnProgress: func(done, total int, rate float64) {
			s.progress(Progress{
				Phase:   PhaseVerify,
				Found:   rep.Found,
				Done:    done,
				Total:   total,
				Rate:    rate,
				Skipped: rep.Skipped,
			})
		},
	})

	for _, fp := range results {
		if !fp.OK() {
			continue
		}
		prior, ok := existing[fp.Path]
		if !ok {
			continue
		}
		if prior.Hash == fp.Hash {
			rep.Verified++
			continue
		}
		if prior.Hash != "" {
			rep.Mismatched++
			logger.Warn("fingerprint drift",
				"path", fp.Path, "stored", prior.Hash, "actual", fp.Hash)
		}
		rep.Skipped--
		outcomes = append(outcomes, fp)
	}

	if err != nil {
		rep.Interrupted = true
	}
	return outcomes
}

// persist writes outcomes to the catalog in batches, one transaction
// per batch, and fills the fingerprint cache for clean rows. On
// cancellation the committed batches stand and the report is marked
// interrupted.
func (s *Scanner) persist(ctx context.Context, outcomes []types.Fingerprint, fileByPath map[string]types.DiscoveredFile, existing map[string]types.CatalogEntry, rep *Report) error {
	if len(outcomes) == 0 {
		return nil
	}

	now := time.Now().UTC()
	entries := make([]types.CatalogEntry, len(outcomes))
	for i, fp := range outcomes {
		e := types.NewCatalogEntry(fp.Path)
		f := fileByPath[fp.Path]
		e.Size = f.Size
		e.ModTime = f.ModTime
		e.ScannedAt = now
		e.JobID = rep.JobID
		if fp.OK() {
			e.Hash = fp.Hash
			e.Status = types.StatusOK
		} else {
			e.Status = types.StatusError
			e.ScanError = fp.Err
		}
		entries[i] = e
	}

	cacheFill := make(map[string]*cache.Entry)
	tracker := progress.NewTracker()

	err := progress.Batches(ctx, len(entries), func(start, end int) error {
		if err := s.opts.Catalog.UpsertBatch(entries[start:end]); err != nil {
			return err
		}
		for i := start; i < end; i++ {
			e := entries[i]
			if _, ok := existing[e.Path]; ok {
				rep.Updated++
			} else {
				rep.New++
			}
			if e.Status == types.StatusError {
				rep.Errored++
				rep.Errors = append(rep.Errors, report.ScanError{Path: e.Path, Message: e.ScanError})
				continue
			}
			if s.opts.Cache != nil {
				cacheFill[e.Path] = &cache.Entry{
					Size:  e.Size,
					Mtime: e.ModTime.UnixNano(),
					Hash:  e.Hash,
				}
			}
		}
		s.progress(Progress{
			Phase:   PhasePersist,
			Found:   rep.Found,
			Done:    end,
			Total:   len(entries),
			Rate:    tracker.Rate(end),
			New:     rep.New,
			Updated: rep.Updated,
			Skipped: rep.Skipped,
			Errored: rep.Errored,
		})
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		rep.Interrupted = true
	default:
		return err
	}

	if len(cacheFill) > 0 {
		if cerr := s.opts.Cache.PutBatch(cacheFill); cerr != nil {
			logger.Warn("fingerprint cache update failed", "error", cerr)
		}
	}

	return nil
}

// finalize captures the post-scan snapshot and archives the report.
// Neither failure affects the scan result.
func (s *Scanner) finalize(rep *Report) {
	if err := s.opts.Catalog.Snapshot(); err != nil {
		logger.Warn("failed to capture library snapshot", "error", err)
	}

	if s.opts.Reports != nil {
		if err := s.opts.Reports.Write(rep.archiveEntry()); err != nil {
			logger.Warn("failed to archive scan report", "error", err)
		}
	}
}

// progress relays a snapshot to the configured callback.
func (s *Scanner) progress(p Progress) {
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(p)
	}
}

// stillPresent reports whether path exists as a regular file.
func stillPresent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func pathsOf(files []types.DiscoveredFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
