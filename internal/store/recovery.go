package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/chloe/internal/value"
)

// RecoveryStats describes one recovery merge.
type RecoveryStats struct {
	// Replayed is the number of WAL records applied.
	Replayed int

	// TornLine is the line number of a discarded torn record, or 0.
	TornLine int

	// PromotedStaged is true when a staged snapshot from an interrupted
	// merge was completed.
	PromotedStaged bool

	// DiscardedStaged is true when a stale staged snapshot was removed.
	DiscardedStaged bool

	// SnapshotBytes is the size of the rewritten snapshot.
	SnapshotBytes int
}

// recover runs the open-time merge:
//  1. finish or discard a staged snapshot left by an interrupted merge
//  2. load the snapshot
//  3. replay the WAL onto it
//  4. write the merged document to the staged file and fsync
//  5. truncate the WAL and fsync
//  6. rename the staged file over the snapshot and fsync the directory
//
// Crash after 4: the WAL is intact, so step 1 discards the staged file and the
// replay starts over. Crash after 5: the WAL is empty and the staged file is
// complete, so step 1 promotes it.
func (s *Store) recover(discardTornTail bool) error {
	snapshotPath := filepath.Join(s.dir, SnapshotFile)
	stagedPath := filepath.Join(s.dir, StagedFile)

	if err := s.resolveStaged(stagedPath, snapshotPath); err != nil {
		return err
	}

	root, err := readSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	s.doc = NewDocument(root)

	if s.wal.Size() > 0 {
		s.logger.Info("applying changes from write-ahead log",
			"wal", s.wal.Path(),
			"bytes", s.wal.Size(),
		)
		if err := s.replay(discardTornTail); err != nil {
			return err
		}
	}

	data, err := value.Marshal(s.doc.Root())
	if err != nil {
		return parseError("encode merged document", snapshotPath, 0, err)
	}
	data = append(data, '\n')

	if err := writeFileSync(stagedPath, data); err != nil {
		return err
	}
	if err := s.wal.Truncate(); err != nil {
		return err
	}
	if err := os.Rename(stagedPath, snapshotPath); err != nil {
		return ioError("replace snapshot", snapshotPath, err)
	}
	if err := syncDir(s.dir); err != nil {
		return err
	}
	s.stats.SnapshotBytes = len(data)

	if s.stats.Replayed > 0 || s.stats.TornLine > 0 {
		s.logger.Info("write-ahead log merged into snapshot",
			"replayed", s.stats.Replayed,
			"snapshot_bytes", s.stats.SnapshotBytes,
		)
	}
	return nil
}

// replay applies every WAL record to the document without re-logging.
// A record that cannot be applied means the WAL does not belong to this
// snapshot and is reported as a parse error.
func (s *Store) replay(discardTornTail bool) error {
	records, info, err := s.wal.ReadRecords(discardTornTail)
	if err != nil {
		return err
	}
	if info.TornLine > 0 {
		s.logger.Warn("discarding torn trailing write-ahead log record",
			"wal", s.wal.Path(),
			"line", info.TornLine,
			"bytes", info.TornBytes,
		)
		s.stats.TornLine = info.TornLine
	}

	for _, rec := range records {
		if err := s.doc.apply(rec.Path, rec.Value); err != nil {
			return parseError("write-ahead log record does not apply to snapshot", s.wal.Path(), rec.Line, err)
		}
		s.stats.Replayed++
	}
	return nil
}

// resolveStaged handles a staged snapshot left by an interrupted merge.
func (s *Store) resolveStaged(stagedPath, snapshotPath string) error {
	if _, err := os.Stat(stagedPath); errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return ioError("stat staged snapshot", stagedPath, err)
	}

	// The staged file is fsynced before the WAL is truncated, so an empty WAL
	// means the staged file is complete. Parse it anyway.
	if s.wal.Size() == 0 {
		if _, err := readSnapshot(stagedPath); err == nil {
			if err := os.Rename(stagedPath, snapshotPath); err != nil {
				return ioError("promote staged snapshot", stagedPath, err)
			}
			if err := syncDir(s.dir); err != nil {
				return err
			}
			s.logger.Info("completed interrupted merge from staged snapshot", "staged", stagedPath)
			s.stats.PromotedStaged = true
			return nil
		}
	}

	if err := os.Remove(stagedPath); err != nil {
		return ioError("remove staged snapshot", stagedPath, err)
	}
	s.logger.Warn("discarded staged snapshot from interrupted merge", "staged", stagedPath)
	s.stats.DiscardedStaged = true
	return nil
}

// readSnapshot parses a snapshot file. The root must be an object.
func readSnapshot(path string) (value.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read snapshot", path, err)
	}
	v, err := value.Unmarshal(data)
	if err != nil {
		return nil, parseError("snapshot is not valid JSON", path, 0, err)
	}
	root, ok := v.(value.Object)
	if !ok {
		return nil, parseError(fmt.Sprintf("snapshot root must be an object, got %s", value.KindOf(v)), path, 0, nil)
	}
	return root, nil
}

// writeFileSync writes data to path, replacing any existing file, and fsyncs.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return ioError("create staged snapshot", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return ioError("write staged snapshot", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return ioError("sync staged snapshot", path, err)
	}
	if err := f.Close(); err != nil {
		return ioError("close staged snapshot", path, err)
	}
	return nil
}

// syncDir fsyncs a directory so renames inside it are durable.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return ioError("open store directory", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return ioError("sync store directory", dir, err)
	}
	return nil
}
