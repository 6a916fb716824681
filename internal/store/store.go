package store

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/chloe/internal/value"
)

// File names inside the store directory.
const (
	SnapshotFile = "database.json"
	WALFile      = "database_tmp.json"
	StagedFile   = SnapshotFile + ".staged"
)

// Store is the document store. It is not safe for concurrent use; share it
// through a Handle.
type Store struct {
	dir    string
	doc    *Document
	wal    *WAL
	logger *slog.Logger
	stats  RecoveryStats

	// failed is set after a WAL append fails or the store is closed.
	// Every later Set returns it.
	failed error
}

// Options configures Open.
type Options struct {
	// Logger receives recovery progress. Defaults to slog.Default().
	Logger *slog.Logger

	// DiscardTornTail drops a malformed, unterminated final WAL line instead
	// of failing Open. Off by default.
	DiscardTornTail bool
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the logger used for recovery messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithDiscardTornTail enables or disables torn-tail tolerance during replay.
func WithDiscardTornTail(discard bool) Option {
	return func(o *Options) {
		o.DiscardTornTail = discard
	}
}

// Open creates or opens the store in dir and runs the recovery merge.
//
// Missing pieces are bootstrapped: the directory, an empty-object snapshot,
// and an empty WAL. Filesystem failures are IO errors; an unreadable snapshot
// or WAL is a parse error. Open either returns a fully merged store or fails.
func Open(dir string, opts ...Option) (*Store, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioError("create store directory", dir, err)
	}

	snapshotPath := filepath.Join(dir, SnapshotFile)
	if err := ensureSnapshot(snapshotPath); err != nil {
		return nil, err
	}

	wal, err := OpenWAL(filepath.Join(dir, WALFile))
	if err != nil {
		return nil, err
	}

	s := &Store{
		dir:    dir,
		wal:    wal,
		logger: o.Logger,
	}
	if err := s.recover(o.DiscardTornTail); err != nil {
		wal.Close()
		return nil, err
	}
	return s, nil
}

// ensureSnapshot creates the snapshot as `{}` if it does not exist.
func ensureSnapshot(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return ioError("create snapshot", path, err)
	}
	if _, err := f.Write([]byte("{}\n")); err != nil {
		f.Close()
		return ioError("write snapshot", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return ioError("sync snapshot", path, err)
	}
	if err := f.Close(); err != nil {
		return ioError("close snapshot", path, err)
	}
	return nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Recovery reports what the open-time merge did.
func (s *Store) Recovery() RecoveryStats {
	return s.stats
}

// Get returns a copy of the value at p, or Null if p does not resolve.
// Get never fails.
func (s *Store) Get(p Path) value.Value {
	return value.Clone(s.doc.Get(p))
}

// Root returns a copy of the whole document.
func (s *Store) Root() value.Object {
	return s.doc.Root().Clone()
}

// Set writes v at p, creating intermediate objects as needed. A Null v
// deletes the key.
//
// The document is updated first and the WAL record is appended and fsynced
// second. If the document update fails (type conflict, empty path, value
// that cannot be encoded), nothing changes and nothing is logged. If the
// append fails, the error is returned and the store refuses further writes:
// the in-memory document is now ahead of the log.
func (s *Store) Set(p Path, v value.Value) error {
	if s.failed != nil {
		return s.failed
	}
	if v == nil {
		v = value.Null{}
	}
	stored := value.Clone(v)

	record, err := EncodeEntry(Entry{Path: p, Value: stored})
	if err != nil {
		return err
	}
	if err := s.doc.apply(p, stored); err != nil {
		return err
	}

	if err := s.wal.Append(record); err != nil {
		s.failed = err
		s.logger.Error("write-ahead log append failed, store is now read-only",
			"path", p.String(),
			"error", err,
		)
		return err
	}
	return nil
}

// Delete removes the key at p. It is Set(p, Null).
func (s *Store) Delete(p Path) error {
	return s.Set(p, value.Null{})
}

// Close releases the WAL handle. Reads keep working; writes fail.
func (s *Store) Close() error {
	if s.failed == nil {
		s.failed = ioError("store closed", s.wal.Path(), ErrClosed)
	}
	return s.wal.Close()
}
