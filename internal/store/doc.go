// Package store provides the embedded persistent document store.
//
// The store keeps a single JSON document in memory, rooted at an object, and
// makes it durable with two files in one directory:
//   - database.json: the snapshot, the whole document serialized as one value
//   - database_tmp.json: the write-ahead log, one [path, value] record per line
//
// # Write path
//
// Set applies the mutation to the in-memory document first, then appends one
// record to the WAL and fsyncs it. A crash between the two loses that one
// mutation and nothing else: neither file ever sees it.
//
// # Recovery merge
//
// Open replays the WAL onto the snapshot, then folds the result back into the
// snapshot and empties the WAL. The merged document is first written to a
// staged file and fsynced; the WAL is truncated; then the staged file is
// renamed over the snapshot. Every crash point leaves either the old snapshot
// plus the full WAL, or a complete staged file plus an empty WAL, and Open
// knows how to finish from both.
//
// # Concurrency
//
// Store does no locking. Share it through a Handle, which serializes callers
// behind one mutex.
package store
