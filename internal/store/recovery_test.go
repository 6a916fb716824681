package store

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chloe/internal/testutil"
	"github.com/roach88/chloe/internal/value"
)

func TestRecovery_HandAppendedRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	require.NoError(t, s.Set(Path{"a", "b"}, value.Int(1)))
	require.NoError(t, s.Close())
	s = openTestStore(t, dir)
	require.NoError(t, s.Close())

	testutil.AppendLines(t, filepath.Join(dir, WALFile), `[["x"],"y"]`)

	s2 := openTestStore(t, dir)

	assert.Equal(t, value.String("y"), s2.Get(Path{"x"}))
	assert.Zero(t, testutil.FileSize(t, filepath.Join(dir, WALFile)))
	testutil.Golden(t).Assert(t, "hand_appended_snapshot", []byte(testutil.ReadFile(t, filepath.Join(dir, SnapshotFile))))
}

func TestRecovery_MissingSnapshotWithWAL(t *testing.T) {
	dir := t.TempDir()
	testutil.AppendLines(t, filepath.Join(dir, WALFile), `[["x"],"y"]`)

	s := openTestStore(t, dir)

	assert.Equal(t, value.Object{"x": value.String("y")}, s.Root())
}

func TestRecovery_LogsProgress(t *testing.T) {
	dir := t.TempDir()
	testutil.AppendLines(t, filepath.Join(dir, WALFile), `[["x"],"y"]`, `[["z"],1]`)

	var logs bytes.Buffer
	s, err := Open(dir, WithLogger(testutil.CaptureLogger(&logs)))
	require.NoError(t, err)
	defer s.Close()

	assert.Contains(t, logs.String(), "applying changes from write-ahead log")
	assert.Contains(t, logs.String(), "replayed=2")
}

func TestRecovery_MalformedLineIsFatal(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, WALFile)
	testutil.AppendLines(t, walPath, `[["x"],"y"]`, `not json`)

	_, err := Open(dir, WithLogger(testutil.DiscardLogger()))

	require.Error(t, err)
	assert.True(t, IsParseError(err))

	// Nothing was merged: the WAL and snapshot are untouched.
	assert.Equal(t, "[[\"x\"],\"y\"]\nnot json\n", testutil.ReadFile(t, walPath))
	assert.Equal(t, "{}\n", testutil.ReadFile(t, filepath.Join(dir, SnapshotFile)))
}

func TestRecovery_TornTailStrictByDefault(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, WALFile)
	testutil.AppendLines(t, walPath, `[["x"],"y"]`)
	testutil.AppendRaw(t, walPath, `[["z"],`)

	_, err := Open(dir, WithLogger(testutil.DiscardLogger()))

	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestRecovery_TornTailDiscardedWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, WALFile)
	testutil.AppendLines(t, walPath, `[["x"],"y"]`)
	testutil.AppendRaw(t, walPath, `[["z"],`)

	var logs bytes.Buffer
	s, err := Open(dir,
		WithLogger(testutil.CaptureLogger(&logs)),
		WithDiscardTornTail(true),
	)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, value.Object{"x": value.String("y")}, s.Root())
	assert.Equal(t, 2, s.Recovery().TornLine)
	assert.Equal(t, 1, s.Recovery().Replayed)
	assert.Zero(t, testutil.FileSize(t, walPath))
	assert.Contains(t, logs.String(), "discarding torn trailing write-ahead log record")
}

func TestRecovery_ReplayConflictIsParseError(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, SnapshotFile), `{"a":5}`)
	testutil.AppendLines(t, filepath.Join(dir, WALFile), `[["a","b"],1]`)

	_, err := Open(dir, WithLogger(testutil.DiscardLogger()))

	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.False(t, IsTypePathError(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Line)
}

func TestRecovery_CrashAfterStagedWrite(t *testing.T) {
	// Crash between writing the staged snapshot and truncating the WAL: the
	// WAL is intact, so the staged file is thrown away and replay reruns.
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, SnapshotFile), "{}\n")
	testutil.AppendLines(t, filepath.Join(dir, WALFile), `[["x"],"y"]`)
	testutil.WriteFile(t, filepath.Join(dir, StagedFile), `{"x":"y"}`+"\n")

	s := openTestStore(t, dir)

	assert.True(t, s.Recovery().DiscardedStaged)
	assert.False(t, s.Recovery().PromotedStaged)
	assert.Equal(t, 1, s.Recovery().Replayed)
	assert.Equal(t, value.Object{"x": value.String("y")}, s.Root())
	assert.False(t, testutil.Exists(filepath.Join(dir, StagedFile)))
}

func TestRecovery_CrashAfterTruncate(t *testing.T) {
	// Crash between truncating the WAL and renaming the staged snapshot: the
	// staged file is the only copy of the merged data and must be promoted.
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, SnapshotFile), "{}\n")
	testutil.WriteFile(t, filepath.Join(dir, WALFile), "")
	testutil.WriteFile(t, filepath.Join(dir, StagedFile), `{"x":"y"}`+"\n")

	s := openTestStore(t, dir)

	assert.True(t, s.Recovery().PromotedStaged)
	assert.Equal(t, value.Object{"x": value.String("y")}, s.Root())
	assert.False(t, testutil.Exists(filepath.Join(dir, StagedFile)))
	assert.Equal(t, "{\"x\":\"y\"}\n", testutil.ReadFile(t, filepath.Join(dir, SnapshotFile)))
}

func TestRecovery_PartialStagedWithEmptyWAL(t *testing.T) {
	// A staged file cut off mid-write can only exist if the WAL was never
	// truncated for it. With an empty WAL it holds nothing new.
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, SnapshotFile), `{"keep":1}`)
	testutil.WriteFile(t, filepath.Join(dir, StagedFile), `{"keep":`)

	s := openTestStore(t, dir)

	assert.True(t, s.Recovery().DiscardedStaged)
	assert.Equal(t, value.Object{"keep": value.Int(1)}, s.Root())
}

func TestRecovery_RewritesSnapshotCanonically(t *testing.T) {
	// Every open rewrites the snapshot, even with an empty WAL.
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, SnapshotFile), "{\n  \"b\": [1, 2.5],\n  \"a\": {\"html\": \"<b>&</b>\"}\n}\n")

	openTestStore(t, dir)

	testutil.Golden(t).Assert(t, "canonical_snapshot", []byte(testutil.ReadFile(t, filepath.Join(dir, SnapshotFile))))
}
