package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chloe/internal/testutil"
	"github.com/roach88/chloe/internal/value"
)

func sampleDoc() value.Object {
	return value.NewObject(
		value.O("pings", value.Int(5)),
		value.O("users", value.NewObject(
			value.O("alice", value.NewObject(
				value.O("score", value.Float(1.5)),
				value.O("tags", value.NewArray(value.String("a"), value.String("b"))),
			)),
			value.O("bob", value.Object{}),
		)),
		value.O("a/b", value.Bool(true)),
	)
}

func TestFlatten(t *testing.T) {
	leaves := Flatten(sampleDoc())

	require.Len(t, leaves, 5)
	assert.Equal(t, []string{"a/b"}, leaves[0].Path)
	assert.Equal(t, []string{"pings"}, leaves[1].Path)
	assert.Equal(t, []string{"users", "alice", "score"}, leaves[2].Path)
	assert.Equal(t, []string{"users", "alice", "tags"}, leaves[3].Path)
	assert.Equal(t, value.KindArray, leaves[3].Kind)
	assert.Equal(t, []string{"users", "bob"}, leaves[4].Path)
	assert.Equal(t, value.KindObject, leaves[4].Kind)
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(value.Object{}))
}

func TestToSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "export.db")

	n, err := ToSQLite(context.Background(), dbPath, sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT path, depth, kind, value FROM leaves ORDER BY path`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var path, kind, val string
		var depth int
		require.NoError(t, rows.Scan(&path, &depth, &kind, &val))
		got = append(got, path+" "+kind+" "+val)
		assert.Positive(t, depth)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{
		`["a/b"] bool true`,
		`["pings"] int 5`,
		`["users","alice","score"] float 1.5`,
		`["users","alice","tags"] array ["a","b"]`,
		`["users","bob"] object {}`,
	}, got)

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)
}

func TestToSQLite_ReplacesExistingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "export.db")
	testutil.WriteFile(t, dbPath, "not a database")

	n, err := ToSQLite(context.Background(), dbPath, value.NewObject(value.O("k", value.String("v"))))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Exporting again does not trip over the primary key.
	n, err = ToSQLite(context.Background(), dbPath, value.NewObject(value.O("k", value.String("w"))))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestToSQLite_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ToSQLite(ctx, filepath.Join(t.TempDir(), "export.db"), sampleDoc())

	assert.Error(t, err)
}
