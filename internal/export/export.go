// Package export writes copies of a document outside the store: a flattened
// SQLite database for ad-hoc SQL, or a single JSON or CBOR file, optionally
// zstd-compressed, with a BLAKE3 checksum.
package export

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/chloe/internal/value"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Leaf is one flattened row.
type Leaf struct {
	Path  []string
	Kind  value.Kind
	Value value.Value
}

// Flatten walks root depth-first in key order and returns every leaf.
// A leaf is any non-object value or an empty object.
func Flatten(root value.Object) []Leaf {
	var leaves []Leaf
	flatten(nil, root, &leaves)
	return leaves
}

func flatten(prefix []string, obj value.Object, out *[]Leaf) {
	for _, k := range obj.SortedKeys() {
		p := make([]string, len(prefix)+1)
		copy(p, prefix)
		p[len(prefix)] = k

		child := obj[k]
		if o, ok := child.(value.Object); ok && len(o) > 0 {
			flatten(p, o, out)
			continue
		}
		*out = append(*out, Leaf{Path: p, Kind: value.KindOf(child), Value: child})
	}
}

// ToSQLite writes root to a fresh SQLite database at dbPath and returns the
// number of rows written. An existing file at dbPath is replaced.
func ToSQLite(ctx context.Context, dbPath string, root value.Object) (int, error) {
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("remove existing export: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := applySchema(ctx, db); err != nil {
		return 0, fmt.Errorf("failed to apply schema: %w", err)
	}

	leaves := Flatten(root)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO leaves (path, depth, kind, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, leaf := range leaves {
		pathJSON, err := encodePath(leaf.Path)
		if err != nil {
			return 0, err
		}
		valueJSON, err := value.Marshal(leaf.Value)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", pathJSON, err)
		}
		if _, err := stmt.ExecContext(ctx, pathJSON, len(leaf.Path), string(leaf.Kind), string(valueJSON)); err != nil {
			return 0, fmt.Errorf("insert %s: %w", pathJSON, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit export: %w", err)
	}
	return len(leaves), nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func encodePath(segments []string) (string, error) {
	arr := make(value.Array, len(segments))
	for i, s := range segments {
		arr[i] = value.String(s)
	}
	data, err := value.Marshal(arr)
	if err != nil {
		return "", fmt.Errorf("encode path: %w", err)
	}
	return string(data), nil
}
