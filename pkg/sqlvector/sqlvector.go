// Package sqlvector stores a sequence of float64 values in a SQLite table.
//
// It mirrors the public contract of the hugevector container over a SQL
// store instead of flat backing files: PushBack inserts a row, At reads one
// back by ROWID. Indices are 1-based, following ROWID; callers bridging to
// the 0-based container must translate.
//
// The backing database file is temporary: Open creates it under a unique
// name and Close drops the table, closes the connection, and deletes the
// file.
package sqlvector

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var (
	// ErrClosed is returned by operations on a closed vector.
	ErrClosed = errors.New("sqlvector: closed")

	// ErrNotFound is returned by At when no row has the given ROWID.
	ErrNotFound = errors.New("sqlvector: index not found")
)

// Option configures Open.
type Option func(*settings)

type settings struct {
	dir string
}

// WithDir places the database file in dir instead of the system temporary
// directory.
func WithDir(dir string) Option {
	return func(s *settings) {
		s.dir = dir
	}
}

// Vector is a sequence of float64 values backed by one SQLite table.
//
// Not safe for concurrent use.
type Vector struct {
	db   *sql.DB
	path string
}

// Open creates a uniquely-named database file, connects to it, and creates
// the value table.
func Open(opts ...Option) (*Vector, error) {
	cfg := settings{dir: os.TempDir()}
	for _, opt := range opts {
		opt(&cfg)
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return nil, fmt.Errorf("generate database name: %w", err)
	}

	path := filepath.Join(cfg.dir, "HugeVectorSQL"+hex.EncodeToString(suffix)+".db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE vector (value DOUBLE)`); err != nil {
		_ = db.Close()
		_ = os.Remove(path)

		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Vector{db: db, path: path}, nil
}

// PushBack appends val as a new row.
func (v *Vector) PushBack(val float64) error {
	if v.db == nil {
		return ErrClosed
	}

	if _, err := v.db.Exec(`INSERT INTO vector (value) VALUES (?)`, val); err != nil {
		return fmt.Errorf("insert value: %w", err)
	}

	return nil
}

// At returns the value at 1-based index i.
func (v *Vector) At(i int64) (float64, error) {
	if v.db == nil {
		return 0, ErrClosed
	}

	var val float64

	err := v.db.QueryRow(`SELECT value FROM vector WHERE rowid = ?`, i).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, i)
	}

	if err != nil {
		return 0, fmt.Errorf("select value: %w", err)
	}

	return val, nil
}

// Len returns the number of rows.
func (v *Vector) Len() (int64, error) {
	if v.db == nil {
		return 0, ErrClosed
	}

	var n int64

	if err := v.db.QueryRow(`SELECT COUNT(*) FROM vector`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count values: %w", err)
	}

	return n, nil
}

// Close drops the table, closes the connection, and deletes the backing
// database file. Close is idempotent.
func (v *Vector) Close() error {
	if v.db == nil {
		return nil
	}

	db := v.db
	v.db = nil

	_, dropErr := db.Exec(`DROP TABLE vector`)
	closeErr := db.Close()
	removeErr := os.Remove(v.path)

	if dropErr != nil {
		return fmt.Errorf("drop table: %w", dropErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close database: %w", closeErr)
	}

	if removeErr != nil {
		return fmt.Errorf("remove database file: %w", removeErr)
	}

	return nil
}
