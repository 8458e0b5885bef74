package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a write or read targets an identifier
	// with no stored row. Handlers translate it to 404 where absence is
	// semantically significant.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user insert or update violates
	// the unique email constraint. It is a conflict, not a fatal error.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store wraps the single local SQLite database file shared by every
// handler. Multi-row writes run inside one transaction; single-field
// patches are standalone statements.
type Store struct {
	db    *sql.DB
	path  string
	newID func() string
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite permits one writer; a single connection avoids SQLITE_BUSY
	// under the low concurrency this service is designed for.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, path: path, newID: uuid.NewString}, nil
}

// Path returns the location of the database file, used by the periodic
// whole-file backup.
func (s *Store) Path() string {
	return s.path
}

// SetIDGenerator overrides the child-identifier generator. The default is
// uuid.NewString.
func (s *Store) SetIDGenerator(gen func() string) {
	s.newID = gen
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
