package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrConflict is returned when a conditional update matched no row: the
	// guarded precondition (table free, stock sufficient, status unchanged)
	// no longer holds because a concurrent writer got there first.
	ErrConflict = errors.New("conditional update conflict")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// Tx is a transaction handle as services see it: the executor repositories
// write through, plus the commit/rollback pair. *sql.Tx satisfies it.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// Database is what services hold instead of a bare *sql.DB: a direct executor
// for single-statement writes and a transaction starter for multi-repo ones.
// Keeping it an interface lets tests substitute in-memory fakes.
type Database interface {
	SQLExecutor
	Begin() (Tx, error)
}

type sqlDatabase struct {
	*sql.DB
}

// NewDatabase adapts a *sql.DB to the Database interface.
func NewDatabase(db *sql.DB) Database {
	return sqlDatabase{DB: db}
}

func (d sqlDatabase) Begin() (Tx, error) {
	tx, err := d.DB.Begin()
	if err != nil {
		return nil, err
	}
	return tx, nil
}
