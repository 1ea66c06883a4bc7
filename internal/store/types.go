package store

import "errors"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

// ErrNotFound is returned by writes that matched no row, typically a
// wrong id or an id belonging to another user.
var ErrNotFound = errors.New("not found")
